package player

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// levelKey is the fixed LevelStat field holding the level identifier
const levelKey = "level"

// Record is one player extracted from a stat table
type Record struct {
	Name          string      `json:"name"`
	KeyTechniques []string    `json:"keyTechniques"`
	Location      string      `json:"location"`
	Stats         []LevelStat `json:"stats"`
	Region        string      `json:"region"`
}

// LevelStat holds every stat of a player at one level. Stat keys are the
// lower-cased stat row labels and keep the order the rows appeared in.
type LevelStat struct {
	Level Number
	keys  []string
	stats map[string]Number
}

// NewLevelStat creates an empty LevelStat for the given level
func NewLevelStat(level Number) LevelStat {
	return LevelStat{
		Level: level,
		stats: make(map[string]Number),
	}
}

// Set stores a stat value. A key seen before keeps its original position.
// The key "level" replaces the level value.
func (s *LevelStat) Set(key string, value Number) {
	if key == levelKey {
		s.Level = value
		return
	}
	if s.stats == nil {
		s.stats = make(map[string]Number)
	}
	if _, exists := s.stats[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.stats[key] = value
}

// Get returns the stat stored under key
func (s LevelStat) Get(key string) (Number, bool) {
	if key == levelKey {
		return s.Level, true
	}
	v, ok := s.stats[key]
	return v, ok
}

// Keys returns the stat keys in insertion order, excluding "level"
func (s LevelStat) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Len returns the number of stats, excluding "level"
func (s LevelStat) Len() int {
	return len(s.keys)
}

// MarshalJSON writes the level first, then each stat in insertion order
func (s LevelStat) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeField(&buf, levelKey, s.Level); err != nil {
		return nil, err
	}
	for _, key := range s.keys {
		buf.WriteByte(',')
		if err := writeField(&buf, key, s.stats[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a LevelStat object, preserving key order
func (s *LevelStat) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("level stat: expected object, got %v", tok)
	}

	decoded := NewLevelStat(Number{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("level stat: expected key, got %v", tok)
		}

		var value Number
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("level stat %q: %w", key, err)
		}
		decoded.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = decoded
	return nil
}

func writeField(buf *bytes.Buffer, key string, value Number) error {
	// Stat labels are written as-is; no HTML escaping
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return err
	}
	// Encode appends a newline
	buf.Truncate(buf.Len() - 1)
	buf.WriteByte(':')

	data, err := value.MarshalJSON()
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
