package headers

import (
	"fmt"
	"strings"
)

// Parse converts header strings ("Key: Value") into a map.
// Later entries for the same key replace earlier ones.
func Parse(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		key, value, ok := strings.Cut(hdr, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed header %q: expected \"Key: Value\"", hdr)
		}
		if strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("malformed header %q: name contains whitespace", hdr)
		}
		m[key] = strings.TrimSpace(value)
	}
	return m, nil
}
