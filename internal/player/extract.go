package player

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// DefaultTableSelector matches tables nested inside paragraph containers
const DefaultTableSelector = "p table"

// headerRows is the number of fixed rows preceding the stat block
const headerRows = 3

var (
	keyTechniquesLabel = regexp.MustCompile(`(?i)Key\s+Techniques:\s*`)
	locationLabel      = regexp.MustCompile(`(?i)Location:\s*`)
)

// Extract returns one Record per player table in doc, in document order
func Extract(doc *goquery.Document) []Record {
	if doc == nil {
		return []Record{}
	}
	return ExtractSelection(doc.Selection, DefaultTableSelector)
}

// ExtractSelection returns one Record per table under root matching
// selector. Tables without stat rows are skipped. An empty selector falls
// back to DefaultTableSelector.
func ExtractSelection(root *goquery.Selection, selector string) []Record {
	records := make([]Record, 0)
	if root == nil {
		return records
	}
	if selector == "" {
		selector = DefaultTableSelector
	}

	root.Find(selector).Each(func(i int, table *goquery.Selection) {
		record, ok := ParseTable(table)
		if !ok {
			log.Debug().Int("table", i).Msg("Skipping table without stat rows")
			return
		}
		records = append(records, record)
	})

	log.Debug().
		Str("selector", selector).
		Int("players", len(records)).
		Msg("Player tables extracted")

	return records
}

// ParseTable builds a Record from a single table. It reports false when the
// table has no rows after the header rows.
func ParseTable(table *goquery.Selection) (Record, bool) {
	rows := table.Find("tr")

	location := stripLabel(cleanText(rows.Eq(2)), locationLabel)
	record := Record{
		Name:          cleanText(rows.Eq(0)),
		KeyTechniques: parseKeyTechniques(cleanText(rows.Eq(1))),
		Location:      location,
		Region:        regionOf(location),
	}

	statRows := make([][]string, 0)
	rows.Each(func(i int, row *goquery.Selection) {
		if i < headerRows {
			return
		}
		cells := make([]string, 0)
		row.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, cleanText(td))
		})
		statRows = append(statRows, cells)
	})

	if len(statRows) == 0 {
		return Record{}, false
	}

	record.Stats = pivot(statRows)
	return record, true
}

// pivot turns label-first stat rows into one LevelStat per level column.
// statRows[0] is the level header; its first cell is the label placeholder.
func pivot(statRows [][]string) []LevelStat {
	header := statRows[0]
	if len(header) <= 1 {
		return []LevelStat{}
	}

	levels := make([]LevelStat, 0, len(header)-1)
	for col := 1; col < len(header); col++ {
		stat := NewLevelStat(ParseNumber(header[col]))
		for _, row := range statRows[1:] {
			stat.Set(strings.ToLower(cellAt(row, 0)), ParseNumber(cellAt(row, col)))
		}
		levels = append(levels, stat)
	}
	return levels
}

// parseKeyTechniques strips the label and splits on commas. Empty text
// yields a single empty technique.
func parseKeyTechniques(text string) []string {
	parts := strings.Split(stripLabel(text, keyTechniquesLabel), ",")
	techniques := make([]string, len(parts))
	for i, part := range parts {
		techniques[i] = strings.TrimSpace(part)
	}
	return techniques
}

// regionOf returns the first space-delimited token of location
func regionOf(location string) string {
	region, _, _ := strings.Cut(location, " ")
	return region
}

// stripLabel removes the first match of label from text
func stripLabel(text string, label *regexp.Regexp) string {
	loc := label.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + text[loc[1]:]
}

// cleanText returns the selection's text, trimmed and with whitespace runs
// collapsed to a single space
func cleanText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
