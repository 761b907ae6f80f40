// Package player turns player statistic tables into structured records.
//
// A player table is laid out as three header rows (name, key techniques,
// location) followed by a row-oriented stat block:
//
//	Rex
//	Key Techniques: Slash, Guard
//	Location: North Cave
//	LV  1    5
//	HP  -  215
//
// The stat block is pivoted into one LevelStat per level column. Parsing is
// permissive: missing rows become empty strings, non-numeric cells become
// null and tables without a stat block are skipped.
package player
