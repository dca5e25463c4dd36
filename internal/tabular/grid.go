// Package tabular handles the rectangularization and interpretation of
// spreadsheet value grids.
//
// The Sheets values API returns ragged rows: trailing empty cells are simply
// absent. Everything downstream (CSV encoding, header-keyed records) assumes a
// rectangular grid, so Normalize is the first step of every read path.
package tabular

import "strings"

// Grid is an ordered sequence of rows of string cells. Rows may have unequal
// length until Normalize has been applied.
type Grid [][]string

// Record maps a trimmed header name to the cell value in that column.
type Record map[string]string

// Normalize right-pads every row with empty strings so that all rows have the
// length of the longest input row. The input is returned unchanged when empty.
// Cell values are never moved or modified; only padding is added.
func Normalize(g Grid) Grid {
	if len(g) == 0 {
		return g
	}

	maxCols := 0
	for _, row := range g {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	out := make(Grid, len(g))
	for i, row := range g {
		padded := make([]string, maxCols)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

// Records interprets row 0 as headers and builds one Record per following row.
// Headers are trimmed of surrounding whitespace. The grid is normalized first,
// so every row is guaranteed to cover the full header width.
//
// Known limitation: duplicate header names are not an error; the rightmost
// column with a given name wins.
func Records(g Grid) []Record {
	g = Normalize(g)
	if len(g) == 0 {
		return nil
	}

	headers := make([]string, len(g[0]))
	for i, h := range g[0] {
		headers[i] = strings.TrimSpace(h)
	}

	out := make([]Record, 0, len(g)-1)
	for _, row := range g[1:] {
		rec := make(Record, len(headers))
		for i, h := range headers {
			rec[h] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// Get returns the value for key, or "" when the record has no such column.
func (r Record) Get(key string) string {
	return r[key]
}

// IsBlank reports whether every cell in the record is empty after trimming.
func (r Record) IsBlank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
