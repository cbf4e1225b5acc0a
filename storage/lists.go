package storage

import "strings"

// ListSeparator joins list-valued fields inside a single cell.
const ListSeparator = ", "

// JoinList serializes a list field for a tabular cell.
func JoinList(values []string) string {
	return strings.Join(values, ListSeparator)
}

// SplitList parses a cell written by JoinList. Tokens are trimmed and empty
// tokens are dropped, so a blank cell yields an empty (non-nil) slice.
//
// Tokens that themselves contain ", " do not survive the round trip.
func SplitList(cell string) []string {
	out := []string{}
	if strings.TrimSpace(cell) == "" {
		return out
	}
	for _, tok := range strings.Split(cell, ListSeparator) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
