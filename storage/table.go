package storage

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyKey = errors.New("email is required")

// Row is one record addressed by column header name.
type Row map[string]string

// Outcome tells an insert apart from an in-place update.
type Outcome int

const (
	Created Outcome = iota + 1
	Updated
)

// Tier identifies which backing store served an operation.
type Tier int

const (
	Remote Tier = iota + 1
	Local
)

// TableSpec describes one logical table in both tiers.
type TableSpec struct {
	// Name is a human label used in result messages ("profile", "preferences").
	Name string
	// Sheet is the worksheet title in the remote spreadsheet.
	Sheet string
	// File is the fallback CSV path.
	File string
	// Header is the canonical column order used when a table is first created.
	Header []string
	// KeyColumn names the header column holding the record key.
	KeyColumn string
	// SheetRows and SheetCols size a newly created worksheet.
	SheetRows int
	SheetCols int
}

func (s TableSpec) sheetSize() (rows, cols int) {
	rows, cols = s.SheetRows, s.SheetCols
	if rows <= 0 {
		rows = 1000
	}
	if cols < len(s.Header) {
		cols = len(s.Header)
	}
	return rows, cols
}

// Table is one storage tier. Implementations report failures as errors;
// Fallback turns them into a Result.
type Table interface {
	Tier() Tier
	Upsert(ctx context.Context, spec TableSpec, key string, row Row) (Outcome, error)
	Lookup(ctx context.Context, spec TableSpec, key string) (Row, bool, error)
	Append(ctx context.Context, spec TableSpec, row Row) error
}

func sameName(a, b string) bool {
	return strings.EqualFold(cleanName(a), cleanName(b))
}

func cleanName(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if sameName(h, name) {
			return i
		}
	}
	return -1
}

// alignHeader keeps the stored header untouched and appends any canonical
// columns it lacks. extended reports whether anything was appended.
func alignHeader(stored, canonical []string) (header []string, extended bool) {
	header = append([]string(nil), stored...)
	for _, name := range canonical {
		if columnIndex(header, name) < 0 {
			header = append(header, name)
			extended = true
		}
	}
	return header, extended
}

// cells lays a row out in header order. Missing fields are empty strings.
func cells(header []string, row Row) []string {
	out := make([]string, len(header))
	for name, v := range row {
		if i := columnIndex(header, name); i >= 0 {
			out[i] = v
		}
	}
	return out
}

// rowFromCells reads the canonical columns out of a stored row by name.
func rowFromCells(header, canonical, values []string) Row {
	row := make(Row, len(canonical))
	for _, name := range canonical {
		row[name] = cellAt(values, columnIndex(header, name))
	}
	return row
}

func cellAt(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

func isBlankRow(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
