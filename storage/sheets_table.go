package storage

import (
	"context"
	"fmt"
	"strings"
)

// SheetsAPI is the slice of a spreadsheet service the remote tier needs.
// Rows are 1-based, row 1 being the header.
type SheetsAPI interface {
	SheetTitles(ctx context.Context) ([]string, error)
	AddSheet(ctx context.Context, title string, rows, cols int) error
	Values(ctx context.Context, sheet string) ([][]string, error)
	AppendRow(ctx context.Context, sheet string, values []string) error
	UpdateRow(ctx context.Context, sheet string, row int, values []string) error
}

// SheetsTable is the remote tier: one worksheet per table inside a shared spreadsheet.
type SheetsTable struct {
	api SheetsAPI
}

func NewSheetsTable(api SheetsAPI) *SheetsTable {
	return &SheetsTable{api: api}
}

func (t *SheetsTable) Tier() Tier { return Remote }

// resolve finds the worksheet whose title matches spec.Sheet ignoring case and
// surrounding whitespace. With create set, a missing worksheet is added.
func (t *SheetsTable) resolve(ctx context.Context, spec TableSpec, create bool) (string, bool, error) {
	titles, err := t.api.SheetTitles(ctx)
	if err != nil {
		return "", false, fmt.Errorf("list worksheets: %w", err)
	}
	for _, title := range titles {
		if sameName(title, spec.Sheet) {
			return title, true, nil
		}
	}
	if !create {
		return "", false, nil
	}
	rows, cols := spec.sheetSize()
	if err := t.api.AddSheet(ctx, spec.Sheet, rows, cols); err != nil {
		return "", false, fmt.Errorf("add worksheet %q: %w", spec.Sheet, err)
	}
	return spec.Sheet, true, nil
}

// prepare returns the worksheet title and its current values with a usable
// header in values[0], writing or extending the header row as needed.
func (t *SheetsTable) prepare(ctx context.Context, spec TableSpec) (string, [][]string, error) {
	title, _, err := t.resolve(ctx, spec, true)
	if err != nil {
		return "", nil, err
	}
	values, err := t.api.Values(ctx, title)
	if err != nil {
		return "", nil, fmt.Errorf("read %q: %w", title, err)
	}

	if len(values) == 0 || isBlankRow(values[0]) {
		if err := t.api.AppendRow(ctx, title, spec.Header); err != nil {
			return "", nil, fmt.Errorf("write header to %q: %w", title, err)
		}
		return title, [][]string{append([]string(nil), spec.Header...)}, nil
	}

	header, extended := alignHeader(values[0], spec.Header)
	if extended {
		if err := t.api.UpdateRow(ctx, title, 1, header); err != nil {
			return "", nil, fmt.Errorf("extend header of %q: %w", title, err)
		}
		values[0] = header
	}
	return title, values, nil
}

func (t *SheetsTable) Upsert(ctx context.Context, spec TableSpec, key string, row Row) (Outcome, error) {
	title, values, err := t.prepare(ctx, spec)
	if err != nil {
		return 0, err
	}
	header := values[0]
	keyIdx := columnIndex(header, spec.KeyColumn)
	if keyIdx < 0 {
		return 0, fmt.Errorf("%q: key column %q missing", title, spec.KeyColumn)
	}
	out := cells(header, row)

	for i := 1; i < len(values); i++ {
		if cellAt(values[i], keyIdx) == key {
			if err := t.api.UpdateRow(ctx, title, i+1, out); err != nil {
				return 0, fmt.Errorf("update %q row %d: %w", title, i+1, err)
			}
			return Updated, nil
		}
	}
	if err := t.api.AppendRow(ctx, title, out); err != nil {
		return 0, fmt.Errorf("append to %q: %w", title, err)
	}
	return Created, nil
}

func (t *SheetsTable) Lookup(ctx context.Context, spec TableSpec, key string) (Row, bool, error) {
	title, ok, err := t.resolve(ctx, spec, false)
	if err != nil || !ok {
		return nil, false, err
	}
	values, err := t.api.Values(ctx, title)
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w", title, err)
	}
	if len(values) < 2 {
		return nil, false, nil
	}
	header := values[0]
	keyIdx := columnIndex(header, spec.KeyColumn)
	if keyIdx < 0 {
		return nil, false, nil
	}
	for _, rec := range values[1:] {
		if cellAt(rec, keyIdx) == key {
			return rowFromCells(header, spec.Header, rec), true, nil
		}
	}
	return nil, false, nil
}

func (t *SheetsTable) Append(ctx context.Context, spec TableSpec, row Row) error {
	title, values, err := t.prepare(ctx, spec)
	if err != nil {
		return err
	}
	if err := t.api.AppendRow(ctx, title, cells(values[0], row)); err != nil {
		return fmt.Errorf("append to %q: %w", title, err)
	}
	return nil
}

// columnLetter converts a 1-based column number to A1 notation (1 -> A, 27 -> AA).
func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// a1Range renders 'Sheet Name'!A{row}:{col}{row}.
func a1Range(sheet string, row, width int) string {
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%s!A%d:%s%d", quoteSheet(sheet), row, columnLetter(width), row)
}

func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
