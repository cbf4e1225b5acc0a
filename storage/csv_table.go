package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dietvision/logger"

	"go.uber.org/zap"
)

// CSVTable is the local fallback tier: one comma-delimited file per table,
// header row first.
type CSVTable struct{}

func NewCSVTable() *CSVTable { return &CSVTable{} }

func (t *CSVTable) Tier() Tier { return Local }

func (t *CSVTable) Upsert(ctx context.Context, spec TableSpec, key string, row Row) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	records, err := readTable(spec.File)
	if err != nil {
		return 0, err
	}
	if records == nil {
		return Created, writeTable(spec.File, [][]string{spec.Header, cells(spec.Header, row)})
	}

	header, extended := alignHeader(records[0], spec.Header)
	keyIdx := columnIndex(header, spec.KeyColumn)
	if keyIdx < 0 {
		return 0, fmt.Errorf("%s: key column %q missing", spec.File, spec.KeyColumn)
	}
	values := cells(header, row)

	for i := 1; i < len(records); i++ {
		if cellAt(records[i], keyIdx) == key {
			records[0] = header
			records[i] = values
			return Updated, writeTable(spec.File, records)
		}
	}

	if extended {
		records[0] = header
		return Created, writeTable(spec.File, append(records, values))
	}
	return Created, appendLine(spec.File, values)
}

func (t *CSVTable) Lookup(ctx context.Context, spec TableSpec, key string) (Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	records, err := readTable(spec.File)
	if err != nil || records == nil {
		return nil, false, err
	}
	keyIdx := columnIndex(records[0], spec.KeyColumn)
	if keyIdx < 0 {
		return nil, false, nil
	}
	for _, rec := range records[1:] {
		if cellAt(rec, keyIdx) == key {
			return rowFromCells(records[0], spec.Header, rec), true, nil
		}
	}
	return nil, false, nil
}

func (t *CSVTable) Append(ctx context.Context, spec TableSpec, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	records, err := readTable(spec.File)
	if err != nil {
		return err
	}
	if records == nil {
		return writeTable(spec.File, [][]string{spec.Header, cells(spec.Header, row)})
	}
	header, extended := alignHeader(records[0], spec.Header)
	if extended {
		records[0] = header
		return writeTable(spec.File, append(records, cells(header, row)))
	}
	return appendLine(spec.File, cells(header, row))
}

// readTable returns nil records for a missing, empty, or unparseable file.
// An unparseable file is recreated by the next write.
func readTable(path string) ([][]string, error) {
	if path == "" {
		return nil, errors.New("csv path is empty")
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("unparseable csv, recreating", zap.String("path", path), zap.Error(err))
			return nil, nil
		}
		records = append(records, rec)
	}
	if len(records) == 0 || isBlankRow(records[0]) {
		return nil, nil
	}
	// spreadsheet exports often lead with a UTF-8 byte order mark
	if len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

// writeTable rewrites the whole file through a temp file in the same directory.
func writeTable(path string, records [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// appendLine adds one record at the end of an existing file, leaving the header alone.
func appendLine(path string, values []string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// a file saved without a trailing newline would glue the new row onto the last one
	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, info.Size()-1); err == nil && last[0] != '\n' {
			if _, err := f.Write([]byte("\n")); err != nil {
				return fmt.Errorf("append %s: %w", path, err)
			}
		}
	}

	w := csv.NewWriter(f)
	if err := w.Write(values); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	return nil
}
