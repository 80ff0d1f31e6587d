package services

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatError reports a transaction date that matches none of the accepted
// layouts. Line is the 1-based line in the source file, header included.
type FormatError struct {
	File  string
	Line  int
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: date %q matches neither DD-MM-YYYY nor DD/MM/YYYY", e.File, e.Line, e.Value)
}

// SchemaError reports a required column missing from a source header.
type SchemaError struct {
	File   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.File, e.Column)
}

type table struct {
	path   string
	header []string
	rows   [][]string
	index  map[string]int
}

func isTabular(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

func readTable(path string) (*table, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSV(path)
	case ".xlsx":
		records, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &table{
		path:   path,
		header: header,
		rows:   records[1:],
		index:  make(map[string]int, len(header)),
	}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", path, err)
	}
	return rows, nil
}

// column returns the position of a header, matched case-insensitively.
func (t *table) column(name string) (int, error) {
	if i, ok := t.index[strings.ToLower(name)]; ok {
		return i, nil
	}
	return 0, &SchemaError{File: t.path, Column: name}
}

// columns resolves every name or fails on the first missing one.
func (t *table) columns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		pos, err := t.column(name)
		if err != nil {
			return nil, err
		}
		idx[i] = pos
	}
	return idx, nil
}

// cell tolerates short rows; spreadsheet readers drop trailing empty cells.
func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
