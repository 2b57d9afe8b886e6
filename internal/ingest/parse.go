// Package ingest turns raw tabular source files into typed records.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrHeaderNotFound = errors.New("header row not found")

// RawRow maps a header name to the cell value of one data row.
type RawRow map[string]string

// Options control how a file is read. Row indexes count non-blank rows
// from zero. A DataStartRow at or before HeaderRow means the row right after
// the header.
type Options struct {
	Encoding     string
	HeaderRow    int
	DataStartRow int
}

func (o Options) dataStart() int {
	if o.DataStartRow <= o.HeaderRow {
		return o.HeaderRow + 1
	}
	return o.DataStartRow
}

// Table is a parsed file: headers in column order and rows in input order.
type Table struct {
	Headers []string
	Rows    []RawRow
	// Skipped counts records the CSV reader rejected.
	Skipped int
}

// Parse decodes raw in opts.Encoding and returns the data rows keyed by
// header. Short rows are padded with empty strings and long rows truncated.
func Parse(raw []byte, opts Options) ([]RawRow, error) {
	t, err := ParseTable(raw, opts)
	if err != nil {
		return nil, err
	}
	return t.Rows, nil
}

// ParseTable is Parse but keeps the header order and skip count.
func ParseTable(raw []byte, opts Options) (*Table, error) {
	if opts.HeaderRow < 0 {
		return nil, fmt.Errorf("%w: negative header row %d", ErrHeaderNotFound, opts.HeaderRow)
	}

	text, err := Decode(raw, opts.Encoding)
	if err != nil {
		return nil, err
	}

	records, skipped, err := readRecords(text)
	if err != nil {
		return nil, err
	}
	if opts.HeaderRow >= len(records) {
		return nil, fmt.Errorf("%w: want row %d, file has %d rows", ErrHeaderNotFound, opts.HeaderRow, len(records))
	}

	headers := normalizeHeaders(records[opts.HeaderRow])
	t := &Table{Headers: make([]string, 0, len(headers)), Skipped: skipped}
	for _, h := range headers {
		if h != "" {
			t.Headers = append(t.Headers, h)
		}
	}

	start := opts.dataStart()
	if start >= len(records) {
		t.Rows = []RawRow{}
		return t, nil
	}

	t.Rows = make([]RawRow, 0, len(records)-start)
	for _, rec := range records[start:] {
		row := make(RawRow, len(t.Headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			row[h] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func readRecords(text string) ([][]string, int, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	skipped := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				skipped++
				continue
			}
			return nil, skipped, fmt.Errorf("reading csv: %w", err)
		}
		if blank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizeHeaders cleans header cells. Empty cells get a positional name and
// duplicates after the first occurrence are blanked so they are dropped.
func normalizeHeaders(cells []string) []string {
	out := make([]string, len(cells))
	seen := make(map[string]bool, len(cells))
	for i, c := range cells {
		h := NormalizeHeader(c)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		out[i] = h
	}
	return out
}

// NormalizeHeader trims a header cell, strips a byte order mark and
// collapses internal whitespace, including line breaks inside quoted cells.
func NormalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.Join(strings.Fields(s), " ")
}
