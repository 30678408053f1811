package backfill

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Row is one data row of the input CSV, keyed by header name.
type Row struct {
	Num    int // 1-indexed, header is row 1
	Fields map[string]string
}

// Get returns a trimmed field value, "" when the column is absent.
func (r Row) Get(name string) string {
	return strings.TrimSpace(r.Fields[name])
}

// ParseWarning records a non-fatal issue hit while parsing the CSV.
type ParseWarning struct {
	Row     int
	Message string
}

// ParseResult holds the parsed rows alongside any warnings.
type ParseResult struct {
	Headers  []string
	Rows     []Row
	Warnings []ParseWarning
}

// HasColumns reports the first required column missing from the header,
// or "" when all are present.
func (p *ParseResult) HasColumns(required ...string) string {
	present := make(map[string]bool, len(p.Headers))
	for _, h := range p.Headers {
		present[h] = true
	}
	for _, col := range required {
		if !present[col] {
			return col
		}
	}
	return ""
}

// ParseFile reads a CSV leniently: BOM-trimmed headers, variable column
// counts padded or truncated with a warning, unparseable rows skipped
// with a warning.
func ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headers, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row found")
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	headerCount := len(headers)

	result := &ParseResult{Headers: headers}
	rowNum := 1

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++

		if err != nil {
			result.Warnings = append(result.Warnings, ParseWarning{
				Row:     rowNum,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}

		if len(record) != headerCount {
			if len(record) < headerCount {
				result.Warnings = append(result.Warnings, ParseWarning{
					Row:     rowNum,
					Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(record), headerCount),
				})
				padded := make([]string, headerCount)
				copy(padded, record)
				record = padded
			} else {
				result.Warnings = append(result.Warnings, ParseWarning{
					Row:     rowNum,
					Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(record), headerCount),
				})
				record = record[:headerCount]
			}
		}

		fields := make(map[string]string, headerCount)
		for i, h := range headers {
			fields[h] = record[i]
		}
		result.Rows = append(result.Rows, Row{Num: rowNum, Fields: fields})
	}

	if len(result.Rows) == 0 {
		return nil, errors.New("file contains no data rows")
	}
	return result, nil
}
