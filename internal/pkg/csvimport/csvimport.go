// Package csvimport parses header-first CSV uploads into records keyed by header name.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Diagnostic points at one problem in the input. Line is 1-based; Column is 1-based or 0 when
// the whole record is affected.
type Diagnostic struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// ParseError is returned when the input cannot be imported as a whole.
type ParseError struct {
	Diagnostics []Diagnostic
}

func (e *ParseError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "csv parse error"
	}
	d := e.Diagnostics[0]
	msg := fmt.Sprintf("csv parse error at line %d: %s", d.Line, d.Message)
	if n := len(e.Diagnostics) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// Record maps header names to field values. Empty fields are kept as "".
type Record map[string]string

type Result struct {
	Headers []string
	Records []Record
	// Lines holds the 1-based input line of each record.
	Lines []int
}

// maxDiagnostics bounds the diagnostics collected for a single upload.
const maxDiagnostics = 50

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads data with the first record as header. Blank lines are skipped. A record whose
// field count differs from the header is reported, as is any syntax error; in both cases no
// records are returned.
func Parse(data []byte) (*Result, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Diagnostics: []Diagnostic{{Line: 1, Message: "missing header row"}}}
	}
	if err != nil {
		return nil, &ParseError{Diagnostics: []Diagnostic{fromReadError(err)}}
	}

	// headers are matched to column names exactly, so they are kept verbatim
	headers := make([]string, len(header))
	seen := make(map[string]int, len(header))
	var diags []Diagnostic
	for i, h := range header {
		headers[i] = h
		if h == "" {
			continue
		}
		if prev, ok := seen[h]; ok {
			diags = append(diags, Diagnostic{
				Line:    1,
				Column:  i + 1,
				Message: fmt.Sprintf("duplicate header %q (first seen in column %d)", h, prev+1),
			})
			continue
		}
		seen[h] = i
	}

	var records []Record
	var lines []int
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			diags = append(diags, fromReadError(err))
			break
		}

		line, _ := r.FieldPos(0)
		if len(fields) != len(headers) {
			diags = append(diags, Diagnostic{
				Line:    line,
				Message: fmt.Sprintf("expected %d fields, found %d", len(headers), len(fields)),
			})
			if len(diags) >= maxDiagnostics {
				break
			}
			continue
		}

		rec := make(Record, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			rec[h] = fields[i]
		}
		records = append(records, rec)
		lines = append(lines, line)
	}

	if len(diags) > 0 {
		return nil, &ParseError{Diagnostics: diags}
	}
	return &Result{Headers: headers, Records: records, Lines: lines}, nil
}

func fromReadError(err error) Diagnostic {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return Diagnostic{Line: pe.Line, Column: pe.Column, Message: pe.Err.Error()}
	}
	return Diagnostic{Message: err.Error()}
}
