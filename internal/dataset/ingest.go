/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\xEF\xBB\xBF"

// Limits bounds ingestion. Zero values disable the corresponding check.
type Limits struct {
	MaxRows    int
	MaxColumns int
}

// UnsupportedFileError reports an upload whose extension maps to no known
// tabular format.
type UnsupportedFileError struct {
	Ext string
}

func (e *UnsupportedFileError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "unknown"
	}
	return fmt.Sprintf("unsupported file type: %s", ext)
}

func (e *UnsupportedFileError) Kind() string { return "invalid_file_type" }

// IngestResult carries the parsed dataset plus ingestion diagnostics.
type IngestResult struct {
	Dataset *Dataset
	// SkippedRows counts body rows dropped for having the wrong field count.
	SkippedRows int
}

// Read parses an uploaded tabular payload into a Dataset. The format is
// chosen by file extension: .csv (or no extension) is parsed as delimited
// text with delimiter sniffing, .xlsx/.xlsm via excelize. Legacy OLE .xls
// workbooks are not supported. All cells ingest as strings; empty cells
// become nil. Column types default to categorical until Validate assigns
// declared semantic types.
func Read(data []byte, filename string, lim Limits) (*IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var (
		res *IngestResult
		err error
	)
	switch ext {
	case ".xlsx", ".xlsm":
		res, err = readXLSX(data, ext)
	case ".csv", "":
		res, err = readCSV(data)
	default:
		return nil, &UnsupportedFileError{Ext: ext}
	}
	if err != nil {
		return nil, err
	}
	if err := enforceLimits(res.Dataset, lim); err != nil {
		return nil, err
	}
	return res, nil
}

func enforceLimits(d *Dataset, lim Limits) error {
	if lim.MaxRows > 0 && d.Len() > lim.MaxRows {
		return &PayloadTooLargeError{Msg: fmt.Sprintf("dataset has %d rows, limit is %d", d.Len(), lim.MaxRows)}
	}
	if lim.MaxColumns > 0 && len(d.cols) > lim.MaxColumns {
		return &PayloadTooLargeError{Msg: fmt.Sprintf("dataset has %d columns, limit is %d", len(d.cols), lim.MaxColumns)}
	}
	return nil
}

// detectDelimiter counts candidate delimiters in the first sample line and
// picks the most frequent one, falling back to comma.
func detectDelimiter(sample []byte) rune {
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}
	best, bestCount := ',', 0
	for _, cand := range []byte{';', ',', '|', '\t'} {
		if n := bytes.Count(sample, []byte{cand}); n > bestCount {
			best, bestCount = rune(cand), n
		}
	}
	return best
}

func readCSV(data []byte) (*IngestResult, error) {
	sample := data
	if len(sample) > 1024 {
		sample = sample[:1024]
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(sample)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, &SchemaError{Msg: fmt.Sprintf("cannot read header row: %v", err)}
	}
	cols := makeColumns(header)

	var rows []Row
	var skipped int
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(record) != len(cols) {
			// Soft-fail malformed body rows; counted for the caller to log.
			skipped++
			continue
		}
		rows = append(rows, makeRow(cols, record))
	}
	return &IngestResult{Dataset: New(cols, rows), SkippedRows: skipped}, nil
}

func readXLSX(data []byte, ext string) (*IngestResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &UnsupportedFileError{Ext: ext}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &SchemaError{Msg: "workbook contains no sheets"}
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &SchemaError{Msg: fmt.Sprintf("cannot read sheet %q: %v", sheets[0], err)}
	}
	if len(raw) == 0 {
		return nil, &SchemaError{Msg: "workbook sheet is empty"}
	}

	cols := makeColumns(raw[0])
	var rows []Row
	var skipped int
	for _, record := range raw[1:] {
		if isBlank(record) {
			continue
		}
		// excelize trims trailing empty cells; pad back to full width.
		if len(record) < len(cols) {
			padded := make([]string, len(cols))
			copy(padded, record)
			record = padded
		} else if len(record) > len(cols) {
			skipped++
			continue
		}
		rows = append(rows, makeRow(cols, record))
	}
	return &IngestResult{Dataset: New(cols, rows), SkippedRows: skipped}, nil
}

func makeColumns(header []string) []Column {
	cols := make([]Column, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if name == "" {
			name = fmt.Sprintf("col_%d", i)
		}
		cols[i] = Column{Name: name, Type: Categorical}
	}
	return cols
}

func makeRow(cols []Column, record []string) Row {
	row := make(Row, len(cols))
	for i, val := range record {
		v := strings.TrimSpace(val)
		if v == "" {
			row[cols[i].Name] = nil
		} else {
			row[cols[i].Name] = v
		}
	}
	return row
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
