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
	"strconv"
	"strings"
	"time"
)

// Type is the semantic type of a column.
type Type string

const (
	Numeric     Type = "numeric"
	Categorical Type = "categorical"
	Ordinal     Type = "ordinal"
	Date        Type = "date"
)

// Column describes one column of a Dataset.
type Column struct {
	Name string
	Type Type
}

// Row maps column names to cell values. Cell values are nil, string,
// float64, or time.Time.
type Row map[string]any

// Dataset is an ordered collection of rows sharing one column set. It is
// request-local and treated as immutable after ingestion; operations that
// reshape data return a new Dataset.
type Dataset struct {
	cols []Column
	rows []Row
}

// New constructs a Dataset from columns and rows. The caller hands over
// ownership of both slices.
func New(cols []Column, rows []Row) *Dataset {
	return &Dataset{cols: cols, rows: rows}
}

// Columns returns the column descriptors in ingestion order.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.cols))
	copy(out, d.cols)
	return out
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Rows returns the rows in order. The returned slice is shared; callers
// must not mutate row maps.
func (d *Dataset) Rows() []Row { return d.rows }

// HasColumn reports whether name is a column of the dataset.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.cols {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ColumnType returns the semantic type recorded for name. The second result
// is false when the column does not exist.
func (d *Dataset) ColumnType(name string) (Type, bool) {
	for _, c := range d.cols {
		if c.Name == name {
			return c.Type, true
		}
	}
	return "", false
}

// ColumnValues returns the cell values of one column in row order.
func (d *Dataset) ColumnValues(name string) []any {
	out := make([]any, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[name]
	}
	return out
}

// Clone returns a deep copy: callers of the filter engine must never observe
// aliasing with the input dataset.
func (d *Dataset) Clone() *Dataset {
	cols := make([]Column, len(d.cols))
	copy(cols, d.cols)
	rows := make([]Row, len(d.rows))
	for i, r := range d.rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		rows[i] = nr
	}
	return &Dataset{cols: cols, rows: rows}
}

// AsFloat coerces a cell value to float64. Strings are parsed with
// comma-decimal tolerance ("3,5" parses as 3.5, common in French exports).
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AsString renders a cell value for use as a category label.
func AsString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case time.Time:
		return x.Format("2006-01-02"), true
	case nil:
		return "", false
	default:
		return "", false
	}
}
