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
	"strings"
	"time"
)

// DefaultMaxBadRatio is the malformed-cell tolerance applied when a
// ColumnSpec does not override it: above this share of unparseable cells in
// a column, validation fails instead of coercing to null.
const DefaultMaxBadRatio = 0.2

// dateLayouts is the fixed, documented set of accepted date formats.
// No locale inference is attempted.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01",
	"2006",
}

// ColumnSpec declares a column a chart builder depends on.
type ColumnSpec struct {
	Name     string
	Type     Type
	Required bool
	// MaxBadRatio overrides DefaultMaxBadRatio when > 0.
	MaxBadRatio float64
}

// Validate checks that every required column exists and coerces declared
// columns to their semantic types. Malformed cells become nil; when a
// column's malformed share exceeds its tolerance the whole request fails
// with TypeCoercionError. Returns a new normalized Dataset; the input is
// untouched. Columns not named in specs pass through unchanged.
func Validate(d *Dataset, specs []ColumnSpec) (*Dataset, error) {
	var missing []string
	for _, spec := range specs {
		if spec.Required && !d.HasColumn(spec.Name) {
			missing = append(missing, spec.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Columns: missing}
	}

	out := d.Clone()
	for _, spec := range specs {
		if !out.HasColumn(spec.Name) {
			continue
		}
		if err := coerceColumn(out, spec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func coerceColumn(d *Dataset, spec ColumnSpec) error {
	tolerance := spec.MaxBadRatio
	if tolerance <= 0 {
		tolerance = DefaultMaxBadRatio
	}

	var present, bad int
	for _, row := range d.rows {
		v := row[spec.Name]
		if v == nil {
			continue
		}
		present++
		coerced, ok := coerceValue(v, spec.Type)
		if !ok {
			bad++
			row[spec.Name] = nil
			continue
		}
		row[spec.Name] = coerced
	}

	if present > 0 && float64(bad)/float64(present) > tolerance {
		return &TypeCoercionError{Column: spec.Name, Declared: spec.Type, Bad: bad, Total: present}
	}

	for i, c := range d.cols {
		if c.Name == spec.Name {
			d.cols[i].Type = spec.Type
		}
	}
	return nil
}

func coerceValue(v any, t Type) (any, bool) {
	switch t {
	case Numeric:
		f, ok := AsFloat(v)
		if !ok {
			return nil, false
		}
		return f, true
	case Date:
		if ts, ok := v.(time.Time); ok {
			return ts, true
		}
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		return nil, false
	case Categorical, Ordinal:
		s, ok := AsString(v)
		if !ok {
			return nil, false
		}
		return s, true
	default:
		return v, true
	}
}
