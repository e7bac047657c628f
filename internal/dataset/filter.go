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
	"encoding/json"
	"fmt"
	"time"
)

// Op identifies a predicate operator.
type Op string

const (
	OpEq      Op = "eq"
	OpNeq     Op = "neq"
	OpIn      Op = "in"
	OpRange   Op = "range"
	OpNotNull Op = "not_null"
)

// Predicate is one user-supplied row filter. A predicate set is conjunctive;
// within an "in" predicate, membership is a disjunction over Values.
type Predicate struct {
	Column string   `json:"column"`
	Op     Op       `json:"op"`
	Value  any      `json:"value,omitempty"`
	Values []any    `json:"values,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// ParsePredicates decodes the transport's JSON filters field.
func ParsePredicates(raw []byte) ([]Predicate, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var preds []Predicate
	if err := json.Unmarshal(raw, &preds); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}
	return preds, nil
}

// Apply returns a new Dataset holding only the rows satisfying every
// predicate, in their original relative order. An empty predicate set
// returns a copy of the input, never an alias. Apply is pure: it never
// mutates the input and is idempotent for a fixed predicate set.
func Apply(d *Dataset, preds []Predicate) (*Dataset, error) {
	for _, p := range preds {
		if err := checkPredicate(d, p); err != nil {
			return nil, err
		}
	}
	if len(preds) == 0 {
		return d.Clone(), nil
	}

	cols := d.Columns()
	var rows []Row
	for _, row := range d.rows {
		if rowMatches(row, preds) {
			nr := make(Row, len(row))
			for k, v := range row {
				nr[k] = v
			}
			rows = append(rows, nr)
		}
	}
	return New(cols, rows), nil
}

func checkPredicate(d *Dataset, p Predicate) error {
	if !d.HasColumn(p.Column) {
		return &FilterError{Column: p.Column, Msg: "unknown column"}
	}
	switch p.Op {
	case OpEq, OpNeq, OpIn, OpNotNull:
		return nil
	case OpRange:
		t, _ := d.ColumnType(p.Column)
		if t == Numeric || t == Date {
			return nil
		}
		// Undeclared columns ingest as categorical; accept a range predicate
		// when every populated cell still parses as a number.
		for _, v := range d.ColumnValues(p.Column) {
			if v == nil {
				continue
			}
			if _, ok := AsFloat(v); !ok {
				return &FilterError{Column: p.Column, Msg: "range predicate requires a numeric or date column"}
			}
		}
		return nil
	default:
		return &FilterError{Column: p.Column, Msg: fmt.Sprintf("unknown operator %q", p.Op)}
	}
}

func rowMatches(row Row, preds []Predicate) bool {
	for _, p := range preds {
		if !cellMatches(row[p.Column], p) {
			return false
		}
	}
	return true
}

func cellMatches(cell any, p Predicate) bool {
	switch p.Op {
	case OpNotNull:
		return cell != nil
	case OpEq:
		return valuesEqual(cell, p.Value)
	case OpNeq:
		return cell != nil && !valuesEqual(cell, p.Value)
	case OpIn:
		for _, want := range p.Values {
			if valuesEqual(cell, want) {
				return true
			}
		}
		return false
	case OpRange:
		f, ok := numericCell(cell)
		if !ok {
			return false
		}
		if p.Min != nil && f < *p.Min {
			return false
		}
		if p.Max != nil && f > *p.Max {
			return false
		}
		return true
	default:
		return false
	}
}

// valuesEqual compares a cell against a predicate operand, numerically when
// both sides parse as numbers so that "2" matches 2.0 from JSON.
func valuesEqual(cell, want any) bool {
	if cell == nil || want == nil {
		return cell == nil && want == nil
	}
	cf, cok := AsFloat(cell)
	wf, wok := AsFloat(want)
	if cok && wok {
		return cf == wf
	}
	cs, cok2 := AsString(cell)
	ws, wok2 := AsString(want)
	return cok2 && wok2 && cs == ws
}

func numericCell(cell any) (float64, bool) {
	if ts, ok := cell.(time.Time); ok {
		return float64(ts.Unix()), true
	}
	return AsFloat(cell)
}
