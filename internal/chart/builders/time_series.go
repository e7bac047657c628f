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
package builders

import (
	"fmt"
	"sort"
	"strings"

	"github.com/qvcti/visualization-api/internal/chart"
	"github.com/qvcti/visualization-api/internal/dataset"
)

func init() {
	chart.Register(&timeSeries{})
}

var timeFieldNames = []string{"year", "annee", "année", "date", "period", "periode", "période", "month", "mois"}

// timeSeries averages a measure per period, optionally split into one line
// per value of a series column. The period x series grid is completed so
// every series has a point (possibly null) at every period.
//
// Recognized options:
//   - time_field: period column (default: first column whose name looks
//     temporal, else the first column)
//   - measure_field: numeric column to average (default: first numeric
//     column)
//   - series_field: column splitting the data into lines (RH and manager
//     views only)
//   - role: employee | manager | rh
type timeSeries struct{}

func (b *timeSeries) Key() string { return "time-series" }

func (b *timeSeries) RequiredColumns() []dataset.ColumnSpec { return nil }

func (b *timeSeries) RecognizedOptions() []string {
	return []string{"time_field", "measure_field", "series_field", "role"}
}

func (b *timeSeries) Build(d *dataset.Dataset, cfg chart.Config) (*chart.EncodingPlan, error) {
	timeField := cfg.String("time_field", "")
	if timeField == "" {
		timeField = pickTimeField(d)
	}
	if !d.HasColumn(timeField) {
		return nil, &dataset.SchemaError{Columns: []string{timeField}}
	}

	measureField := cfg.String("measure_field", "")
	if measureField == "" {
		measureField = pickMeasureField(d, timeField)
	}
	if measureField == "" || !d.HasColumn(measureField) {
		return nil, &dataset.SchemaError{Columns: []string{measureField}}
	}

	seriesField := ""
	if cfg.Role() != chart.RoleEmployee {
		if sf := cfg.String("series_field", ""); sf != "" {
			if !d.HasColumn(sf) {
				return nil, &dataset.SchemaError{Columns: []string{sf}}
			}
			seriesField = sf
		}
	}

	type cell struct{ values []float64 }
	cells := map[string]map[string]*cell{}
	var periods, seriesKeys []string
	seenPeriod := map[string]bool{}
	seenSeries := map[string]bool{}

	for _, row := range d.Rows() {
		period, ok := dataset.AsString(row[timeField])
		if !ok {
			continue
		}
		series := ""
		if seriesField != "" {
			s, ok := dataset.AsString(row[seriesField])
			if !ok {
				continue
			}
			series = s
		}
		if !seenPeriod[period] {
			seenPeriod[period] = true
			periods = append(periods, period)
		}
		if !seenSeries[series] {
			seenSeries[series] = true
			seriesKeys = append(seriesKeys, series)
		}
		if cells[period] == nil {
			cells[period] = map[string]*cell{}
		}
		if cells[period][series] == nil {
			cells[period][series] = &cell{}
		}
		if f, ok := dataset.AsFloat(row[measureField]); ok {
			cells[period][series].values = append(cells[period][series].values, f)
		}
	}
	if len(periods) == 0 {
		return nil, &chart.InsufficientDataError{Msg: fmt.Sprintf("column %q has no populated cells", timeField)}
	}
	sort.Strings(periods)

	var rows []map[string]any
	for _, period := range periods {
		for _, series := range seriesKeys {
			row := map[string]any{timeField: period}
			c := cells[period][series]
			if c != nil && len(c.values) > 0 {
				row["value"] = chart.Round2(chart.Mean(c.values))
				row["responses"] = len(c.values)
			} else {
				row["value"] = nil
				row["responses"] = 0
			}
			if seriesField != "" {
				row[seriesField] = series
			}
			rows = append(rows, row)
		}
	}

	plan := &chart.EncodingPlan{
		Mark:      "line",
		MarkProps: map[string]any{"point": true},
		Rows:      rows,
		Title:     fmt.Sprintf("Évolution de %s", measureField),
		Channels: map[chart.Channel]chart.FieldDef{
			chart.ChannelX: {Field: timeField, Type: chart.OrdinalField, Title: timeField},
			chart.ChannelY: {Field: "value", Type: chart.Quantitative, Title: measureField},
		},
		Tooltip: []chart.FieldDef{
			{Field: timeField, Type: chart.OrdinalField},
			{Field: "value", Type: chart.Quantitative, Format: ".2f"},
			{Field: "responses", Type: chart.Quantitative, Title: "Réponses"},
		},
	}
	if seriesField != "" {
		plan.Channels[chart.ChannelColor] = chart.FieldDef{Field: seriesField, Type: chart.Nominal, Title: seriesField}
	}
	return plan, nil
}

func pickTimeField(d *dataset.Dataset) string {
	for _, col := range d.Columns() {
		lower := strings.ToLower(col.Name)
		for _, name := range timeFieldNames {
			if lower == name || strings.Contains(lower, name) {
				return col.Name
			}
		}
	}
	if cols := d.Columns(); len(cols) > 0 {
		return cols[0].Name
	}
	return ""
}

func pickMeasureField(d *dataset.Dataset, timeField string) string {
	for _, col := range d.Columns() {
		if col.Name == timeField {
			continue
		}
		if col.Type == dataset.Numeric {
			return col.Name
		}
	}
	// Fall back to the first column whose populated cells all parse.
	for _, col := range d.Columns() {
		if col.Name == timeField {
			continue
		}
		if _, ok := allNumeric(populated(d, col.Name)); ok {
			return col.Name
		}
	}
	return ""
}

func populated(d *dataset.Dataset, col string) []any {
	var out []any
	for _, v := range d.ColumnValues(col) {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}
