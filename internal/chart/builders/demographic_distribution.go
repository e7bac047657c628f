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
	"math"
	"sort"

	"github.com/qvcti/visualization-api/internal/chart"
	"github.com/qvcti/visualization-api/internal/dataset"
	"github.com/qvcti/visualization-api/internal/survey"
)

func init() {
	chart.Register(&demographicDistribution{})
}

// demographicDistribution histograms one socio-demographic column. Age and
// Ancienne default to the survey reporting bands; other numeric columns get
// fixed-width buckets computed from the filtered data, with the last bucket
// closed on both ends so the maximum lands inside it. Categorical columns
// get one bar per distinct value.
//
// Recognized options:
//   - field: column to histogram (default Age, else the first known
//     socio-demographic column present)
//   - bins: number of buckets for numeric columns (default 4); setting it
//     (or bin_size) switches Age/Ancienne from bands to raw buckets
//   - bin_size: bucket width for numeric columns, overrides bins
//   - sort: alpha | count, categorical columns only (default alpha)
//   - normalize: emit shares instead of counts
type demographicDistribution struct{}

// bandFuncs maps the columns the survey reports in bands to their banding
// function and canonical band order.
var bandFuncs = map[string]struct {
	band   func(float64) string
	labels []string
}{
	"Age":      {survey.AgeBand, survey.AgeBandLabels},
	"Ancienne": {survey.SeniorityBand, survey.SeniorityBandLabels},
}

func (b *demographicDistribution) Key() string { return "demographic-distribution" }

func (b *demographicDistribution) RequiredColumns() []dataset.ColumnSpec { return nil }

func (b *demographicDistribution) RecognizedOptions() []string {
	return []string{"field", "bins", "bin_size", "sort", "normalize"}
}

func (b *demographicDistribution) Build(d *dataset.Dataset, cfg chart.Config) (*chart.EncodingPlan, error) {
	field := cfg.String("field", "")
	if field == "" {
		field = pickSocioField(d)
	}
	if field == "" || !d.HasColumn(field) {
		return nil, &dataset.SchemaError{Columns: []string{field}}
	}
	d = survey.MapDemographics(d)

	values := d.ColumnValues(field)
	var present []any
	for _, v := range values {
		if v != nil {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, &chart.InsufficientDataError{Msg: fmt.Sprintf("column %q has no populated cells", field)}
	}

	normalize := cfg.Bool("normalize", false)

	if nums, ok := allNumeric(present); ok {
		_, hasBins := cfg["bins"]
		_, hasSize := cfg["bin_size"]
		if bf, banded := bandFuncs[field]; banded && !hasBins && !hasSize {
			return b.bandedPlan(field, nums, bf.band, bf.labels, normalize), nil
		}
		return b.numericPlan(field, nums, cfg, normalize)
	}
	return b.categoricalPlan(field, present, cfg, normalize)
}

func (b *demographicDistribution) bandedPlan(field string, nums []float64, band func(float64) string, labels []string, normalize bool) *chart.EncodingPlan {
	counts := map[string]int{}
	for _, v := range nums {
		counts[band(v)]++
	}
	var rows []map[string]any
	for i, label := range labels {
		n := counts[label]
		if n == 0 {
			continue
		}
		row := map[string]any{"bucket": label, "count": n, "order": i}
		if normalize {
			row["share"] = chart.Round2(float64(n) / float64(len(nums)))
		}
		rows = append(rows, row)
	}
	return distributionPlan(field, "bucket", rows, normalize)
}

func (b *demographicDistribution) numericPlan(field string, nums []float64, cfg chart.Config, normalize bool) (*chart.EncodingPlan, error) {
	min, max := nums[0], nums[0]
	for _, v := range nums[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	bins := cfg.Int("bins", 4)
	if bins < 1 {
		bins = 1
	}
	width := (max - min) / float64(bins)
	if binSize := cfg.Float("bin_size", 0); binSize > 0 {
		width = binSize
		bins = int(math.Ceil((max - min) / width))
		if bins < 1 {
			bins = 1
		}
	}
	if width == 0 {
		width = 1
		bins = 1
	}

	counts := make([]int, bins)
	for _, v := range nums {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	rows := make([]map[string]any, 0, bins)
	for i, n := range counts {
		lo := min + float64(i)*width
		hi := lo + width
		label := fmt.Sprintf("[%s, %s)", trimFloat(lo), trimFloat(hi))
		if i == bins-1 {
			label = fmt.Sprintf("[%s, %s]", trimFloat(lo), trimFloat(hi))
		}
		row := map[string]any{"bucket": label, "count": n, "order": i}
		if normalize {
			row["share"] = chart.Round2(float64(n) / float64(len(nums)))
		}
		rows = append(rows, row)
	}

	return distributionPlan(field, "bucket", rows, normalize), nil
}

func (b *demographicDistribution) categoricalPlan(field string, present []any, cfg chart.Config, normalize bool) (*chart.EncodingPlan, error) {
	counts := map[string]int{}
	var order []string
	for _, v := range present {
		s, ok := dataset.AsString(v)
		if !ok {
			continue
		}
		if _, seen := counts[s]; !seen {
			order = append(order, s)
		}
		counts[s]++
	}

	switch cfg.String("sort", "alpha") {
	case "count":
		sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	default:
		sort.Strings(order)
	}

	rows := make([]map[string]any, 0, len(order))
	for i, v := range order {
		row := map[string]any{"bucket": v, "count": counts[v], "order": i}
		if normalize {
			row["share"] = chart.Round2(float64(counts[v]) / float64(len(present)))
		}
		rows = append(rows, row)
	}
	return distributionPlan(field, "bucket", rows, normalize), nil
}

func distributionPlan(field, bucketField string, rows []map[string]any, normalize bool) *chart.EncodingPlan {
	yField, yTitle := "count", "Effectif"
	format := ""
	if normalize {
		yField, yTitle, format = "share", "Part", ".0%"
	}
	return &chart.EncodingPlan{
		Mark:  "bar",
		Rows:  rows,
		Title: fmt.Sprintf("Répartition par %s", field),
		Channels: map[chart.Channel]chart.FieldDef{
			chart.ChannelX: {Field: bucketField, Type: chart.Nominal, Title: field, SortField: "order"},
			chart.ChannelY: {Field: yField, Type: chart.Quantitative, Title: yTitle, Format: format},
		},
		Tooltip: []chart.FieldDef{
			{Field: bucketField, Type: chart.Nominal, Title: field},
			{Field: yField, Type: chart.Quantitative, Title: yTitle, Format: format},
		},
	}
}

func pickSocioField(d *dataset.Dataset) string {
	if d.HasColumn("Age") {
		return "Age"
	}
	for _, col := range survey.SocioColumns {
		if d.HasColumn(col) {
			return col
		}
	}
	return ""
}

func allNumeric(values []any) ([]float64, bool) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		f, ok := dataset.AsFloat(v)
		if !ok {
			return nil, false
		}
		nums = append(nums, f)
	}
	return nums, true
}

func trimFloat(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.1f", f)
}
