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
	"github.com/qvcti/visualization-api/internal/chart"
	"github.com/qvcti/visualization-api/internal/dataset"
	"github.com/qvcti/visualization-api/internal/survey"
)

func init() {
	chart.Register(&likertDistribution{})
}

// likertDistribution counts answers 1..5 per question and renders them as
// normalized stacked bars, one bar per question.
//
// Recognized options:
//   - dimension: keep only questions of one survey dimension prefix
//   - segment_field: socio-demographic column to facet by (RH and manager
//     views only)
//   - role: employee | manager | rh
type likertDistribution struct{}

func (b *likertDistribution) Key() string { return "likert-distribution" }

func (b *likertDistribution) RequiredColumns() []dataset.ColumnSpec { return nil }

func (b *likertDistribution) RecognizedOptions() []string {
	return []string{"dimension", "segment_field", "role"}
}

func (b *likertDistribution) Build(d *dataset.Dataset, cfg chart.Config) (*chart.EncodingPlan, error) {
	likert := survey.LikertColumns(d)
	if dim := cfg.String("dimension", ""); dim != "" {
		var kept []string
		for _, col := range likert {
			if p, ok := survey.Prefix(col); ok && p == dim {
				kept = append(kept, col)
			}
		}
		likert = kept
	}
	if len(likert) == 0 {
		return nil, &dataset.SchemaError{Msg: "no Likert question columns found"}
	}
	d = survey.MapDemographics(d)

	segmentField := ""
	if cfg.Role() != chart.RoleEmployee {
		if sf := cfg.String("segment_field", ""); sf != "" {
			if !d.HasColumn(sf) {
				return nil, &dataset.SchemaError{Columns: []string{sf}}
			}
			segmentField = sf
		}
	}

	responses, outOfRange := survey.ToLong(d, likert)
	if outOfRange > 0 {
		return nil, &dataset.TypeCoercionError{
			Column: "likert", Declared: dataset.Ordinal,
			Bad: outOfRange, Total: len(responses) + outOfRange,
		}
	}
	if len(responses) == 0 {
		return nil, &chart.InsufficientDataError{Msg: "no usable Likert responses"}
	}

	type bucket struct {
		question string
		segment  string
		counts   [6]int
		total    int
	}
	buckets := map[string]*bucket{}
	var keys []string
	for _, r := range responses {
		seg := ""
		if segmentField != "" {
			s, ok := dataset.AsString(r.Row[segmentField])
			if !ok {
				continue
			}
			seg = s
		}
		k := r.Question + "\x00" + seg
		bk, ok := buckets[k]
		if !ok {
			bk = &bucket{question: r.Question, segment: seg}
			buckets[k] = bk
			keys = append(keys, k)
		}
		bk.counts[int(r.Value)]++
		bk.total++
	}

	var rows []map[string]any
	for _, k := range keys {
		bk := buckets[k]
		for resp := 1; resp <= 5; resp++ {
			n := bk.counts[resp]
			if n == 0 {
				continue
			}
			row := map[string]any{
				"question": survey.QuestionLabel(bk.question),
				"response": resp,
				"count":    n,
				"share":    chart.Round2(float64(n) / float64(bk.total)),
			}
			if segmentField != "" {
				row[segmentField] = bk.segment
			}
			rows = append(rows, row)
		}
	}

	plan := &chart.EncodingPlan{
		Mark:  "bar",
		Rows:  rows,
		Title: "Distribution des réponses",
		Channels: map[chart.Channel]chart.FieldDef{
			chart.ChannelY: {Field: "question", Type: chart.Nominal, Title: "Question"},
			chart.ChannelX: {Field: "share", Type: chart.Quantitative, Title: "Part des réponses", Stack: "normalize"},
			chart.ChannelColor: {
				Field: "response", Type: chart.OrdinalField, Title: "Réponse",
				Scale: &chart.Scale{Scheme: "redyellowgreen"},
			},
		},
		Tooltip: []chart.FieldDef{
			{Field: "question", Type: chart.Nominal},
			{Field: "response", Type: chart.OrdinalField},
			{Field: "count", Type: chart.Quantitative, Title: "Réponses"},
			{Field: "share", Type: chart.Quantitative, Format: ".0%"},
		},
	}
	if segmentField != "" {
		plan.Channels[chart.ChannelFacet] = chart.FieldDef{Field: segmentField, Type: chart.Nominal, Title: segmentField}
	}
	return plan, nil
}
