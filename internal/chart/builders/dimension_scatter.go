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

	"github.com/qvcti/visualization-api/internal/chart"
	"github.com/qvcti/visualization-api/internal/dataset"
	"github.com/qvcti/visualization-api/internal/survey"
)

func init() {
	chart.Register(&dimensionScatter{})
}

// dimensionScatter plots each survey dimension as one point: mean score on
// x, score dispersion on y, response count as point size. High-mean
// low-dispersion dimensions are consensual strengths; low-mean
// high-dispersion ones are contested weak spots.
//
// Recognized options:
//   - min_responses: hide dimensions with fewer answers (default 10)
type dimensionScatter struct{}

func (b *dimensionScatter) Key() string { return "dimension-scatter" }

func (b *dimensionScatter) RequiredColumns() []dataset.ColumnSpec { return nil }

func (b *dimensionScatter) RecognizedOptions() []string {
	return []string{"min_responses"}
}

func (b *dimensionScatter) Build(d *dataset.Dataset, cfg chart.Config) (*chart.EncodingPlan, error) {
	likert := survey.LikertColumns(d)
	if len(likert) == 0 {
		return nil, &dataset.SchemaError{Msg: "no Likert question columns found"}
	}

	minResponses := cfg.Int("min_responses", defaultMinResponses)

	responses, _ := survey.ToLong(d, likert)
	if len(responses) == 0 {
		return nil, &chart.InsufficientDataError{Msg: "no usable Likert responses"}
	}

	byDim := map[string][]float64{}
	var dims []string
	for _, r := range responses {
		if _, seen := byDim[r.Prefix]; !seen {
			dims = append(dims, r.Prefix)
		}
		byDim[r.Prefix] = append(byDim[r.Prefix], r.Value)
	}

	var rows []map[string]any
	for _, dim := range dims {
		values := byDim[dim]
		if len(values) < minResponses {
			continue
		}
		rows = append(rows, map[string]any{
			"dimension": survey.PrefixLabel(dim),
			"mean":      chart.Round2(chart.Mean(values)),
			"std":       chart.Round2(chart.StdDev(values)),
			"responses": len(values),
		})
	}
	if len(rows) == 0 {
		return nil, &chart.InsufficientDataError{Msg: fmt.Sprintf("no dimension reached %d responses", minResponses)}
	}

	return &chart.EncodingPlan{
		Mark:  "point",
		Rows:  rows,
		Title: "Dimensions : score moyen et dispersion",
		Channels: map[chart.Channel]chart.FieldDef{
			chart.ChannelX: {
				Field: "mean", Type: chart.Quantitative, Title: "Score moyen",
				Scale: &chart.Scale{Domain: []float64{1, 5}},
			},
			chart.ChannelY:     {Field: "std", Type: chart.Quantitative, Title: "Écart-type"},
			chart.ChannelSize:  {Field: "responses", Type: chart.Quantitative, Title: "Réponses"},
			chart.ChannelColor: {Field: "dimension", Type: chart.Nominal, Title: "Dimension"},
		},
		Tooltip: []chart.FieldDef{
			{Field: "dimension", Type: chart.Nominal},
			{Field: "mean", Type: chart.Quantitative, Format: ".2f"},
			{Field: "std", Type: chart.Quantitative, Format: ".2f"},
			{Field: "responses", Type: chart.Quantitative},
		},
	}, nil
}
