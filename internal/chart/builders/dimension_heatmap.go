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
	chart.Register(&dimensionHeatmap{})
}

// dimensionHeatmap crosses survey dimensions with the values of a segment
// column and colors each cell by mean score. The grid is completed so every
// dimension has a cell (possibly null) for every segment. Employee view
// collapses all segments into a single "Ensemble" column.
//
// Recognized options:
//   - segment_field: socio-demographic column for the grid columns
//     (default Sexe, RH and manager views only)
//   - min_responses: null out cells with fewer answers (default 10)
//   - role: employee | manager | rh
type dimensionHeatmap struct{}

func (b *dimensionHeatmap) Key() string { return "dimension-heatmap" }

func (b *dimensionHeatmap) RequiredColumns() []dataset.ColumnSpec { return nil }

func (b *dimensionHeatmap) RecognizedOptions() []string {
	return []string{"segment_field", "min_responses", "role"}
}

func (b *dimensionHeatmap) Build(d *dataset.Dataset, cfg chart.Config) (*chart.EncodingPlan, error) {
	likert := survey.LikertColumns(d)
	if len(likert) == 0 {
		return nil, &dataset.SchemaError{Msg: "no Likert question columns found"}
	}
	d = survey.MapDemographics(d)

	minResponses := cfg.Int("min_responses", defaultMinResponses)

	segmentField := ""
	if cfg.Role() != chart.RoleEmployee {
		segmentField = cfg.String("segment_field", "Sexe")
		if !d.HasColumn(segmentField) {
			return nil, &dataset.SchemaError{Columns: []string{segmentField}}
		}
	}

	responses, _ := survey.ToLong(d, likert)
	if len(responses) == 0 {
		return nil, &chart.InsufficientDataError{Msg: "no usable Likert responses"}
	}

	cells := map[string]map[string][]float64{}
	var dims, segments []string
	seenDim := map[string]bool{}
	seenSeg := map[string]bool{}
	for _, r := range responses {
		seg := "Ensemble"
		if segmentField != "" {
			s, ok := dataset.AsString(r.Row[segmentField])
			if !ok {
				continue
			}
			seg = s
		}
		if !seenDim[r.Prefix] {
			seenDim[r.Prefix] = true
			dims = append(dims, r.Prefix)
		}
		if !seenSeg[seg] {
			seenSeg[seg] = true
			segments = append(segments, seg)
		}
		if cells[r.Prefix] == nil {
			cells[r.Prefix] = map[string][]float64{}
		}
		cells[r.Prefix][seg] = append(cells[r.Prefix][seg], r.Value)
	}

	var rows []map[string]any
	for _, dim := range dims {
		for _, seg := range segments {
			values := cells[dim][seg]
			row := map[string]any{
				"dimension": survey.PrefixLabel(dim),
				"segment":   seg,
				"responses": len(values),
			}
			if len(values) >= minResponses {
				row["value"] = chart.Round2(chart.Mean(values))
			} else {
				row["value"] = nil
			}
			rows = append(rows, row)
		}
	}

	return &chart.EncodingPlan{
		Mark:  "rect",
		Rows:  rows,
		Title: "Score moyen par dimension et segment",
		Channels: map[chart.Channel]chart.FieldDef{
			chart.ChannelX: {Field: "segment", Type: chart.Nominal, Title: segmentTitle(segmentField)},
			chart.ChannelY: {Field: "dimension", Type: chart.Nominal, Title: "Dimension"},
			chart.ChannelColor: {
				Field: "value", Type: chart.Quantitative, Title: "Score moyen",
				Scale: &chart.Scale{Domain: []float64{1, 5}, Scheme: "blues"},
			},
		},
		Tooltip: []chart.FieldDef{
			{Field: "dimension", Type: chart.Nominal},
			{Field: "segment", Type: chart.Nominal},
			{Field: "value", Type: chart.Quantitative, Format: ".2f"},
			{Field: "responses", Type: chart.Quantitative, Title: "Réponses"},
		},
	}, nil
}

func segmentTitle(segmentField string) string {
	if segmentField == "" {
		return "Ensemble"
	}
	return segmentField
}
