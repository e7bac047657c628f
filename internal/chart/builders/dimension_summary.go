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

	"github.com/qvcti/visualization-api/internal/chart"
	"github.com/qvcti/visualization-api/internal/dataset"
	"github.com/qvcti/visualization-api/internal/survey"
)

func init() {
	chart.Register(&dimensionSummary{})
}

const (
	defaultMinResponses  = 10
	defaultWarnThreshold = 2.5
	defaultGoodThreshold = 3.5
)

// dimensionSummary averages Likert responses per survey dimension and
// attaches an alert status to each one. Dimensions are sorted worst score
// first so the critical ones lead the chart.
//
// Recognized options:
//   - min_responses: hide dimensions with fewer answers (default 10)
//   - warn_threshold: below this the dimension is "Alerte" (default 2.5)
//   - good_threshold: at or above this it is "Point fort" (default 3.5);
//     between the two it is "Vigilance"
//   - segment_field: socio-demographic column to facet by (RH and manager
//     views only)
//   - role: employee | manager | rh
type dimensionSummary struct{}

func (b *dimensionSummary) Key() string { return "dimension-summary" }

func (b *dimensionSummary) RequiredColumns() []dataset.ColumnSpec { return nil }

func (b *dimensionSummary) RecognizedOptions() []string {
	return []string{"min_responses", "warn_threshold", "good_threshold", "segment_field", "role"}
}

func (b *dimensionSummary) Build(d *dataset.Dataset, cfg chart.Config) (*chart.EncodingPlan, error) {
	likert := survey.LikertColumns(d)
	if len(likert) == 0 {
		return nil, &dataset.SchemaError{Msg: "no Likert question columns found"}
	}
	d = survey.MapDemographics(d)

	minResponses := cfg.Int("min_responses", defaultMinResponses)
	warnThreshold := cfg.Float("warn_threshold", defaultWarnThreshold)
	goodThreshold := cfg.Float("good_threshold", defaultGoodThreshold)

	segmentField := ""
	if cfg.Role() != chart.RoleEmployee {
		if sf := cfg.String("segment_field", ""); sf != "" {
			if !d.HasColumn(sf) {
				return nil, &dataset.SchemaError{Columns: []string{sf}}
			}
			segmentField = sf
		}
	}

	responses, _ := survey.ToLong(d, likert)
	if len(responses) == 0 {
		return nil, &chart.InsufficientDataError{Msg: "no usable Likert responses"}
	}

	type cell struct {
		prefix  string
		segment string
		values  []float64
	}
	cells := map[string]*cell{}
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
		k := r.Prefix + "\x00" + seg
		c, ok := cells[k]
		if !ok {
			c = &cell{prefix: r.Prefix, segment: seg}
			cells[k] = c
			keys = append(keys, k)
		}
		c.values = append(c.values, r.Value)
	}

	var rows []map[string]any
	for _, k := range keys {
		c := cells[k]
		if len(c.values) < minResponses {
			continue
		}
		mean := chart.Mean(c.values)
		status := "Vigilance"
		switch {
		case mean < warnThreshold:
			status = "Alerte"
		case mean >= goodThreshold:
			status = "Point fort"
		}
		row := map[string]any{
			"dimension": survey.PrefixLabel(c.prefix),
			"value":     chart.Round2(mean),
			"std":       chart.Round2(chart.StdDev(c.values)),
			"responses": len(c.values),
			"status":    status,
		}
		if segmentField != "" {
			row[segmentField] = c.segment
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, &chart.InsufficientDataError{Msg: fmt.Sprintf("no dimension reached %d responses", minResponses)}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i]["value"].(float64) < rows[j]["value"].(float64)
	})

	plan := &chart.EncodingPlan{
		Mark:  "bar",
		Rows:  rows,
		Title: "Synthèse par dimension",
		Channels: map[chart.Channel]chart.FieldDef{
			chart.ChannelY: {Field: "dimension", Type: chart.Nominal, Title: "Dimension", Sort: "x"},
			chart.ChannelX: {
				Field: "value",
				Type:  chart.Quantitative,
				Title: "Score moyen",
				Scale: &chart.Scale{Domain: []float64{0, 5}},
			},
			chart.ChannelColor: {Field: "status", Type: chart.Nominal, Title: "Statut"},
		},
		Tooltip: []chart.FieldDef{
			{Field: "dimension", Type: chart.Nominal},
			{Field: "value", Type: chart.Quantitative, Format: ".2f"},
			{Field: "std", Type: chart.Quantitative, Format: ".2f", Title: "Écart-type"},
			{Field: "responses", Type: chart.Quantitative, Title: "Réponses"},
			{Field: "status", Type: chart.Nominal},
		},
	}
	if segmentField != "" {
		plan.Channels[chart.ChannelFacet] = chart.FieldDef{Field: segmentField, Type: chart.Nominal, Title: segmentField}
	}
	return plan, nil
}
