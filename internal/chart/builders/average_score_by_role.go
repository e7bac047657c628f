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
)

func init() {
	chart.Register(&averageScoreByRole{})
}

// averageScoreByRole reduces a numeric score column per group of a
// categorical column (role by default).
//
// Recognized options:
//   - aggregation: mean | sum | count | median (default mean)
//   - group_by: alternative grouping column (RH and manager views only)
//   - sort: alpha | value_asc | value_desc (default: first-seen order)
//   - top_n: keep only the first N groups after sorting
//   - role: employee | manager | rh
type averageScoreByRole struct{}

func (b *averageScoreByRole) Key() string { return "average-score-by-role" }

func (b *averageScoreByRole) RequiredColumns() []dataset.ColumnSpec {
	return []dataset.ColumnSpec{
		{Name: "role", Type: dataset.Categorical, Required: true},
		{Name: "score", Type: dataset.Numeric, Required: true},
	}
}

func (b *averageScoreByRole) RecognizedOptions() []string {
	return []string{"aggregation", "group_by", "sort", "top_n", "role"}
}

func (b *averageScoreByRole) Build(d *dataset.Dataset, cfg chart.Config) (*chart.EncodingPlan, error) {
	if err := chart.CheckData(d, b.RequiredColumns()); err != nil {
		return nil, err
	}

	role := cfg.Role()
	groupCol := "role"
	aggregation := cfg.String("aggregation", chart.AggMean)
	if role == chart.RoleEmployee {
		// Employee view: fixed single-series aggregation, group-by ignored.
		aggregation = chart.AggMean
	} else if gb := cfg.String("group_by", ""); gb != "" {
		if !d.HasColumn(gb) {
			return nil, &dataset.SchemaError{Columns: []string{gb}}
		}
		groupCol = gb
	}

	groups := chart.GroupBy(d, groupCol, "score")
	if aggregation != chart.AggCount {
		kept := groups[:0]
		for _, g := range groups {
			if len(g.Values) > 0 {
				kept = append(kept, g)
			}
		}
		groups = kept
	}
	if len(groups) == 0 {
		return nil, &chart.InsufficientDataError{Msg: fmt.Sprintf("column %q has no usable groups", groupCol)}
	}

	rows := make([]map[string]any, len(groups))
	for i, g := range groups {
		rows[i] = map[string]any{
			groupCol:    g.Key,
			"value":     chart.Round2(chart.Reduce(g, aggregation)),
			"responses": g.Count,
		}
	}

	if role != chart.RoleEmployee {
		sortRows(rows, cfg.String("sort", ""), groupCol)
		if topN := cfg.Int("top_n", 0); topN > 0 && topN < len(rows) {
			rows = rows[:topN]
		}
	}

	return &chart.EncodingPlan{
		Mark:  "bar",
		Rows:  rows,
		Title: fmt.Sprintf("Score (%s) par %s", aggregation, groupCol),
		Channels: map[chart.Channel]chart.FieldDef{
			chart.ChannelX: {Field: groupCol, Type: chart.Nominal, Title: groupCol},
			chart.ChannelY: {Field: "value", Type: chart.Quantitative, Title: fmt.Sprintf("Score (%s)", aggregation)},
		},
		Tooltip: []chart.FieldDef{
			{Field: groupCol, Type: chart.Nominal},
			{Field: "value", Type: chart.Quantitative, Format: ".2f"},
			{Field: "responses", Type: chart.Quantitative, Title: "Réponses"},
		},
	}, nil
}

func sortRows(rows []map[string]any, order, groupCol string) {
	switch order {
	case "alpha":
		sort.SliceStable(rows, func(i, j int) bool {
			a, _ := rows[i][groupCol].(string)
			b, _ := rows[j][groupCol].(string)
			return a < b
		})
	case "value_asc":
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i]["value"].(float64) < rows[j]["value"].(float64)
		})
	case "value_desc":
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i]["value"].(float64) > rows[j]["value"].(float64)
		})
	}
}
