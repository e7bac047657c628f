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

// Package vega serializes encoding plans into Vega-Lite v5 specifications.
// It is a pure mapping layer: all chart semantics live in the builders, and
// the assembler only translates a plan into the JSON shape Vega-Lite
// expects, with the data inlined under data.values.
package vega

import (
	"fmt"

	"github.com/qvcti/visualization-api/internal/chart"
)

// SchemaURL identifies the Vega-Lite version the assembled specs target.
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Assemble converts an encoding plan into a self-contained Vega-Lite
// specification. It fails only on structurally incomplete plans; chart-level
// validation happens upstream.
func Assemble(plan *chart.EncodingPlan) (map[string]any, error) {
	if plan == nil {
		return nil, fmt.Errorf("assemble: nil plan")
	}
	if plan.Mark == "" {
		return nil, fmt.Errorf("assemble: plan has no mark")
	}
	if len(plan.Channels) == 0 {
		return nil, fmt.Errorf("assemble: plan has no encoding channels")
	}

	spec := map[string]any{
		"$schema": SchemaURL,
		"data":    map[string]any{"values": rowValues(plan.Rows)},
		"mark":    markSpec(plan),
	}
	if plan.Title != "" {
		spec["title"] = plan.Title
	}

	encoding := make(map[string]any, len(plan.Channels)+1)
	for ch, def := range plan.Channels {
		encoding[string(ch)] = fieldSpec(def)
	}
	if len(plan.Tooltip) > 0 {
		tooltip := make([]any, len(plan.Tooltip))
		for i, def := range plan.Tooltip {
			tooltip[i] = fieldSpec(def)
		}
		encoding["tooltip"] = tooltip
	}
	spec["encoding"] = encoding

	return spec, nil
}

func markSpec(plan *chart.EncodingPlan) any {
	if len(plan.MarkProps) == 0 {
		return plan.Mark
	}
	mark := map[string]any{"type": plan.Mark}
	for k, v := range plan.MarkProps {
		mark[k] = v
	}
	return mark
}

func fieldSpec(def chart.FieldDef) map[string]any {
	out := map[string]any{
		"field": def.Field,
		"type":  string(def.Type),
	}
	if def.Title != "" {
		out["title"] = def.Title
	}
	if def.SortField != "" {
		out["sort"] = map[string]any{"field": def.SortField}
	} else if def.Sort != "" {
		out["sort"] = def.Sort
	}
	if def.Stack != "" {
		out["stack"] = def.Stack
	}
	if def.Format != "" {
		out["format"] = def.Format
	}
	if def.Scale != nil {
		scale := map[string]any{}
		if len(def.Scale.Domain) > 0 {
			scale["domain"] = def.Scale.Domain
		}
		if def.Scale.Scheme != "" {
			scale["scheme"] = def.Scale.Scheme
		}
		if len(scale) > 0 {
			out["scale"] = scale
		}
	}
	return out
}

func rowValues(rows []map[string]any) []map[string]any {
	if rows == nil {
		return []map[string]any{}
	}
	return rows
}
