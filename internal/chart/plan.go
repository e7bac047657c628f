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
package chart

// Channel is a Vega-Lite visual channel.
type Channel string

const (
	ChannelX     Channel = "x"
	ChannelY     Channel = "y"
	ChannelColor Channel = "color"
	ChannelSize  Channel = "size"
	ChannelFacet Channel = "facet"
)

// FieldType is a Vega-Lite encoding field type.
type FieldType string

const (
	Quantitative FieldType = "quantitative"
	Nominal      FieldType = "nominal"
	OrdinalField FieldType = "ordinal"
	Temporal     FieldType = "temporal"
)

// Scale carries the scale fragment of a channel definition.
type Scale struct {
	Domain []float64
	Scheme string
}

// FieldDef maps a data field to one visual channel.
type FieldDef struct {
	Field string
	Type  FieldType
	Title string
	// Sort is a Vega-Lite sort directive ("ascending", "-x", ...) or empty.
	Sort string
	// SortField names a data field to sort this channel by, serialized as an
	// EncodingSortField ({"field": ...}). Takes precedence over Sort.
	SortField string
	// Stack is a stacking mode ("normalize", "zero") or empty.
	Stack string
	// Format is a d3 format string used in tooltips.
	Format string
	Scale  *Scale
}

// EncodingPlan is the intermediate representation between chart builders
// and the spec assembler. Rows hold the final shaped/aggregated data; the
// assembler serializes the plan verbatim and performs no further
// transformation.
type EncodingPlan struct {
	Mark string
	// MarkProps holds optional mark properties (e.g. {"point": true} on a
	// line mark).
	MarkProps map[string]any
	Rows      []map[string]any
	Channels  map[Channel]FieldDef
	Tooltip   []FieldDef
	Title     string
}
