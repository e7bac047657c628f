package vega

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/qvcti/visualization-api/internal/chart"
)

func TestAssemble(t *testing.T) {
	plan := &chart.EncodingPlan{
		Mark:  "bar",
		Title: "Score par rôle",
		Rows: []map[string]any{
			{"role": "employee", "value": 4.0},
			{"role": "manager", "value": 4.0},
		},
		Channels: map[chart.Channel]chart.FieldDef{
			chart.ChannelX: {Field: "role", Type: chart.Nominal, Title: "role"},
			chart.ChannelY: {
				Field: "value", Type: chart.Quantitative,
				Scale: &chart.Scale{Domain: []float64{0, 5}},
			},
		},
		Tooltip: []chart.FieldDef{
			{Field: "value", Type: chart.Quantitative, Format: ".2f"},
		},
	}

	got, err := Assemble(plan)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	want := map[string]any{
		"$schema": SchemaURL,
		"title":   "Score par rôle",
		"mark":    "bar",
		"data": map[string]any{
			"values": []map[string]any{
				{"role": "employee", "value": 4.0},
				{"role": "manager", "value": 4.0},
			},
		},
		"encoding": map[string]any{
			"x": map[string]any{"field": "role", "type": "nominal", "title": "role"},
			"y": map[string]any{
				"field": "value", "type": "quantitative",
				"scale": map[string]any{"domain": []float64{0, 5}},
			},
			"tooltip": []any{
				map[string]any{"field": "value", "type": "quantitative", "format": ".2f"},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleMarkProps(t *testing.T) {
	plan := &chart.EncodingPlan{
		Mark:      "line",
		MarkProps: map[string]any{"point": true},
		Channels: map[chart.Channel]chart.FieldDef{
			chart.ChannelX: {Field: "annee", Type: chart.OrdinalField},
		},
	}
	got, err := Assemble(plan)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	mark, ok := got["mark"].(map[string]any)
	if !ok {
		t.Fatalf("mark = %v, want object", got["mark"])
	}
	if mark["type"] != "line" || mark["point"] != true {
		t.Errorf("mark = %v", mark)
	}
}

func TestAssembleSortField(t *testing.T) {
	plan := &chart.EncodingPlan{
		Mark: "bar",
		Channels: map[chart.Channel]chart.FieldDef{
			chart.ChannelX: {Field: "bucket", Type: chart.Nominal, SortField: "order"},
			chart.ChannelY: {Field: "dimension", Type: chart.Nominal, Sort: "x"},
		},
	}
	got, err := Assemble(plan)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	encoding := got["encoding"].(map[string]any)
	x := encoding["x"].(map[string]any)
	want := map[string]any{"field": "order"}
	if diff := cmp.Diff(want, x["sort"]); diff != "" {
		t.Errorf("x sort mismatch (-want +got):\n%s", diff)
	}
	y := encoding["y"].(map[string]any)
	if y["sort"] != "x" {
		t.Errorf("y sort = %v, want channel ref string", y["sort"])
	}
}

func TestAssembleEmptyRowsInlineEmptyArray(t *testing.T) {
	plan := &chart.EncodingPlan{
		Mark:     "bar",
		Channels: map[chart.Channel]chart.FieldDef{chart.ChannelX: {Field: "x", Type: chart.Nominal}},
	}
	got, err := Assemble(plan)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	values := got["data"].(map[string]any)["values"].([]map[string]any)
	if values == nil {
		t.Error("data.values should be an empty array, not null")
	}
}

func TestAssembleRejectsIncompletePlans(t *testing.T) {
	if _, err := Assemble(nil); err == nil {
		t.Error("Assemble(nil) should fail")
	}
	if _, err := Assemble(&chart.EncodingPlan{Channels: map[chart.Channel]chart.FieldDef{"x": {}}}); err == nil {
		t.Error("Assemble() without mark should fail")
	}
	if _, err := Assemble(&chart.EncodingPlan{Mark: "bar"}); err == nil {
		t.Error("Assemble() without channels should fail")
	}
}
