package dataset

import (
	"errors"
	"testing"
)

func filterFixture() *Dataset {
	return New(
		[]Column{
			{Name: "role", Type: Categorical},
			{Name: "score", Type: Numeric},
			{Name: "Age", Type: Categorical},
		},
		[]Row{
			{"role": "employee", "score": float64(3), "Age": "30"},
			{"role": "manager", "score": float64(4), "Age": "45"},
			{"role": "employee", "score": float64(5), "Age": nil},
		},
	)
}

func floatPtr(f float64) *float64 { return &f }

func TestApplyPredicates(t *testing.T) {
	tests := []struct {
		name  string
		preds []Predicate
		want  int
	}{
		{"eq", []Predicate{{Column: "role", Op: OpEq, Value: "employee"}}, 2},
		{"neq", []Predicate{{Column: "role", Op: OpNeq, Value: "employee"}}, 1},
		{"in", []Predicate{{Column: "role", Op: OpIn, Values: []any{"manager", "other"}}}, 1},
		{"range inclusive", []Predicate{{Column: "score", Op: OpRange, Min: floatPtr(3), Max: floatPtr(4)}}, 2},
		{"range min only", []Predicate{{Column: "score", Op: OpRange, Min: floatPtr(4)}}, 2},
		{"not_null", []Predicate{{Column: "Age", Op: OpNotNull}}, 2},
		{"conjunction", []Predicate{
			{Column: "role", Op: OpEq, Value: "employee"},
			{Column: "score", Op: OpRange, Min: floatPtr(4)},
		}, 1},
		{"numeric eq on string column", []Predicate{{Column: "Age", Op: OpEq, Value: float64(30)}}, 1},
		{"all filtered out", []Predicate{{Column: "role", Op: OpEq, Value: "ghost"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(filterFixture(), tt.preds)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if out.Len() != tt.want {
				t.Errorf("Len() = %d, want %d", out.Len(), tt.want)
			}
		})
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name  string
		preds []Predicate
	}{
		{"unknown column", []Predicate{{Column: "ghost", Op: OpEq, Value: "x"}}},
		{"range on text column", []Predicate{{Column: "role", Op: OpRange, Min: floatPtr(1)}}},
		{"unknown operator", []Predicate{{Column: "role", Op: "like", Value: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(filterFixture(), tt.preds)
			var fe *FilterError
			if !errors.As(err, &fe) {
				t.Fatalf("Apply() error = %v, want FilterError", err)
			}
		})
	}
}

func TestApplyRangeOnUndeclaredNumericColumn(t *testing.T) {
	// Age ingested as categorical but fully numeric: range is accepted.
	out, err := Apply(filterFixture(), []Predicate{{Column: "Age", Op: OpRange, Min: floatPtr(40)}})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.Len() != 1 {
		t.Errorf("Len() = %d, want 1", out.Len())
	}
}

func TestApplyEmptyPredicatesCopies(t *testing.T) {
	in := filterFixture()
	out, err := Apply(in, nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.Len() != in.Len() {
		t.Fatalf("Len() = %d, want %d", out.Len(), in.Len())
	}
	out.Rows()[0]["role"] = "mutated"
	if in.Rows()[0]["role"] != "employee" {
		t.Error("Apply() aliased the input rows")
	}
}

func TestApplyIdempotent(t *testing.T) {
	preds := []Predicate{{Column: "role", Op: OpEq, Value: "employee"}}
	once, err := Apply(filterFixture(), preds)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	twice, err := Apply(once, preds)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if once.Len() != twice.Len() {
		t.Errorf("idempotence broken: %d then %d rows", once.Len(), twice.Len())
	}
}

func TestParsePredicates(t *testing.T) {
	preds, err := ParsePredicates([]byte(`[{"column":"score","op":"range","min":2,"max":4}]`))
	if err != nil {
		t.Fatalf("ParsePredicates() error = %v", err)
	}
	if len(preds) != 1 || preds[0].Op != OpRange || *preds[0].Min != 2 {
		t.Errorf("ParsePredicates() = %+v", preds)
	}
	if _, err := ParsePredicates([]byte(`{"not":"an array"}`)); err == nil {
		t.Error("ParsePredicates() should reject a non-array payload")
	}
}
