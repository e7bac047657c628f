package chart

import (
	"errors"
	"testing"

	"github.com/qvcti/visualization-api/internal/dataset"
)

type fakeBuilder struct {
	key string
}

func (b *fakeBuilder) Key() string                            { return b.key }
func (b *fakeBuilder) RequiredColumns() []dataset.ColumnSpec  { return nil }
func (b *fakeBuilder) RecognizedOptions() []string            { return nil }
func (b *fakeBuilder) Build(d *dataset.Dataset, cfg Config) (*EncodingPlan, error) {
	return &EncodingPlan{Mark: "bar", Channels: map[Channel]FieldDef{ChannelX: {Field: "x"}}}, nil
}

func TestRegisterAndResolve(t *testing.T) {
	Register(&fakeBuilder{key: "test-first"})
	Register(&fakeBuilder{key: "test-second"})

	b, err := Resolve("test-first")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if b.Key() != "test-first" {
		t.Errorf("Key() = %q", b.Key())
	}
}

func TestKeysPreserveRegistrationOrder(t *testing.T) {
	Register(&fakeBuilder{key: "test-z"})
	Register(&fakeBuilder{key: "test-a"})

	keys := Keys()
	zIdx, aIdx := -1, -1
	for i, k := range keys {
		switch k {
		case "test-z":
			zIdx = i
		case "test-a":
			aIdx = i
		}
	}
	if zIdx == -1 || aIdx == -1 || zIdx > aIdx {
		t.Errorf("Keys() = %v, want test-z before test-a", keys)
	}
}

func TestRegisterOverwriteKeepsSingleKey(t *testing.T) {
	Register(&fakeBuilder{key: "test-dup"})
	before := len(Keys())
	Register(&fakeBuilder{key: "test-dup"})
	if got := len(Keys()); got != before {
		t.Errorf("duplicate registration grew Keys() from %d to %d", before, got)
	}
}

func TestResolveUnknownChart(t *testing.T) {
	Register(&fakeBuilder{key: "test-known"})
	_, err := Resolve("no-such-chart")
	var uc *UnknownChartError
	if !errors.As(err, &uc) {
		t.Fatalf("Resolve() error = %v, want UnknownChartError", err)
	}
	if uc.Kind() != "unknown_chart" {
		t.Errorf("Kind() = %q", uc.Kind())
	}
	if len(uc.Supported) == 0 {
		t.Error("UnknownChartError carries no supported keys")
	}
}

func TestCheckData(t *testing.T) {
	specs := []dataset.ColumnSpec{{Name: "score", Type: dataset.Numeric, Required: true}}

	empty := dataset.New([]dataset.Column{{Name: "score"}}, nil)
	if err := CheckData(empty, specs); err == nil {
		t.Error("CheckData() on empty dataset should fail")
	}

	allNull := dataset.New(
		[]dataset.Column{{Name: "score"}},
		[]dataset.Row{{"score": nil}, {"score": nil}},
	)
	var ie *InsufficientDataError
	if err := CheckData(allNull, specs); !errors.As(err, &ie) {
		t.Errorf("CheckData() on all-null column = %v, want InsufficientDataError", err)
	}

	ok := dataset.New(
		[]dataset.Column{{Name: "score"}},
		[]dataset.Row{{"score": float64(3)}},
	)
	if err := CheckData(ok, specs); err != nil {
		t.Errorf("CheckData() = %v, want nil", err)
	}
}
