package builders

import (
	"errors"
	"fmt"
	"testing"

	"github.com/qvcti/visualization-api/internal/chart"
	"github.com/qvcti/visualization-api/internal/dataset"
)

func scoreDataset() *dataset.Dataset {
	return dataset.New(
		[]dataset.Column{
			{Name: "role", Type: dataset.Categorical},
			{Name: "score", Type: dataset.Numeric},
		},
		[]dataset.Row{
			{"role": "employee", "score": float64(3)},
			{"role": "employee", "score": float64(5)},
			{"role": "manager", "score": float64(4)},
		},
	)
}

func likertDataset() *dataset.Dataset {
	cols := []dataset.Column{
		{Name: "Sexe", Type: dataset.Categorical},
		{Name: "POV1", Type: dataset.Categorical},
		{Name: "RECO1", Type: dataset.Categorical},
	}
	var rows []dataset.Row
	for i := 0; i < 12; i++ {
		sexe := "1"
		if i%2 == 0 {
			sexe = "2"
		}
		rows = append(rows, dataset.Row{
			"Sexe":  sexe,
			"POV1":  fmt.Sprintf("%d", 1+i%5),
			"RECO1": fmt.Sprintf("%d", 1+(i+2)%5),
		})
	}
	return dataset.New(cols, rows)
}

func TestAverageScoreByRoleMean(t *testing.T) {
	b, err := chart.Resolve("average-score-by-role")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	plan, err := b.Build(scoreDataset(), chart.Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if plan.Mark != "bar" {
		t.Errorf("Mark = %q", plan.Mark)
	}
	if len(plan.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(plan.Rows))
	}
	byRole := map[string]map[string]any{}
	for _, row := range plan.Rows {
		byRole[row["role"].(string)] = row
	}
	if got := byRole["employee"]["value"]; got != 4.0 {
		t.Errorf("employee mean = %v, want 4.0", got)
	}
	if got := byRole["manager"]["value"]; got != 4.0 {
		t.Errorf("manager mean = %v, want 4.0", got)
	}
	if got := byRole["employee"]["responses"]; got != 2 {
		t.Errorf("employee responses = %v, want 2", got)
	}
}

func TestAverageScoreByRoleOptions(t *testing.T) {
	b, _ := chart.Resolve("average-score-by-role")

	t.Run("sum aggregation", func(t *testing.T) {
		plan, err := b.Build(scoreDataset(), chart.Config{"aggregation": "sum", "sort": "value_desc"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if got := plan.Rows[0]["value"]; got != 8.0 {
			t.Errorf("top row value = %v, want employee sum 8.0", got)
		}
	})

	t.Run("top_n truncates", func(t *testing.T) {
		plan, err := b.Build(scoreDataset(), chart.Config{"top_n": 1})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(plan.Rows) != 1 {
			t.Errorf("got %d rows, want 1", len(plan.Rows))
		}
	})

	t.Run("unknown group_by column", func(t *testing.T) {
		_, err := b.Build(scoreDataset(), chart.Config{"group_by": "ghost"})
		var se *dataset.SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("Build() error = %v, want SchemaError", err)
		}
	})

	t.Run("employee role forces mean and ignores group knobs", func(t *testing.T) {
		plan, err := b.Build(scoreDataset(), chart.Config{
			"role": "employee", "aggregation": "sum", "top_n": 1, "sort": "value_desc",
		})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(plan.Rows) != 2 {
			t.Errorf("got %d rows, want untruncated 2", len(plan.Rows))
		}
		for _, row := range plan.Rows {
			if row["role"] == "employee" && row["value"] != 4.0 {
				t.Errorf("employee value = %v, want mean 4.0", row["value"])
			}
		}
	})
}

func TestDemographicDistributionNumericBuckets(t *testing.T) {
	var rows []dataset.Row
	for _, v := range []float64{0, 10, 25, 26, 50, 74, 75, 99, 100} {
		rows = append(rows, dataset.Row{"Age": v})
	}
	d := dataset.New([]dataset.Column{{Name: "Age", Type: dataset.Numeric}}, rows)

	b, _ := chart.Resolve("demographic-distribution")
	plan, err := b.Build(d, chart.Config{"bins": 4})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(plan.Rows) != 4 {
		t.Fatalf("got %d buckets, want 4", len(plan.Rows))
	}
	wantLabels := []string{"[0, 25)", "[25, 50)", "[50, 75)", "[75, 100]"}
	wantCounts := []int{2, 2, 2, 3}
	total := 0
	for i, row := range plan.Rows {
		if row["bucket"] != wantLabels[i] {
			t.Errorf("bucket[%d] = %v, want %q", i, row["bucket"], wantLabels[i])
		}
		if row["count"] != wantCounts[i] {
			t.Errorf("count[%d] = %v, want %d", i, row["count"], wantCounts[i])
		}
		total += row["count"].(int)
	}
	if total != d.Len() {
		t.Errorf("bucket counts sum to %d, want %d", total, d.Len())
	}
}

func TestDemographicDistributionAgeBands(t *testing.T) {
	var rows []dataset.Row
	for _, v := range []float64{22, 28, 35, 45, 52, 61} {
		rows = append(rows, dataset.Row{"Age": v})
	}
	d := dataset.New([]dataset.Column{{Name: "Age", Type: dataset.Numeric}}, rows)

	b, _ := chart.Resolve("demographic-distribution")
	plan, err := b.Build(d, chart.Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	wantBuckets := []string{"Moins de 30 ans", "30-39 ans", "40-49 ans", "50-59 ans", "60 ans et plus"}
	wantCounts := []int{2, 1, 1, 1, 1}
	if len(plan.Rows) != len(wantBuckets) {
		t.Fatalf("got %d bands, want %d", len(plan.Rows), len(wantBuckets))
	}
	for i, row := range plan.Rows {
		if row["bucket"] != wantBuckets[i] || row["count"] != wantCounts[i] {
			t.Errorf("band[%d] = %v, want %q x%d", i, row, wantBuckets[i], wantCounts[i])
		}
	}
	if got := plan.Channels[chart.ChannelX].SortField; got != "order" {
		t.Errorf("x sort field = %q, want order", got)
	}
}

func TestDemographicDistributionSeniorityBands(t *testing.T) {
	d := dataset.New(
		[]dataset.Column{{Name: "Ancienne", Type: dataset.Numeric}},
		[]dataset.Row{
			{"Ancienne": float64(0.5)}, {"Ancienne": float64(3)}, {"Ancienne": float64(25)},
		},
	)
	b, _ := chart.Resolve("demographic-distribution")
	plan, err := b.Build(d, chart.Config{"field": "Ancienne"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// Empty bands are dropped, surviving ones keep ascending order.
	want := []string{"Moins d'un an", "1-5 ans", "Plus de 20 ans"}
	if len(plan.Rows) != len(want) {
		t.Fatalf("got %d bands, want %d", len(plan.Rows), len(want))
	}
	for i, row := range plan.Rows {
		if row["bucket"] != want[i] {
			t.Errorf("band[%d] = %v, want %q", i, row["bucket"], want[i])
		}
	}
}

func TestDemographicDistributionExplicitBinsOverrideBands(t *testing.T) {
	var rows []dataset.Row
	for _, v := range []float64{20, 30, 40, 60} {
		rows = append(rows, dataset.Row{"Age": v})
	}
	d := dataset.New([]dataset.Column{{Name: "Age", Type: dataset.Numeric}}, rows)

	b, _ := chart.Resolve("demographic-distribution")
	plan, err := b.Build(d, chart.Config{"bins": 2})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(plan.Rows) != 2 {
		t.Fatalf("got %d buckets, want 2 raw buckets", len(plan.Rows))
	}
	if plan.Rows[0]["bucket"] != "[20, 40)" {
		t.Errorf("bucket[0] = %v, want raw interval label", plan.Rows[0]["bucket"])
	}
}

func TestDemographicDistributionCategorical(t *testing.T) {
	d := dataset.New(
		[]dataset.Column{{Name: "Contrat", Type: dataset.Categorical}},
		[]dataset.Row{
			{"Contrat": "1"}, {"Contrat": "1"}, {"Contrat": "2"}, {"Contrat": nil},
		},
	)
	b, _ := chart.Resolve("demographic-distribution")
	plan, err := b.Build(d, chart.Config{"field": "Contrat", "sort": "count", "normalize": true})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(plan.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(plan.Rows))
	}
	// Demographic code mapping applied, most frequent first.
	if plan.Rows[0]["bucket"] != "CDI" || plan.Rows[0]["count"] != 2 {
		t.Errorf("first row = %v", plan.Rows[0])
	}
	if got := plan.Rows[0]["share"]; got != 0.67 {
		t.Errorf("share = %v, want 0.67 of populated cells", got)
	}
}

func TestDimensionSummary(t *testing.T) {
	b, _ := chart.Resolve("dimension-summary")
	plan, err := b.Build(likertDataset(), chart.Config{"min_responses": 5})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(plan.Rows) != 2 {
		t.Fatalf("got %d rows, want POV and RECO", len(plan.Rows))
	}
	// Worst dimension first.
	if plan.Rows[0]["value"].(float64) > plan.Rows[1]["value"].(float64) {
		t.Errorf("rows not sorted worst first: %v", plan.Rows)
	}
	for _, row := range plan.Rows {
		status := row["status"].(string)
		if status != "Alerte" && status != "Vigilance" && status != "Point fort" {
			t.Errorf("status = %q", status)
		}
	}
}

func TestDimensionSummaryNoLikertColumns(t *testing.T) {
	d := dataset.New([]dataset.Column{{Name: "Age"}}, []dataset.Row{{"Age": "30"}})
	b, _ := chart.Resolve("dimension-summary")
	_, err := b.Build(d, chart.Config{})
	var se *dataset.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("Build() error = %v, want SchemaError", err)
	}
}

func TestDimensionSummaryMinResponsesFilter(t *testing.T) {
	b, _ := chart.Resolve("dimension-summary")
	_, err := b.Build(likertDataset(), chart.Config{"min_responses": 50})
	var ie *chart.InsufficientDataError
	if !errors.As(err, &ie) {
		t.Fatalf("Build() error = %v, want InsufficientDataError", err)
	}
}

func TestLikertDistribution(t *testing.T) {
	b, _ := chart.Resolve("likert-distribution")
	plan, err := b.Build(likertDataset(), chart.Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := plan.Channels[chart.ChannelX].Stack; got != "normalize" {
		t.Errorf("x stack = %q, want normalize", got)
	}
	// Shares per question sum to 1.
	sums := map[string]float64{}
	for _, row := range plan.Rows {
		sums[row["question"].(string)] += row["share"].(float64)
	}
	for q, sum := range sums {
		if sum < 0.98 || sum > 1.02 {
			t.Errorf("shares for %q sum to %v", q, sum)
		}
	}
}

func TestLikertDistributionOutOfRange(t *testing.T) {
	d := dataset.New(
		[]dataset.Column{{Name: "POV1"}},
		[]dataset.Row{{"POV1": "4"}, {"POV1": "9"}},
	)
	b, _ := chart.Resolve("likert-distribution")
	_, err := b.Build(d, chart.Config{})
	var te *dataset.TypeCoercionError
	if !errors.As(err, &te) {
		t.Fatalf("Build() error = %v, want TypeCoercionError", err)
	}
}

func TestTimeSeries(t *testing.T) {
	d := dataset.New(
		[]dataset.Column{
			{Name: "annee", Type: dataset.Categorical},
			{Name: "score", Type: dataset.Numeric},
			{Name: "Secteur", Type: dataset.Categorical},
		},
		[]dataset.Row{
			{"annee": "2023", "score": float64(3), "Secteur": "A"},
			{"annee": "2024", "score": float64(4), "Secteur": "A"},
			{"annee": "2024", "score": float64(5), "Secteur": "B"},
		},
	)
	b, _ := chart.Resolve("time-series")
	plan, err := b.Build(d, chart.Config{"series_field": "Secteur"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if plan.Mark != "line" {
		t.Errorf("Mark = %q", plan.Mark)
	}
	// Completed 2 periods x 2 series grid.
	if len(plan.Rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(plan.Rows))
	}
	var nulls int
	for _, row := range plan.Rows {
		if row["value"] == nil {
			nulls++
		}
	}
	if nulls != 1 {
		t.Errorf("got %d null fills, want 1 (B in 2023)", nulls)
	}
}

func TestDimensionHeatmapEmployeeCollapses(t *testing.T) {
	b, _ := chart.Resolve("dimension-heatmap")
	plan, err := b.Build(likertDataset(), chart.Config{"role": "employee", "min_responses": 1})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if plan.Mark != "rect" {
		t.Errorf("Mark = %q", plan.Mark)
	}
	for _, row := range plan.Rows {
		if row["segment"] != "Ensemble" {
			t.Errorf("employee view segment = %v, want Ensemble", row["segment"])
		}
	}
}

func TestDimensionHeatmapGrid(t *testing.T) {
	b, _ := chart.Resolve("dimension-heatmap")
	plan, err := b.Build(likertDataset(), chart.Config{"segment_field": "Sexe", "min_responses": 1})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// 2 dimensions x 2 segments, completed.
	if len(plan.Rows) != 4 {
		t.Errorf("got %d cells, want 4", len(plan.Rows))
	}
}

func TestDimensionScatter(t *testing.T) {
	b, _ := chart.Resolve("dimension-scatter")
	plan, err := b.Build(likertDataset(), chart.Config{"min_responses": 5})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if plan.Mark != "point" {
		t.Errorf("Mark = %q", plan.Mark)
	}
	if len(plan.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(plan.Rows))
	}
	for _, row := range plan.Rows {
		if row["responses"].(int) < 5 {
			t.Errorf("row below min_responses: %v", row)
		}
	}
}

func TestAllRegisteredBuildersResolve(t *testing.T) {
	want := []string{
		"average-score-by-role",
		"dimension-summary",
		"likert-distribution",
		"demographic-distribution",
		"time-series",
		"dimension-heatmap",
		"dimension-scatter",
	}
	for _, key := range want {
		if _, err := chart.Resolve(key); err != nil {
			t.Errorf("Resolve(%q) error = %v", key, err)
		}
	}
}
