package lexicon

import (
	"context"
	"math"
	"testing"

	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/domain"
)

func TestLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		compound float64
		want     domain.SentimentClass
	}{
		{0.9, domain.Positive},
		{0.0501, domain.Positive},
		{0.05, domain.Neutral},
		{0, domain.Neutral},
		{-0.05, domain.Neutral},
		{-0.0501, domain.Negative},
		{-0.8, domain.Negative},
	}
	for _, tc := range cases {
		if got := Label(tc.compound); got != tc.want {
			t.Fatalf("Label(%v)=%v, want %v", tc.compound, got, tc.want)
		}
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	a := New()
	cases := map[string]domain.SentimentClass{
		"The staff were great and really friendly!": domain.Positive,
		"Terrible service, I hate waiting.":         domain.Negative,
		"The parcel arrived on Tuesday.":            domain.Neutral,
	}
	for text, want := range cases {
		s := a.Analyze(text)
		if got := Label(s.Compound); got != want {
			t.Fatalf("Analyze(%q) compound=%v label=%v, want %v", text, s.Compound, got, want)
		}
	}
}

func TestPredictIsDistribution(t *testing.T) {
	t.Parallel()

	a := New()
	for _, text := range []string{"Lovely people", "awful", ""} {
		p, err := a.Predict(context.Background(), text)
		if err != nil {
			t.Fatalf("Predict(%q): %v", text, err)
		}
		if math.Abs(p.Sum()-1) > 1e-9 {
			t.Fatalf("Predict(%q) sums to %v", text, p.Sum())
		}
	}
}

func TestAnnotateTable(t *testing.T) {
	t.Parallel()

	table := dataset.NewTable([]string{"Feedback"}, [][]string{{"I love it"}, {"nan"}})
	if err := New().AnnotateTable(table, "Feedback"); err != nil {
		t.Fatalf("AnnotateTable: %v", err)
	}
	label := table.Column(ColLabel)
	if got := table.Cell(0, label); got != "positive" {
		t.Fatalf("label=%q, want positive", got)
	}
	if got := table.Cell(1, label); got != "neutral" {
		t.Fatalf("missing text label=%q, want neutral", got)
	}
	if got := table.Cell(1, table.Column(ColScore)); got != "0.0000" {
		t.Fatalf("missing text score=%q, want 0.0000", got)
	}

	if err := New().AnnotateTable(table, "Review"); err == nil {
		t.Fatalf("missing column accepted")
	}
}
