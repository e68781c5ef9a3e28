package labeling

import (
	"testing"

	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/domain"
)

func TestDeriveClasses(t *testing.T) {
	t.Parallel()

	table := dataset.NewTable([]string{"Feedback", "p_sentiment"}, [][]string{
		{"a", "1"},
		{"b", "4"},
		{"c", "5"},
		{"d", "6.0"},
		{"e", "10"},
		{"f", ""},
	})
	counts, err := DeriveClasses(table, "p_sentiment")
	if err != nil {
		t.Fatalf("DeriveClasses: %v", err)
	}

	col := table.Column(ColClass)
	want := []string{"negative", "negative", "neutral", "positive", "positive", ""}
	for i, w := range want {
		if got := table.Cell(i, col); got != w {
			t.Fatalf("row %d class=%q, want %q", i, got, w)
		}
	}
	if counts[domain.Negative] != 2 || counts[domain.Neutral] != 1 || counts[domain.Positive] != 2 {
		t.Fatalf("counts=%v", counts)
	}

	bad := dataset.NewTable([]string{"p_sentiment"}, [][]string{{"12"}})
	if _, err := DeriveClasses(bad, "p_sentiment"); err == nil {
		t.Fatalf("out-of-range label accepted")
	}
}
