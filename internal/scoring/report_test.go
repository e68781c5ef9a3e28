package scoring

import (
	"strings"
	"testing"

	"github.com/pbaille/sentiment/internal/domain"
)

func disagreements(n int) []Disagreement {
	out := make([]Disagreement, n)
	for i := range out {
		out[i] = Disagreement{
			Row:    i,
			Text:   "text",
			Rating: "1",
			Result: domain.ScoreResult{TextScore: 5, CombinedScore: 3.5, TextClass: domain.Neutral, CombinedClass: domain.Negative},
		}
	}
	return out
}

func TestSampleDisagreements(t *testing.T) {
	t.Parallel()

	all := disagreements(50)
	a := SampleDisagreements(all, 10, 42)
	b := SampleDisagreements(all, 10, 42)
	if len(a) != 10 {
		t.Fatalf("len=%d, want 10", len(a))
	}
	for i := range a {
		if a[i].Row != b[i].Row {
			t.Fatalf("same seed gave different samples")
		}
		if i > 0 && a[i-1].Row >= a[i].Row {
			t.Fatalf("sample not in row order: %d then %d", a[i-1].Row, a[i].Row)
		}
	}

	if got := SampleDisagreements(all[:3], 10, 42); len(got) != 3 {
		t.Fatalf("small input len=%d, want 3", len(got))
	}
	if got := SampleDisagreements(all, 0, 42); got != nil {
		t.Fatalf("n=0 gave %d samples", len(got))
	}
}

func TestReports(t *testing.T) {
	t.Parallel()

	report := DisagreementReport(disagreements(2))
	for _, want := range []string{"Example 1:", "Example 2:", "Text-only sentiment: Neutral (score: 5.00)", "Combined sentiment: Negative (score: 3.50)"} {
		if !strings.Contains(report, want) {
			t.Fatalf("disagreement report missing %q:\n%s", want, report)
		}
	}

	stats := StatsReport(&Summary{
		Records:        4,
		TextCounts:     map[domain.SentimentClass]int{domain.Positive: 3, domain.Negative: 1},
		CombinedCounts: map[domain.SentimentClass]int{domain.Positive: 4},
		Disagreements:  disagreements(1),
	})
	for _, want := range []string{"Records: 4", "Disagreements: 1", "Rejected ratings: 0", "Positive   3"} {
		if !strings.Contains(stats, want) {
			t.Fatalf("stats report missing %q:\n%s", want, stats)
		}
	}
}
