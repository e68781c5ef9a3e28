package scoring

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/pbaille/sentiment/internal/domain"
)

// SampleDisagreements picks up to n disagreements with a seeded shuffle and
// returns them in row order
func SampleDisagreements(all []Disagreement, n int, seed uint64) []Disagreement {
	if n <= 0 || len(all) == 0 {
		return nil
	}
	picked := append([]Disagreement(nil), all...)
	if len(picked) > n {
		r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		r.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
		picked = picked[:n]
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].Row < picked[j].Row })
	return picked
}

// DisagreementReport renders sampled disagreements for manual review
func DisagreementReport(samples []Disagreement) string {
	var sb strings.Builder
	sb.WriteString("Examples where Text Sentiment differs from Combined Sentiment\n")
	sb.WriteString("=====================================================\n\n")
	for _, d := range samples {
		fmt.Fprintf(&sb, "Example %d:\n", d.Row+1)
		fmt.Fprintf(&sb, "Feedback: %s\n", d.Text)
		fmt.Fprintf(&sb, "Rating: %s\n", d.Rating)
		fmt.Fprintf(&sb, "Text-only sentiment: %s (score: %.2f)\n", d.Result.TextClass, d.Result.TextScore)
		fmt.Fprintf(&sb, "Combined sentiment: %s (score: %.2f)\n", d.Result.CombinedClass, d.Result.CombinedScore)
		sb.WriteString(strings.Repeat("-", 80))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// StatsReport renders the class distribution of both scores
func StatsReport(s *Summary) string {
	var sb strings.Builder
	sb.WriteString("Sentiment Class Distribution\n")
	sb.WriteString("==========================\n\n")
	sb.WriteString("Text-only Sentiment Classes:\n")
	writeCounts(&sb, s.TextCounts)
	sb.WriteString("\nCombined Sentiment Classes:\n")
	writeCounts(&sb, s.CombinedCounts)
	fmt.Fprintf(&sb, "\nRecords: %d\nDisagreements: %d\nRejected ratings: %d\n",
		s.Records, len(s.Disagreements), len(s.Rejected))
	return sb.String()
}

func writeCounts(sb *strings.Builder, counts map[domain.SentimentClass]int) {
	for _, c := range domain.Classes {
		fmt.Fprintf(sb, "%-10s %d\n", c, counts[c])
	}
}
