package scoring

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/domain"
)

// keywordPredictor returns a fixed distribution per keyword found in the text
type keywordPredictor map[string]domain.ClassProbabilities

func (k keywordPredictor) Predict(_ context.Context, text string) (domain.ClassProbabilities, error) {
	for word, p := range k {
		if strings.Contains(text, word) {
			return p, nil
		}
	}
	return domain.ClassProbabilities{Neutral: 1}, nil
}

type countingObserver struct {
	predicts, scores, rejected int
}

func (o *countingObserver) ObservePredict(time.Duration) {
	o.predicts++
}

func (o *countingObserver) ObserveScore(domain.ScoreResult) {
	o.scores++
}

func (o *countingObserver) ObserveRejected() {
	o.rejected++
}

func testContext(t *testing.T) *Context {
	t.Helper()
	sc, err := NewContext(keywordPredictor{
		"great": {Positive: 1},
		"awful": {Negative: 1},
	}, DefaultOptions())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return sc
}

func TestScoreTable(t *testing.T) {
	t.Parallel()

	table := dataset.NewTable([]string{"Feedback", "Rating"}, [][]string{
		{"great staff", "5"},
		{"awful wait", "5"},
		{"", "3"},
		{"great again", "9"},
		{"awful", "nan"},
	})
	var logs bytes.Buffer
	obs := &countingObserver{}

	summary, err := ScoreTable(context.Background(), testContext(t), table, BatchOptions{
		TextColumn:   "Feedback",
		RatingColumn: "Rating",
		Logger:       log.New(&logs, "", 0),
		Observer:     obs,
	})
	if err != nil {
		t.Fatalf("ScoreTable: %v", err)
	}

	if summary.Records != 5 {
		t.Fatalf("Records=%d, want 5", summary.Records)
	}
	if len(summary.Rejected) != 2 {
		t.Fatalf("Rejected=%d, want 2", len(summary.Rejected))
	}
	if summary.Rejected[0].Row != 3 || summary.Rejected[1].Row != 4 {
		t.Fatalf("rejected rows=%d,%d, want 3,4", summary.Rejected[0].Row, summary.Rejected[1].Row)
	}
	if !errors.Is(summary.Rejected[1].Err, ErrRatingOutOfRange) {
		t.Fatalf("missing rating err=%v, want ErrRatingOutOfRange", summary.Rejected[1].Err)
	}
	if summary.TextCounts[domain.Positive] != 2 || summary.TextCounts[domain.Negative] != 2 || summary.TextCounts[domain.Neutral] != 1 {
		t.Fatalf("TextCounts=%v", summary.TextCounts)
	}

	// awful text, five stars: 0.7*0 + 0.3*10 = 3 stays negative; empty text
	// with three stars: 0.7*5 + 0.3*6 = 5.3 neutral
	if len(summary.Disagreements) != 0 {
		t.Fatalf("Disagreements=%d, want 0", len(summary.Disagreements))
	}

	col := func(name string) int {
		idx, err := table.MustColumn(name)
		if err != nil {
			t.Fatalf("%v", err)
		}
		return idx
	}
	if got := table.Cell(0, col(ColTextScore)); got != "10.0000" {
		t.Fatalf("row 0 text score=%q, want 10.0000", got)
	}
	if got := table.Cell(0, col(ColCombinedClass)); got != "Positive" {
		t.Fatalf("row 0 combined class=%q, want Positive", got)
	}
	if got := table.Cell(2, col(ColCombinedScore)); got != "5.3000" {
		t.Fatalf("row 2 combined score=%q, want 5.3000", got)
	}
	if got := table.Cell(3, col(ColTextClass)); got != "Positive" {
		t.Fatalf("rejected row text class=%q, want Positive", got)
	}
	if got := table.Cell(3, col(ColCombinedScore)); got != "" {
		t.Fatalf("rejected row combined score=%q, want empty", got)
	}

	if obs.predicts != 5 || obs.scores != 3 || obs.rejected != 2 {
		t.Fatalf("observer=%+v, want 5 predicts, 3 scores, 2 rejected", *obs)
	}
	if !strings.Contains(logs.String(), "row 4") {
		t.Fatalf("log %q does not mention rejected row 4", logs.String())
	}
}

func TestScoreTableDisagreements(t *testing.T) {
	t.Parallel()

	table := dataset.NewTable([]string{"Feedback", "Rating"}, [][]string{
		{"fine", "0"},
		{"fine", "5"},
	})
	summary, err := ScoreTable(context.Background(), testContext(t), table, BatchOptions{
		TextColumn:   "Feedback",
		RatingColumn: "Rating",
	})
	if err != nil {
		t.Fatalf("ScoreTable: %v", err)
	}
	// 5 text with a zero rating blends to 3.5, with a full rating to 6.5
	if len(summary.Disagreements) != 2 {
		t.Fatalf("Disagreements=%d, want 2", len(summary.Disagreements))
	}
	d := summary.Disagreements[0]
	if d.Row != 0 || d.Rating != "0" || d.Result.CombinedClass != domain.Negative {
		t.Fatalf("first disagreement=%+v", d)
	}
}

func TestScoreTableRescoreOverwrites(t *testing.T) {
	t.Parallel()

	table := dataset.NewTable([]string{"Feedback", "Rating", ColTextScore}, [][]string{
		{"great", "5", "stale"},
	})
	if _, err := ScoreTable(context.Background(), testContext(t), table, BatchOptions{
		TextColumn:   "Feedback",
		RatingColumn: "Rating",
	}); err != nil {
		t.Fatalf("ScoreTable: %v", err)
	}
	if len(table.Header) != 6 {
		t.Fatalf("header=%v, want 6 columns", table.Header)
	}
	if got := table.Cell(0, 2); got != "10.0000" {
		t.Fatalf("text score=%q, want overwritten 10.0000", got)
	}
}

func TestScoreTableMissingColumn(t *testing.T) {
	t.Parallel()

	table := dataset.NewTable([]string{"Review"}, [][]string{{"x"}})
	if _, err := ScoreTable(context.Background(), testContext(t), table, BatchOptions{
		TextColumn:   "Feedback",
		RatingColumn: "Rating",
	}); err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestScoreTableCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	table := dataset.NewTable([]string{"Feedback", "Rating"}, [][]string{{"x", "1"}})
	if _, err := ScoreTable(ctx, testContext(t), table, BatchOptions{
		TextColumn:   "Feedback",
		RatingColumn: "Rating",
	}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}
