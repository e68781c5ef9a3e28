package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/domain"
	"github.com/pbaille/sentiment/internal/labeling"
	"github.com/pbaille/sentiment/internal/scoring"
	"github.com/pbaille/sentiment/internal/store"
)

var (
	_ scoring.Observer  = (*Collector)(nil)
	_ labeling.Observer = (*Collector)(nil)
)

type positivePredictor struct{}

func (positivePredictor) Predict(context.Context, string) (domain.ClassProbabilities, error) {
	return domain.ClassProbabilities{Positive: 1}, nil
}

func TestCollector(t *testing.T) {
	t.Parallel()

	c := New()
	c.ObserveScore(domain.ScoreResult{TextClass: domain.Neutral, CombinedClass: domain.Negative})
	c.ObserveScore(domain.ScoreResult{TextClass: domain.Positive, CombinedClass: domain.Positive})
	c.ObserveRejected()
	c.ObserveLabel(7)
	c.ObserveLabel(7)
	c.ObservePredict(15 * time.Millisecond)

	if got := testutil.ToFloat64(c.scoredTotal.WithLabelValues("combined", "negative")); got != 1 {
		t.Fatalf("combined negative=%v, want 1", got)
	}
	if got := testutil.ToFloat64(c.disagreementsTotal); got != 1 {
		t.Fatalf("disagreements=%v, want 1", got)
	}
	if got := testutil.ToFloat64(c.rejectedTotal); got != 1 {
		t.Fatalf("rejected=%v, want 1", got)
	}
	if got := testutil.ToFloat64(c.labelsTotal.WithLabelValues("7")); got != 2 {
		t.Fatalf("labels 7=%v, want 2", got)
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"sentiment_scored_total", "sentiment_predict_duration_seconds_count 1"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestCollectorObservesBatchScoring(t *testing.T) {
	t.Parallel()

	sc, err := scoring.NewContext(positivePredictor{}, scoring.DefaultOptions())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	table := dataset.NewTable([]string{"Feedback", "Rating"}, [][]string{
		{"great", "5"},
		{"fine", "0"},
		{"odd", "nan"},
	})

	c := New()
	if _, err := scoring.ScoreTable(context.Background(), sc, table, scoring.BatchOptions{
		TextColumn:   "Feedback",
		RatingColumn: "Rating",
		Observer:     c,
	}); err != nil {
		t.Fatalf("ScoreTable: %v", err)
	}

	if got := testutil.ToFloat64(c.scoredTotal.WithLabelValues("combined", "positive")); got != 2 {
		t.Fatalf("combined positive=%v, want 2", got)
	}
	if got := testutil.ToFloat64(c.rejectedTotal); got != 1 {
		t.Fatalf("rejected=%v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.predictSeconds); got != 1 {
		t.Fatalf("histogram series=%d, want 1", got)
	}
}

func TestCollectorObservesLabels(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample.csv")
	if err := os.WriteFile(path, []byte("Feedback,Rating\nGreat,5\nSlow,2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ls, err := store.OpenLabelStore(path, store.Columns{Text: "Feedback", Rating: "Rating", Label: "p_sentiment"})
	if err != nil {
		t.Fatalf("OpenLabelStore: %v", err)
	}

	c := New()
	session := labeling.NewSession(ls, labeling.WithObserver(c))
	if err := session.Run(context.Background(), strings.NewReader("9\n2\n"), io.Discard); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := testutil.ToFloat64(c.labelsTotal.WithLabelValues("9")); got != 1 {
		t.Fatalf("labels 9=%v, want 1", got)
	}
	if got := testutil.ToFloat64(c.labelsTotal.WithLabelValues("2")); got != 1 {
		t.Fatalf("labels 2=%v, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	c := New()
	c.ObserveLabel(4)
	path := filepath.Join(t.TempDir(), "sentiment.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `sentiment_labels_submitted_total{label="4"} 1`) {
		t.Fatalf("textfile missing label counter:\n%s", data)
	}
}
