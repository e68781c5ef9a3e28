package store

import (
	"path/filepath"
	"testing"

	"github.com/pbaille/sentiment/internal/domain"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalLabelEvents(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	for i, label := range []int{3, 8} {
		ev, err := j.RecordLabel("sample.csv", i, label)
		if err != nil {
			t.Fatalf("RecordLabel: %v", err)
		}
		if ev.ID == "" || ev.CreatedAt.IsZero() {
			t.Fatalf("event not stamped: %+v", ev)
		}
	}

	events, err := j.ListLabelEvents(10)
	if err != nil {
		t.Fatalf("ListLabelEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events=%d, want 2", len(events))
	}
	labels := map[int]int{}
	for _, e := range events {
		if e.StorePath != "sample.csv" {
			t.Fatalf("store path=%q", e.StorePath)
		}
		labels[e.Row] = e.Label
	}
	if labels[0] != 3 || labels[1] != 8 {
		t.Fatalf("labels=%v", labels)
	}

	limited, err := j.ListLabelEvents(1)
	if err != nil {
		t.Fatalf("ListLabelEvents: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit 1 returned %d", len(limited))
	}
}

func TestJournalScoreRuns(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	run := &domain.ScoreRun{
		InputPath:      "in.csv",
		OutputPath:     "out.csv",
		Backend:        "artifacts",
		ScaleVersion:   "v1",
		WeightText:     0.7,
		RatingPolicy:   "reject",
		Records:        10,
		Rejected:       1,
		Disagreements:  2,
		TextCounts:     map[domain.SentimentClass]int{domain.Positive: 6, domain.Negative: 4},
		CombinedCounts: map[domain.SentimentClass]int{domain.Positive: 5, domain.Neutral: 4},
	}
	if err := j.RecordScoreRun(run); err != nil {
		t.Fatalf("RecordScoreRun: %v", err)
	}
	if run.ID == "" {
		t.Fatalf("run ID not assigned")
	}

	runs, err := j.ListScoreRuns(5)
	if err != nil {
		t.Fatalf("ListScoreRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs=%d, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != run.ID || got.ScaleVersion != "v1" || got.WeightText != 0.7 || got.Rejected != 1 || got.Disagreements != 2 {
		t.Fatalf("run=%+v", got)
	}
	if got.TextCounts[domain.Positive] != 6 || got.CombinedCounts[domain.Neutral] != 4 {
		t.Fatalf("counts=%v / %v", got.TextCounts, got.CombinedCounts)
	}
}
