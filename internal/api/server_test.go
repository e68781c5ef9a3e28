package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/sentiment/internal/domain"
	"github.com/pbaille/sentiment/internal/scoring"
)

type fixedPredictor struct {
	probs domain.ClassProbabilities
	err   error
}

func (p fixedPredictor) Predict(ctx context.Context, text string) (domain.ClassProbabilities, error) {
	return p.probs, p.err
}

type fakeJournal struct {
	runs   []domain.ScoreRun
	events []domain.LabelEvent
	limits []int
}

func (j *fakeJournal) ListScoreRuns(limit int) ([]domain.ScoreRun, error) {
	j.limits = append(j.limits, limit)
	return j.runs, nil
}

func (j *fakeJournal) ListLabelEvents(limit int) ([]domain.LabelEvent, error) {
	j.limits = append(j.limits, limit)
	return j.events, nil
}

func newTestServer(t *testing.T, p scoring.Predictor, j Journal) http.Handler {
	t.Helper()
	var sc *scoring.Context
	if p != nil {
		var err error
		sc, err = scoring.NewContext(p, scoring.DefaultOptions())
		if err != nil {
			t.Fatalf("NewContext: %v", err)
		}
	}
	return New(Deps{Scoring: sc, Journal: j, Backend: "test"}, ":0").Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestScoreWithRating(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, fixedPredictor{probs: domain.ClassProbabilities{Positive: 1}}, nil)
	rec := do(t, h, http.MethodPost, "/score", `{"text":"great","rating":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var resp ScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TextScore != 10 || resp.TextClass != domain.Positive {
		t.Fatalf("text=%v/%v, want 10/Positive", resp.TextScore, resp.TextClass)
	}
	if resp.CombinedScore == nil || *resp.CombinedScore != 7 {
		t.Fatalf("combined=%v, want 7", resp.CombinedScore)
	}
	if resp.CombinedClass == nil || *resp.CombinedClass != domain.Positive || resp.Disagrees {
		t.Fatalf("combined class=%v disagrees=%v", resp.CombinedClass, resp.Disagrees)
	}
	if resp.ScaleVersion != scoring.ScaleVersion {
		t.Fatalf("scale_version=%q", resp.ScaleVersion)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("cors header=%q", got)
	}
}

func TestScoreTextOnly(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, fixedPredictor{probs: domain.ClassProbabilities{Neutral: 1}}, nil)
	rec := do(t, h, http.MethodPost, "/score", `{"text":"ok"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw["text_class"] != "Neutral" {
		t.Fatalf("text_class=%v, want Neutral", raw["text_class"])
	}
	if _, ok := raw["combined_score"]; ok {
		t.Fatalf("combined_score present without rating")
	}
}

func TestScoreErrors(t *testing.T) {
	t.Parallel()

	good := fixedPredictor{probs: domain.ClassProbabilities{Positive: 1}}
	tests := []struct {
		name      string
		predictor scoring.Predictor
		body      string
		want      int
	}{
		{"no classifier", nil, `{"text":"x"}`, http.StatusServiceUnavailable},
		{"bad body", good, `{`, http.StatusBadRequest},
		{"rating out of range", good, `{"text":"x","rating":6}`, http.StatusUnprocessableEntity},
		{"predictor failure", fixedPredictor{err: errors.New("boom")}, `{"text":"x"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		h := newTestServer(t, tt.predictor, nil)
		rec := do(t, h, http.MethodPost, "/score", tt.body)
		if rec.Code != tt.want {
			t.Fatalf("%s: status=%d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}

func TestJournalEndpoints(t *testing.T) {
	t.Parallel()

	j := &fakeJournal{
		runs:   []domain.ScoreRun{{ID: "run-1", Records: 3, CreatedAt: time.Now()}},
		events: []domain.LabelEvent{{ID: "ev-1", Row: 2, Label: 7}},
	}
	h := newTestServer(t, nil, j)

	rec := do(t, h, http.MethodGet, "/runs?limit=5", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "run-1") {
		t.Fatalf("runs: status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/labels/history?limit=bogus", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ev-1") {
		t.Fatalf("history: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(j.limits) != 2 || j.limits[0] != 5 || j.limits[1] != 50 {
		t.Fatalf("limits=%v, want [5 50]", j.limits)
	}

	noJournal := newTestServer(t, nil, nil)
	if rec := do(t, noJournal, http.MethodGet, "/runs", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("runs without journal: status=%d, want 503", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, fixedPredictor{probs: domain.ClassProbabilities{Positive: 1}}, nil)
	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"backend":"test"`) {
		t.Fatalf("health: status=%d body=%s", rec.Code, rec.Body.String())
	}

	do(t, h, http.MethodPost, "/score", `{"text":"x","rating":5}`)
	rec = do(t, h, http.MethodGet, "/metrics", "")
	if !strings.Contains(rec.Body.String(), `sentiment_scored_total{class="positive",kind="combined"} 1`) {
		t.Fatalf("metrics missing scored counter:\n%s", rec.Body.String())
	}
}
