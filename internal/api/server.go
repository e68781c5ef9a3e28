package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/pbaille/sentiment/internal/domain"
	"github.com/pbaille/sentiment/internal/metrics"
	"github.com/pbaille/sentiment/internal/scoring"
)

// Journal is the read side of the label and scoring history
type Journal interface {
	ListScoreRuns(limit int) ([]domain.ScoreRun, error)
	ListLabelEvents(limit int) ([]domain.LabelEvent, error)
}

// Deps are the services the server exposes
type Deps struct {
	Scoring *scoring.Context
	Journal Journal
	Metrics *metrics.Collector
	Logger  *log.Logger
	Backend string
}

// Server handles HTTP requests for the scoring API
type Server struct {
	deps Deps
	addr string
}

// New creates a new API server
func New(deps Deps, addr string) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	return &Server{deps: deps, addr: addr}
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /score", s.score)
	mux.HandleFunc("GET /runs", s.listRuns)
	mux.HandleFunc("GET /labels/history", s.labelHistory)
	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /metrics", s.deps.Metrics.Handler())

	return withCORS(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"backend":       s.deps.Backend,
		"scale_version": scoring.ScaleVersion,
	})
}

// ScoreRequest is the request body for scoring one feedback text
type ScoreRequest struct {
	Text   string   `json:"text"`
	Rating *float64 `json:"rating,omitempty"`
}

// ScoreResponse carries the text score and, when a rating was given, the blend
type ScoreResponse struct {
	TextScore     float64                `json:"text_score"`
	TextClass     domain.SentimentClass  `json:"text_class"`
	CombinedScore *float64               `json:"combined_score,omitempty"`
	CombinedClass *domain.SentimentClass `json:"combined_class,omitempty"`
	Disagrees     bool                   `json:"disagrees"`
	ScaleVersion  string                 `json:"scale_version"`
}

func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	if s.deps.Scoring == nil {
		writeError(w, http.StatusServiceUnavailable, "no classifier loaded")
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	textScore, err := s.deps.Scoring.ScoreText(r.Context(), req.Text)
	if err != nil {
		s.logf("score: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.deps.Metrics.ObservePredict(time.Since(start))

	resp := ScoreResponse{
		TextScore:    textScore,
		TextClass:    scoring.Classify(textScore),
		ScaleVersion: scoring.ScaleVersion,
	}

	if req.Rating != nil {
		res, err := s.deps.Scoring.Blend(textScore, *req.Rating)
		if err != nil {
			s.deps.Metrics.ObserveRejected()
			if errors.Is(err, scoring.ErrRatingOutOfRange) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.deps.Metrics.ObserveScore(res)
		resp.CombinedScore = &res.CombinedScore
		resp.CombinedClass = &res.CombinedClass
		resp.Disagrees = res.Disagrees()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.deps.Journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal not available")
		return
	}

	limit := limitParam(r, 20)
	runs, err := s.deps.Journal.ListScoreRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"limit": limit,
	})
}

func (s *Server) labelHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.Journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal not available")
		return
	}

	limit := limitParam(r, 50)
	events, err := s.deps.Journal.ListLabelEvents(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"limit":  limit,
	})
}

func limitParam(r *http.Request, def int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (s *Server) logf(format string, args ...any) {
	if s.deps.Logger != nil {
		s.deps.Logger.Printf(format, args...)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
