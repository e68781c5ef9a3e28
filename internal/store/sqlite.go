package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/sentiment/internal/domain"
)

//go:embed schema.sql
var schema string

// Journal records label events and scoring runs in sqlite
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (and migrates) the journal database at dbPath
func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordLabel stores an accepted label
func (j *Journal) RecordLabel(storePath string, row, label int) (*domain.LabelEvent, error) {
	ev := &domain.LabelEvent{
		ID:        uuid.New().String(),
		StorePath: storePath,
		Row:       row,
		Label:     label,
		CreatedAt: time.Now(),
	}

	_, err := j.db.Exec(
		"INSERT INTO label_events (id, store_path, row_index, label, created_at) VALUES (?, ?, ?, ?, ?)",
		ev.ID, ev.StorePath, ev.Row, ev.Label, ev.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert label event: %w", err)
	}
	return ev, nil
}

// ListLabelEvents returns the most recent label events first
func (j *Journal) ListLabelEvents(limit int) ([]domain.LabelEvent, error) {
	rows, err := j.db.Query(
		"SELECT id, store_path, row_index, label, created_at FROM label_events ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list label events: %w", err)
	}
	defer rows.Close()

	var events []domain.LabelEvent
	for rows.Next() {
		var e domain.LabelEvent
		if err := rows.Scan(&e.ID, &e.StorePath, &e.Row, &e.Label, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan label event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// RecordScoreRun stores a finished scoring run, assigning its ID and timestamp
func (j *Journal) RecordScoreRun(run *domain.ScoreRun) error {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now()

	textCounts, err := json.Marshal(run.TextCounts)
	if err != nil {
		return fmt.Errorf("encode text counts: %w", err)
	}
	combinedCounts, err := json.Marshal(run.CombinedCounts)
	if err != nil {
		return fmt.Errorf("encode combined counts: %w", err)
	}

	_, err = j.db.Exec(`
		INSERT INTO score_runs (id, input_path, output_path, backend, scale_version, weight_text,
			rating_policy, records, rejected, disagreements, text_counts, combined_counts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.InputPath, run.OutputPath, run.Backend, run.ScaleVersion, run.WeightText,
		run.RatingPolicy, run.Records, run.Rejected, run.Disagreements,
		string(textCounts), string(combinedCounts), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert score run: %w", err)
	}
	return nil
}

// ListScoreRuns returns recent scoring runs, newest first
func (j *Journal) ListScoreRuns(limit int) ([]domain.ScoreRun, error) {
	rows, err := j.db.Query(`
		SELECT id, input_path, output_path, backend, scale_version, weight_text, rating_policy,
			records, rejected, disagreements, text_counts, combined_counts, created_at
		FROM score_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list score runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ScoreRun
	for rows.Next() {
		var r domain.ScoreRun
		var textCounts, combinedCounts string
		if err := rows.Scan(&r.ID, &r.InputPath, &r.OutputPath, &r.Backend, &r.ScaleVersion,
			&r.WeightText, &r.RatingPolicy, &r.Records, &r.Rejected, &r.Disagreements,
			&textCounts, &combinedCounts, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score run: %w", err)
		}
		if err := json.Unmarshal([]byte(textCounts), &r.TextCounts); err != nil {
			return nil, fmt.Errorf("decode text counts: %w", err)
		}
		if err := json.Unmarshal([]byte(combinedCounts), &r.CombinedCounts); err != nil {
			return nil, fmt.Errorf("decode combined counts: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}
