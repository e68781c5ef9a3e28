package scoring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/domain"
)

// Output columns added to a scored dataset
const (
	ColTextScore     = "text_sentiment"
	ColCombinedScore = "combined_sentiment"
	ColTextClass     = "text_sentiment_class"
	ColCombinedClass = "combined_sentiment_class"
)

// Observer is notified as records are scored
type Observer interface {
	ObservePredict(d time.Duration)
	ObserveScore(res domain.ScoreResult)
	ObserveRejected()
}

// BatchOptions controls a batch scoring pass
type BatchOptions struct {
	TextColumn   string
	RatingColumn string
	Logger       *log.Logger
	Observer     Observer
}

// RowError is a record whose rating could not be blended
type RowError struct {
	Row int
	Err error
}

// Disagreement is a record whose text-only and combined classes differ
type Disagreement struct {
	Row    int
	Text   string
	Rating string
	Result domain.ScoreResult
}

// Summary describes a finished batch
type Summary struct {
	Records        int
	TextCounts     map[domain.SentimentClass]int
	CombinedCounts map[domain.SentimentClass]int
	Disagreements  []Disagreement
	Rejected       []RowError
}

// ScoreTable scores every row of t in place. The four derived columns are
// overwritten. Rows whose rating is rejected keep their text score and class
// while the combined cells stay empty; they are listed in Summary.Rejected.
// A predictor failure aborts the pass.
func ScoreTable(ctx context.Context, sc *Context, t *dataset.Table, opts BatchOptions) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	textCol, err := t.MustColumn(opts.TextColumn)
	if err != nil {
		return nil, err
	}
	ratingCol, err := t.MustColumn(opts.RatingColumn)
	if err != nil {
		return nil, err
	}

	textScoreCol := t.EnsureColumn(ColTextScore)
	combinedScoreCol := t.EnsureColumn(ColCombinedScore)
	textClassCol := t.EnsureColumn(ColTextClass)
	combinedClassCol := t.EnsureColumn(ColCombinedClass)

	summary := &Summary{
		TextCounts:     make(map[domain.SentimentClass]int),
		CombinedCounts: make(map[domain.SentimentClass]int),
	}

	for i := range t.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := t.Cell(i, textCol)
		if dataset.IsMissing(text) {
			text = ""
		}

		start := time.Now()
		textScore, err := sc.ScoreText(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if opts.Observer != nil {
			opts.Observer.ObservePredict(time.Since(start))
		}

		textClass := Classify(textScore)
		t.Set(i, textScoreCol, formatScore(textScore))
		t.Set(i, textClassCol, textClass.String())
		t.Set(i, combinedScoreCol, "")
		t.Set(i, combinedClassCol, "")
		summary.Records++
		summary.TextCounts[textClass]++

		rawRating := t.Cell(i, ratingCol)
		rating, err := parseRating(rawRating)
		var res domain.ScoreResult
		if err == nil {
			res, err = sc.Blend(textScore, rating)
		}
		if err != nil {
			logger.Printf("row %d: rating %q not blended: %v", i+1, rawRating, err)
			summary.Rejected = append(summary.Rejected, RowError{Row: i, Err: err})
			if opts.Observer != nil {
				opts.Observer.ObserveRejected()
			}
			continue
		}

		t.Set(i, combinedScoreCol, formatScore(res.CombinedScore))
		t.Set(i, combinedClassCol, res.CombinedClass.String())
		summary.CombinedCounts[res.CombinedClass]++
		if opts.Observer != nil {
			opts.Observer.ObserveScore(res)
		}

		if res.Disagrees() {
			summary.Disagreements = append(summary.Disagreements, Disagreement{
				Row:    i,
				Text:   text,
				Rating: rawRating,
				Result: res,
			})
		}
	}

	return summary, nil
}

func parseRating(cell string) (float64, error) {
	if dataset.IsMissing(cell) {
		return 0, fmt.Errorf("%w: missing", ErrRatingOutOfRange)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, errors.Join(ErrRatingOutOfRange, fmt.Errorf("parse rating %q: %w", cell, err))
	}
	return v, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
