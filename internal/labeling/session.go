// Package labeling drives the interactive pseudo-labeling of a feedback
// sample. Every accepted label is persisted before the next record is shown.
package labeling

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/pbaille/sentiment/internal/domain"
)

// Store is the record collection a session labels
type Store interface {
	Path() string
	Len() int
	LabeledCount() int
	Record(i int) domain.FeedbackRecord
	SetLabel(i, value int) error
	ClearLabel(i int)
	Save() error
}

// Recorder keeps an audit trail of accepted labels
type Recorder interface {
	RecordLabel(storePath string, row, label int) (*domain.LabelEvent, error)
}

// Observer is notified of every accepted label
type Observer interface {
	ObserveLabel(label int)
}

// Option configures a Session
type Option func(*Session)

// WithRecorder journals accepted labels; journal failures are logged, not fatal
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithObserver reports accepted labels to o
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithLogger sets the diagnostics logger
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session walks the unlabeled records of a store in order
type Session struct {
	store    Store
	recorder Recorder
	observer Observer
	logger   *log.Logger

	cursor     int
	current    int
	terminated bool
}

// NewSession starts a session at the first record of store
func NewSession(store Store, opts ...Option) *Session {
	s := &Session{store: store, current: -1, logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next presents the next unlabeled record after the last presented one.
// It returns false once none remain, which terminates the session.
func (s *Session) Next() (domain.FeedbackRecord, bool) {
	if s.terminated {
		return domain.FeedbackRecord{}, false
	}
	for i := s.cursor; i < s.store.Len(); i++ {
		rec := s.store.Record(i)
		if !rec.Labeled() {
			s.current = i
			return rec, true
		}
	}
	s.current = -1
	s.terminated = true
	return domain.FeedbackRecord{}, false
}

// Done reports whether the session has terminated
func (s *Session) Done() bool {
	return s.terminated
}

// Progress returns the labeled and total record counts
func (s *Session) Progress() (labeled, total int) {
	return s.store.LabeledCount(), s.store.Len()
}

// Submit labels the presented record with input and persists the store.
// Input that is not an integer in [1,10] returns ErrInvalidLabel and leaves
// the record presented.
func (s *Session) Submit(input string) (int, error) {
	v, err := ParseLabelInput(input)
	if err != nil {
		return 0, err
	}
	if err := s.label(v); err != nil {
		return 0, err
	}
	return v, nil
}

func (s *Session) label(v int) error {
	if s.current < 0 {
		return errors.New("no record presented")
	}
	row := s.current
	prev := s.store.Record(row).Label
	if err := s.store.SetLabel(row, v); err != nil {
		return fmt.Errorf("set label: %w", err)
	}
	if err := s.store.Save(); err != nil {
		// memory must match the file
		if prev != nil {
			_ = s.store.SetLabel(row, *prev)
		} else {
			s.store.ClearLabel(row)
		}
		return err
	}
	s.advance()

	if s.recorder != nil {
		if _, err := s.recorder.RecordLabel(s.store.Path(), row, v); err != nil {
			s.logger.Printf("journal label row %d: %v", row, err)
		}
	}
	if s.observer != nil {
		s.observer.ObserveLabel(v)
	}
	return nil
}

// Skip leaves the presented record unlabeled and moves on without persisting
func (s *Session) Skip() {
	if s.current >= 0 {
		s.advance()
	}
}

// Exit persists the store once and terminates the session
func (s *Session) Exit() error {
	s.terminated = true
	s.current = -1
	return s.store.Save()
}

func (s *Session) advance() {
	s.cursor = s.current + 1
	s.current = -1
}
