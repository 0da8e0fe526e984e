package results

import (
	"context"
	"errors"
	"sync"

	"github.com/mikey/bayes-spam-filter/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a run has no recorded trials
	ErrNotFound = errors.New("no trials recorded for run")
	// ErrClosed is returned when recording to a closed sink
	ErrClosed = errors.New("results sink closed")
)

// MemorySink keeps trials in memory, grouped by run
type MemorySink struct {
	runs   map[string][]core.TrialResult
	mu     sync.RWMutex
	closed bool
	logger *zap.Logger
}

// NewMemorySink creates a new in-memory sink
func NewMemorySink(logger *zap.Logger) *MemorySink {
	return &MemorySink{
		runs:   make(map[string][]core.TrialResult),
		logger: logger,
	}
}

// Record stores a trial of runID
func (s *MemorySink) Record(_ context.Context, runID string, trial core.TrialResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.runs[runID] = append(s.runs[runID], trial)
	return nil
}

// Trials returns a copy of the recorded trials of runID in insertion order
func (s *MemorySink) Trials(runID string) []core.TrialResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]core.TrialResult(nil), s.runs[runID]...)
}

// Best returns the first trial with the highest accuracy of runID
func (s *MemorySink) Best(_ context.Context, runID string) (*core.TrialResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trials := s.runs[runID]
	if len(trials) == 0 {
		return nil, ErrNotFound
	}
	best := trials[0]
	for _, trial := range trials[1:] {
		if trial.Accuracy > best.Accuracy {
			best = trial
		}
	}
	return &best, nil
}

// Close marks the sink closed
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.logger.Debug("Closed memory results sink", zap.Int("runs", len(s.runs)))
	return nil
}
