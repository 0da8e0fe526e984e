package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/mikey/bayes-spam-filter/internal/core"
	"go.uber.org/zap"
)

const insertTrialSQL = `
	INSERT INTO sweep_trials (run_id, k, correct_ham, correct_spam, incorrect_ham, incorrect_spam, accuracy)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

const bestTrialSQL = `
	SELECT k, correct_ham, correct_spam, incorrect_ham, incorrect_spam, accuracy
	FROM sweep_trials
	WHERE run_id = ?
	ORDER BY accuracy DESC, id ASC
	LIMIT 1
`

// sqlStore batches trial inserts of a database/sql backend into one
// transaction that is committed on Flush, Best or Close.
type sqlStore struct {
	db     *sql.DB
	tx     *sql.Tx
	mu     sync.Mutex
	logger *zap.Logger
	name   string
}

// Record stores a trial of runID
func (s *sqlStore) Record(ctx context.Context, runID string, trial core.TrialResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin %s transaction: %w", s.name, err)
		}
		s.tx = tx
	}

	_, err := s.tx.ExecContext(ctx, insertTrialSQL,
		runID, trial.K, trial.CorrectHam, trial.CorrectSpam, trial.IncorrectHam, trial.IncorrectSpam, trial.Accuracy)
	if err != nil {
		return fmt.Errorf("failed to insert trial: %w", err)
	}
	return nil
}

// Flush commits pending trials
func (s *sqlStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commitLocked()
}

func (s *sqlStore) commitLocked() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit %s transaction: %w", s.name, err)
	}
	return nil
}

// Best returns the first trial with the highest accuracy of runID
func (s *sqlStore) Best(ctx context.Context, runID string) (*core.TrialResult, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}

	var trial core.TrialResult
	err := s.db.QueryRowContext(ctx, bestTrialSQL, runID).Scan(
		&trial.K, &trial.CorrectHam, &trial.CorrectSpam, &trial.IncorrectHam, &trial.IncorrectSpam, &trial.Accuracy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query best trial: %w", err)
	}
	return &trial, nil
}

// Count returns the number of committed trials of runID
func (s *sqlStore) Count(ctx context.Context, runID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sweep_trials WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count trials: %w", err)
	}
	return n, nil
}

// Close commits pending trials and closes the database connection
func (s *sqlStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	commitErr := s.commitLocked()
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close results database", zap.String("store", s.name), zap.Error(err))
		if commitErr == nil {
			return fmt.Errorf("failed to close %s database: %w", s.name, err)
		}
	}
	return commitErr
}
