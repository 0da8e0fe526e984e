package results

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteSink persists sweep trials to a SQLite database
type SQLiteSink struct {
	*sqlStore
}

// NewSQLiteSink opens dbPath and creates the trials table if needed
func NewSQLiteSink(dbPath string, logger *zap.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sweep_trials (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			k REAL NOT NULL,
			correct_ham INTEGER NOT NULL,
			correct_spam INTEGER NOT NULL,
			incorrect_ham INTEGER NOT NULL,
			incorrect_spam INTEGER NOT NULL,
			accuracy REAL NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on run_id for best-trial lookups
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_sweep_trials_run_id ON sweep_trials(run_id)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	logger.Debug("Opened SQLite results store", zap.String("path", dbPath))

	return &SQLiteSink{
		sqlStore: &sqlStore{db: db, logger: logger, name: "sqlite"},
	}, nil
}
