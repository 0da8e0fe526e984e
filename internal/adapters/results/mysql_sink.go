package results

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLSink persists sweep trials to a MySQL database
type MySQLSink struct {
	*sqlStore
}

// NewMySQLSink connects to dsn and creates the trials table if needed
func NewMySQLSink(dsn string, logger *zap.Logger) (*MySQLSink, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sweep_trials (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(36) NOT NULL,
			k DOUBLE NOT NULL,
			correct_ham INT NOT NULL,
			correct_spam INT NOT NULL,
			incorrect_ham INT NOT NULL,
			incorrect_spam INT NOT NULL,
			accuracy DOUBLE NOT NULL,
			INDEX idx_sweep_trials_run_id (run_id)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Debug("Connected to MySQL results store")

	return &MySQLSink{
		sqlStore: &sqlStore{db: db, logger: logger, name: "mysql"},
	}, nil
}
