package factory

import (
	"fmt"
	"path/filepath"

	"github.com/mikey/bayes-spam-filter/internal/adapters/results"
	"github.com/mikey/bayes-spam-filter/internal/config"
	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ResultsFactory creates sweep result sinks based on configuration
type ResultsFactory struct {
	cfg    *config.Config
	fs     afero.Fs
	logger *zap.Logger
}

// NewResultsFactory creates a new results factory
func NewResultsFactory(cfg *config.Config, fs afero.Fs, logger *zap.Logger) *ResultsFactory {
	return &ResultsFactory{
		cfg:    cfg,
		fs:     fs,
		logger: logger,
	}
}

// CreateStore creates the database store named by results.store. It returns
// nil when the store is "none".
func (f *ResultsFactory) CreateStore() (core.TrialSink, error) {
	resultsCfg := f.cfg.GetResults()

	switch resultsCfg.Store {
	case "", "none":
		return nil, nil
	case "memory":
		return results.NewMemorySink(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := f.fs.MkdirAll(filepath.Dir(resultsCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return results.NewSQLiteSink(resultsCfg.SQLitePath, f.logger)
	case "mysql":
		return results.NewMySQLSink(resultsCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported results store: %s", resultsCfg.Store)
	}
}

// CreateSink combines the CSV table at results.csv_path with the configured
// store. The returned sink must be closed by the caller.
func (f *ResultsFactory) CreateSink() (*results.MultiSink, error) {
	resultsCfg := f.cfg.GetResults()

	var csvSink core.TrialSink
	if resultsCfg.CSVPath != "" {
		sink, err := results.NewCSVFileSink(f.fs, resultsCfg.CSVPath)
		if err != nil {
			return nil, err
		}
		csvSink = sink
		f.logger.Info("Writing sweep results table", zap.String("path", resultsCfg.CSVPath))
	}

	store, err := f.CreateStore()
	if err != nil {
		if csvSink != nil {
			csvSink.Close()
		}
		return nil, err
	}
	if store != nil {
		f.logger.Info("Recording sweep results to store", zap.String("store", resultsCfg.Store))
	}

	return results.NewMultiSink(csvSink, store), nil
}
