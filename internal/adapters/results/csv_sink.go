package results

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/spf13/afero"
)

// CSVHeader is the first row of every results table
var CSVHeader = []string{"K Value", "Correct Ham", "Correct Spam", "Incorrect Ham", "Incorrect Spam", "Percentage Accuracy"}

// CSVSink writes one delimited row per trial after a header row
type CSVSink struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVSink writes the header row to w and returns the sink
func NewCSVSink(w io.WriteCloser) (*CSVSink, error) {
	sink := &CSVSink{w: csv.NewWriter(w), closer: w}
	if err := sink.w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write results header: %w", err)
	}
	return sink, nil
}

// NewCSVFileSink creates (or truncates) path on fs
func NewCSVFileSink(fs afero.Fs, path string) (*CSVSink, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create results file: %w", err)
	}
	sink, err := NewCSVSink(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return sink, nil
}

// Record appends a trial row
func (s *CSVSink) Record(_ context.Context, _ string, trial core.TrialResult) error {
	if err := s.w.Write(FormatRow(trial)); err != nil {
		return fmt.Errorf("failed to write results row: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the underlying writer
func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.closer.Close()
		return fmt.Errorf("failed to flush results: %w", err)
	}
	return s.closer.Close()
}

// FormatRow renders a trial in CSV column order
func FormatRow(trial core.TrialResult) []string {
	return []string{
		strconv.FormatFloat(trial.K, 'g', -1, 64),
		strconv.Itoa(trial.CorrectHam),
		strconv.Itoa(trial.CorrectSpam),
		strconv.Itoa(trial.IncorrectHam),
		strconv.Itoa(trial.IncorrectSpam),
		strconv.FormatFloat(trial.Accuracy, 'g', -1, 64),
	}
}
