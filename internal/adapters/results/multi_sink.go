package results

import (
	"context"
	"errors"

	"github.com/mikey/bayes-spam-filter/internal/core"
)

// MultiSink fans every trial out to several sinks in order
type MultiSink struct {
	sinks []core.TrialSink
}

// NewMultiSink combines sinks; nil entries are dropped
func NewMultiSink(sinks ...core.TrialSink) *MultiSink {
	m := &MultiSink{}
	for _, sink := range sinks {
		if sink != nil {
			m.sinks = append(m.sinks, sink)
		}
	}
	return m
}

// Len returns the number of wrapped sinks
func (m *MultiSink) Len() int {
	return len(m.sinks)
}

// Sinks returns the wrapped sinks in fan-out order
func (m *MultiSink) Sinks() []core.TrialSink {
	return append([]core.TrialSink(nil), m.sinks...)
}

// Record stops at the first failing sink
func (m *MultiSink) Record(ctx context.Context, runID string, trial core.TrialResult) error {
	for _, sink := range m.sinks {
		if err := sink.Record(ctx, runID, trial); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors
func (m *MultiSink) Close() error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
