package core

import (
	"context"
)

// CorpusReader lists and reads the documents of a flat corpus directory
type CorpusReader interface {
	// ReadDocuments returns every document in dir in the reader's sort order
	ReadDocuments(ctx context.Context, dir string) ([]Document, error)
}

// GroundTruthSource supplies the reference labels of a test corpus
type GroundTruthSource interface {
	// Labels returns labels in the same order as the sorted test documents
	Labels(ctx context.Context) ([]GroundTruth, error)
}

// TrialSink receives every sweep trial as it is produced
type TrialSink interface {
	// Record stores one trial row of the given run
	Record(ctx context.Context, runID string, trial TrialResult) error

	// Close flushes and releases the sink
	Close() error
}
