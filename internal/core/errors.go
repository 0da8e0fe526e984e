package core

import (
	"errors"
	"fmt"
)

var (
	// ErrCorpusAccess is returned when a corpus directory or file cannot be read
	ErrCorpusAccess = errors.New("corpus access failure")
	// ErrMalformedGroundTruth is returned when the label file does not cover the test corpus
	ErrMalformedGroundTruth = errors.New("malformed ground truth")
	// ErrDegenerateProbability is returned when a probability falls outside (0, 1)
	ErrDegenerateProbability = errors.New("degenerate probability")
	// ErrEmptyClass is returned when a training class has no documents
	ErrEmptyClass = errors.New("training class has no documents")
	// ErrInvalidSmoothing is returned for a non-positive smoothing constant
	ErrInvalidSmoothing = errors.New("smoothing constant must be positive")
	// ErrEmptyCorpus is returned when there are no test documents to score
	ErrEmptyCorpus = errors.New("test corpus has no documents")
	// ErrInvalidRange is returned for an unusable sweep range
	ErrInvalidRange = errors.New("invalid sweep range")
)

// CorpusError records the path that could not be read
type CorpusError struct {
	Path string
	Err  error
}

func (e *CorpusError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCorpusAccess, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause
func (e *CorpusError) Unwrap() []error {
	return []error{ErrCorpusAccess, e.Err}
}
