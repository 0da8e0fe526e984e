package core

import (
	"context"

	"go.uber.org/zap"
)

// Estimator counts document frequencies over a corpus directory
type Estimator struct {
	reader    CorpusReader
	tokenizer *Tokenizer
	logger    *zap.Logger
}

// NewEstimator creates a new frequency estimator
func NewEstimator(reader CorpusReader, tokenizer *Tokenizer, logger *zap.Logger) *Estimator {
	return &Estimator{
		reader:    reader,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// Estimate returns the document frequency of every token in dir together
// with the number of documents read.
func (e *Estimator) Estimate(ctx context.Context, dir string) (FrequencyTable, int, error) {
	docs, err := e.reader.ReadDocuments(ctx, dir)
	if err != nil {
		return nil, 0, err
	}

	counts := CountFrequencies(e.tokenizer, docs)
	e.logger.Debug("Estimated document frequencies",
		zap.String("dir", dir),
		zap.Int("documents", len(docs)),
		zap.Int("vocabulary", len(counts)))

	return counts, len(docs), nil
}

// CountFrequencies adds one to a token's count for every document whose
// token set contains it.
func CountFrequencies(tokenizer *Tokenizer, docs []Document) FrequencyTable {
	counts := make(FrequencyTable)
	for _, doc := range docs {
		for token := range tokenizer.Tokenize(doc.Text) {
			counts[token]++
		}
	}
	return counts
}

// Train estimates both classes and returns the combined training set.
// Each class must contain at least one document.
func (e *Estimator) Train(ctx context.Context, hamDir, spamDir string) (*TrainingSet, error) {
	ham, hamCount, err := e.Estimate(ctx, hamDir)
	if err != nil {
		return nil, err
	}
	spam, spamCount, err := e.Estimate(ctx, spamDir)
	if err != nil {
		return nil, err
	}

	training := &TrainingSet{
		Ham:       ham,
		Spam:      spam,
		HamCount:  hamCount,
		SpamCount: spamCount,
	}
	if err := training.Validate(); err != nil {
		return nil, err
	}

	e.logger.Info("Loaded training corpus",
		zap.Int("ham_count", hamCount),
		zap.Int("spam_count", spamCount),
		zap.Int("ham_vocabulary", len(ham)),
		zap.Int("spam_vocabulary", len(spam)))

	return training, nil
}
