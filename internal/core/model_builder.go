package core

import (
	"fmt"
	"math"
)

// Validate checks that both classes are non-empty
func (t *TrainingSet) Validate() error {
	if t.HamCount <= 0 {
		return fmt.Errorf("%w: ham", ErrEmptyClass)
	}
	if t.SpamCount <= 0 {
		return fmt.Errorf("%w: spam", ErrEmptyClass)
	}
	return nil
}

// Priors returns P(ham) and P(spam) from the class document counts
func (t *TrainingSet) Priors() (float64, float64, error) {
	if err := t.Validate(); err != nil {
		return 0, 0, err
	}
	total := float64(t.HamCount + t.SpamCount)
	ham := float64(t.HamCount) / total
	spam := float64(t.SpamCount) / total
	if !inOpenUnit(ham) || !inOpenUnit(spam) {
		return 0, 0, fmt.Errorf("%w: priors ham=%g spam=%g", ErrDegenerateProbability, ham, spam)
	}
	return ham, spam, nil
}

// BuildProbabilities computes Laplace-smoothed probability tables over the
// union of both vocabularies: (f + k) / (n + 2k), with f = 0 for tokens
// absent from a class.
func BuildProbabilities(hamFreq, spamFreq FrequencyTable, hamCount, spamCount int, k float64) (ProbabilityTable, ProbabilityTable, error) {
	if !(k > 0) || math.IsInf(k, 0) {
		return nil, nil, fmt.Errorf("%w: %g", ErrInvalidSmoothing, k)
	}
	if hamCount < 0 || spamCount < 0 {
		return nil, nil, fmt.Errorf("negative document count: ham=%d spam=%d", hamCount, spamCount)
	}

	hamDenom := float64(hamCount) + 2*k
	spamDenom := float64(spamCount) + 2*k

	hamProbs := make(ProbabilityTable, len(hamFreq)+len(spamFreq))
	spamProbs := make(ProbabilityTable, len(hamFreq)+len(spamFreq))

	set := func(token string) error {
		ph := (float64(hamFreq[token]) + k) / hamDenom
		ps := (float64(spamFreq[token]) + k) / spamDenom
		if !inOpenUnit(ph) || !inOpenUnit(ps) {
			return fmt.Errorf("%w: token %q ham=%g spam=%g k=%g", ErrDegenerateProbability, token, ph, ps, k)
		}
		hamProbs[token] = ph
		spamProbs[token] = ps
		return nil
	}

	for token := range hamFreq {
		if err := set(token); err != nil {
			return nil, nil, err
		}
	}
	for token := range spamFreq {
		if _, done := hamProbs[token]; done {
			continue
		}
		if err := set(token); err != nil {
			return nil, nil, err
		}
	}

	return hamProbs, spamProbs, nil
}

// BuildModel derives the k-dependent model from a training set
func BuildModel(training *TrainingSet, k float64) (*Model, error) {
	return buildModel(training, training.SharedVocabulary(), k)
}

func buildModel(training *TrainingSet, shared TokenSet, k float64) (*Model, error) {
	hamPrior, spamPrior, err := training.Priors()
	if err != nil {
		return nil, err
	}
	hamProbs, spamProbs, err := BuildProbabilities(training.Ham, training.Spam, training.HamCount, training.SpamCount, k)
	if err != nil {
		return nil, err
	}
	return &Model{
		K:         k,
		Ham:       hamProbs,
		Spam:      spamProbs,
		HamPrior:  hamPrior,
		SpamPrior: spamPrior,
		Shared:    shared,
	}, nil
}

func inOpenUnit(p float64) bool {
	return p > 0 && p < 1
}
