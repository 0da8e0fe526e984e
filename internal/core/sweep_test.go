package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	runIDs []string
	trials []TrialResult
	failAt int
	closed bool
}

func (s *recordingSink) Record(_ context.Context, runID string, trial TrialResult) error {
	if s.failAt > 0 && len(s.trials)+1 == s.failAt {
		return errors.New("disk full")
	}
	s.runIDs = append(s.runIDs, runID)
	s.trials = append(s.trials, trial)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

// skewedTraining has three ham documents and one spam document. A test
// document {x, y} is labelled spam only while k < ~0.866.
func skewedTraining() *TrainingSet {
	tok := NewTokenizer(DefaultHeaderLength, false)
	return &TrainingSet{
		Ham: CountFrequencies(tok, []Document{
			{Text: "Subject: x y"},
			{Text: "Subject: w"},
			{Text: "Subject: w"},
		}),
		Spam:      CountFrequencies(tok, []Document{{Text: "Subject: x y"}}),
		HamCount:  3,
		SpamCount: 1,
	}
}

// positional builds unnamed ground truth aligned by index
func positional(labels ...Label) []GroundTruth {
	out := make([]GroundTruth, len(labels))
	for i, label := range labels {
		out[i] = GroundTruth{Label: label}
	}
	return out
}

var skewedTest = []Document{
	{Name: "1.txt", Text: "Subject: x y"},
	{Name: "2.txt", Text: "Subject: w"},
}

func TestRangeValues(t *testing.T) {
	ks := DefaultRange.Values()
	require.Len(t, ks, 5000)
	assert.Equal(t, 0.05, ks[0])
	assert.InDelta(t, 250, ks[len(ks)-1], 1e-9)
	assert.InDelta(t, 0.1, ks[1], 1e-12)

	assert.Equal(t, []float64{1}, Range{Min: 1, Max: 1, Step: 0.5}.Values())
	assert.Len(t, Range{Min: 0.5, Max: 1.5, Step: 0.5}.Values(), 3)
}

func TestRangeValidate(t *testing.T) {
	assert.NoError(t, DefaultRange.Validate())
	for _, r := range []Range{
		{Min: 0, Max: 1, Step: 0.1},
		{Min: 1, Max: 2, Step: 0},
		{Min: 2, Max: 1, Step: 0.1},
		{Min: 0.05, Max: 1e300, Step: 0.05},
		{Min: 0.05, Max: 1e12, Step: 0.05},
		{Min: 1, Max: 1.7e308, Step: 1e-300},
	} {
		assert.ErrorIs(t, r.Validate(), ErrInvalidRange, "%+v", r)
	}

	assert.NoError(t, Range{Min: 1, Max: MaxTrials, Step: 1}.Validate())
	assert.ErrorIs(t, Range{Min: 1, Max: MaxTrials + 1, Step: 1}.Validate(), ErrInvalidRange)
}

func TestSweepSelectsBestTrial(t *testing.T) {
	sink := &recordingSink{}
	sweeper := NewSweeper(NewTokenizer(DefaultHeaderLength, false), Range{Min: 0.5, Max: 1.5, Step: 0.5}, 1, sink, zap.NewNop())

	result, err := sweeper.Run(context.Background(), skewedTraining(), skewedTest, positional(LabelSpam, LabelHam))
	require.NoError(t, err)

	require.Len(t, result.Trials, 3)
	assert.Equal(t, TrialResult{K: 0.5, CorrectHam: 1, CorrectSpam: 1, Accuracy: 1}, result.Trials[0])
	assert.Equal(t, TrialResult{K: 1, CorrectHam: 1, IncorrectHam: 1, Accuracy: 0.5}, result.Trials[1])
	assert.Equal(t, result.Trials[0], result.Best)
	assert.NotEmpty(t, result.RunID)

	assert.Equal(t, result.Trials, sink.trials)
	for _, id := range sink.runIDs {
		assert.Equal(t, result.RunID, id)
	}
	assert.False(t, sink.closed)
}

func TestSweepFirstSeenWinsTies(t *testing.T) {
	sweeper := NewSweeper(NewTokenizer(DefaultHeaderLength, false), Range{Min: 0.5, Max: 1.5, Step: 0.5}, 1, nil, zap.NewNop())

	// The {x, y} document is truly ham here, so k=1 and k=1.5 are both exact
	result, err := sweeper.Run(context.Background(), skewedTraining(), skewedTest, positional(LabelHam, LabelHam))
	require.NoError(t, err)

	assert.Equal(t, 0.5, result.Trials[0].Accuracy)
	assert.Equal(t, 1.0, result.Trials[1].Accuracy)
	assert.Equal(t, 1.0, result.Trials[2].Accuracy)
	assert.Equal(t, 1.0, result.Best.K)
	assert.Equal(t, 1, result.Trials[0].IncorrectSpam)
	for _, trial := range result.Trials {
		assert.Equal(t, 2, trial.Total())
		assert.LessOrEqual(t, trial.Accuracy, result.Best.Accuracy)
	}
}

func TestSweepParallelMatchesSequential(t *testing.T) {
	tok := NewTokenizer(DefaultHeaderLength, false)
	rng := Range{Min: 0.05, Max: 3, Step: 0.05}
	truth := positional(LabelSpam, LabelHam)

	sequential, err := NewSweeper(tok, rng, 1, nil, zap.NewNop()).Run(context.Background(), skewedTraining(), skewedTest, truth)
	require.NoError(t, err)

	sink := &recordingSink{}
	parallel, err := NewSweeper(tok, rng, 8, sink, zap.NewNop()).Run(context.Background(), skewedTraining(), skewedTest, truth)
	require.NoError(t, err)

	assert.Equal(t, sequential.Trials, parallel.Trials)
	assert.Equal(t, sequential.Best, parallel.Best)
	assert.Equal(t, parallel.Trials, sink.trials)
	assert.NotEqual(t, sequential.RunID, parallel.RunID)
}

func TestSweepGroundTruthErrors(t *testing.T) {
	sweeper := NewSweeper(NewTokenizer(DefaultHeaderLength, false), Range{Min: 1, Max: 1, Step: 1}, 1, nil, zap.NewNop())
	ctx := context.Background()

	_, err := sweeper.Run(ctx, skewedTraining(), skewedTest, positional(LabelHam))
	assert.ErrorIs(t, err, ErrMalformedGroundTruth)

	_, err = sweeper.Run(ctx, skewedTraining(), skewedTest, positional(LabelHam, "maybe"))
	assert.ErrorIs(t, err, ErrMalformedGroundTruth)

	_, err = sweeper.Run(ctx, skewedTraining(), nil, positional(LabelHam))
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	result, err := sweeper.Run(ctx, skewedTraining(), skewedTest, positional(LabelSpam, LabelHam, LabelSpam))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Best.Total())
}

func TestAlignGroundTruthByName(t *testing.T) {
	test := []Document{{Name: "2.txt"}, {Name: "10.txt"}}

	labels, err := AlignGroundTruth(test, []GroundTruth{
		{Name: "2.txt", Label: LabelHam},
		{Name: "test/10.txt", Label: LabelSpam},
	})
	require.NoError(t, err)
	assert.Equal(t, []Label{LabelHam, LabelSpam}, labels)

	// Lexical order against a natural-order corpus
	_, err = AlignGroundTruth(test, []GroundTruth{
		{Name: "10.txt", Label: LabelSpam},
		{Name: "2.txt", Label: LabelHam},
	})
	assert.ErrorIs(t, err, ErrMalformedGroundTruth)
	assert.ErrorContains(t, err, "names 10.txt but test document 1 is 2.txt")
}

func TestSweepAborts(t *testing.T) {
	tok := NewTokenizer(DefaultHeaderLength, false)
	truth := positional(LabelSpam, LabelHam)
	rng := Range{Min: 0.5, Max: 1.5, Step: 0.5}

	sink := &recordingSink{failAt: 2}
	_, err := NewSweeper(tok, rng, 1, sink, zap.NewNop()).Run(context.Background(), skewedTraining(), skewedTest, truth)
	assert.ErrorContains(t, err, "disk full")
	assert.Len(t, sink.trials, 1)

	_, err = NewSweeper(tok, rng, 1, nil, zap.NewNop()).Run(context.Background(), &TrainingSet{HamCount: 1}, skewedTest, truth)
	assert.ErrorIs(t, err, ErrEmptyClass)

	for _, rng := range []Range{{Min: 0, Max: 1, Step: 1}, {Min: 0.05, Max: 1e300, Step: 0.05}} {
		_, err = NewSweeper(tok, rng, 1, nil, zap.NewNop()).Run(context.Background(), skewedTraining(), skewedTest, truth)
		assert.ErrorIs(t, err, ErrInvalidRange, "%+v", rng)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, workers := range []int{1, 4} {
		_, err = NewSweeper(tok, rng, workers, nil, zap.NewNop()).Run(ctx, skewedTraining(), skewedTest, truth)
		assert.ErrorIs(t, err, context.Canceled, "workers=%d", workers)
	}
}

func TestEvaluateTrial(t *testing.T) {
	tok := NewTokenizer(DefaultHeaderLength, false)
	tokens := []TokenSet{tok.Tokenize(skewedTest[0].Text), tok.Tokenize(skewedTest[1].Text)}

	trial, err := EvaluateTrial(skewedTraining(), tokens, []Label{LabelSpam, LabelHam}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, trial.Accuracy)

	_, err = EvaluateTrial(skewedTraining(), tokens, []Label{LabelSpam}, 0.5)
	assert.ErrorIs(t, err, ErrMalformedGroundTruth)

	_, err = EvaluateTrial(skewedTraining(), tokens, []Label{LabelSpam, LabelHam}, 0)
	assert.ErrorIs(t, err, ErrInvalidSmoothing)
}
