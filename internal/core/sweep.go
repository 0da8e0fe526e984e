package core

import (
	"context"
	"fmt"
	"math"
	"path"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Range is an inclusive arithmetic progression of smoothing constants
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultRange reproduces the reference sweep: 5000 trials from 0.05 to 250
var DefaultRange = Range{Min: 0.05, Max: 250, Step: 0.05}

// MaxTrials bounds the number of smoothing constants in one range
const MaxTrials = 10_000_000

// Validate checks that the range yields between one and MaxTrials positive
// values of k.
func (r Range) Validate() error {
	switch {
	case !(r.Min > 0):
		return fmt.Errorf("%w: k_min %g must be positive", ErrInvalidRange, r.Min)
	case !(r.Step > 0):
		return fmt.Errorf("%w: k_step %g must be positive", ErrInvalidRange, r.Step)
	case r.Max < r.Min:
		return fmt.Errorf("%w: k_max %g below k_min %g", ErrInvalidRange, r.Max, r.Min)
	case math.IsInf(r.Max, 0) || math.IsNaN(r.Max):
		return fmt.Errorf("%w: k_max %g", ErrInvalidRange, r.Max)
	}
	if n := r.count(); math.IsInf(n, 0) || math.IsNaN(n) || n > MaxTrials {
		return fmt.Errorf("%w: %g trials exceeds the limit of %d", ErrInvalidRange, n, MaxTrials)
	}
	return nil
}

func (r Range) count() float64 {
	return math.Floor((r.Max-r.Min)/r.Step+1e-9) + 1
}

// Values returns min, min+step, ... up to and including max. Each value is
// computed from its index so rounding does not accumulate. The range must
// have passed Validate.
func (r Range) Values() []float64 {
	out := make([]float64, int(r.count()))
	for i := range out {
		out[i] = r.Min + float64(i)*r.Step
	}
	return out
}

// Sweeper scores a test corpus for every smoothing constant of a range
type Sweeper struct {
	tokenizer *Tokenizer
	rng       Range
	workers   int
	sink      TrialSink
	logger    *zap.Logger
}

// NewSweeper creates a new sweep evaluator. A nil sink disables persistence;
// workers above one evaluate trials concurrently.
func NewSweeper(tokenizer *Tokenizer, rng Range, workers int, sink TrialSink, logger *zap.Logger) *Sweeper {
	if workers < 1 {
		workers = 1
	}
	return &Sweeper{
		tokenizer: tokenizer,
		rng:       rng,
		workers:   workers,
		sink:      sink,
		logger:    logger,
	}
}

// Run evaluates every trial, records each row to the sink in k order and
// returns all rows with the best one. The best row has the strictly highest
// accuracy; the earliest trial wins ties. Any failure aborts the sweep.
func (s *Sweeper) Run(ctx context.Context, training *TrainingSet, test []Document, groundTruth []GroundTruth) (*SweepResult, error) {
	if err := s.rng.Validate(); err != nil {
		return nil, err
	}
	if err := training.Validate(); err != nil {
		return nil, err
	}
	truth, err := AlignGroundTruth(test, groundTruth)
	if err != nil {
		return nil, err
	}

	tokens := make([]TokenSet, len(test))
	for i, doc := range test {
		tokens[i] = s.tokenizer.Tokenize(doc.Text)
	}
	shared := training.SharedVocabulary()
	ks := s.rng.Values()

	s.logger.Info("Starting smoothing sweep",
		zap.Float64("k_min", s.rng.Min),
		zap.Float64("k_max", s.rng.Max),
		zap.Float64("k_step", s.rng.Step),
		zap.Int("trials", len(ks)),
		zap.Int("test_documents", len(test)),
		zap.Int("workers", s.workers))

	trials, err := s.evaluateAll(ctx, training, shared, tokens, truth, ks)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{
		RunID:  uuid.NewString(),
		Trials: trials,
	}
	for i, trial := range trials {
		if s.sink != nil {
			if err := s.sink.Record(ctx, result.RunID, trial); err != nil {
				return nil, fmt.Errorf("failed to record trial k=%g: %w", trial.K, err)
			}
		}
		if i == 0 || trial.Accuracy > result.Best.Accuracy {
			result.Best = trial
		}
	}

	s.logger.Info("Smoothing sweep complete",
		zap.String("run_id", result.RunID),
		zap.Float64("best_k", result.Best.K),
		zap.Float64("best_accuracy", result.Best.Accuracy))

	return result, nil
}

func (s *Sweeper) evaluateAll(ctx context.Context, training *TrainingSet, shared TokenSet, tokens []TokenSet, truth []Label, ks []float64) ([]TrialResult, error) {
	trials := make([]TrialResult, len(ks))

	if s.workers == 1 {
		for i, k := range ks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			trial, err := evaluateTrial(training, shared, tokens, truth, k)
			if err != nil {
				return nil, err
			}
			trials[i] = trial
			s.logger.Debug("Evaluated trial", zap.Float64("k", k), zap.Float64("accuracy", trial.Accuracy))
		}
		return trials, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(s.workers, len(ks)))
	for i, k := range ks {
		i, k := i, k
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trial, err := evaluateTrial(training, shared, tokens, truth, k)
			if err != nil {
				return err
			}
			trials[i] = trial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trials, nil
}

// EvaluateTrial scores pre-tokenized test documents against truth at k
func EvaluateTrial(training *TrainingSet, tokens []TokenSet, truth []Label, k float64) (TrialResult, error) {
	if len(truth) < len(tokens) {
		return TrialResult{}, fmt.Errorf("%w: %d labels for %d documents", ErrMalformedGroundTruth, len(truth), len(tokens))
	}
	return evaluateTrial(training, training.SharedVocabulary(), tokens, truth, k)
}

func evaluateTrial(training *TrainingSet, shared TokenSet, tokens []TokenSet, truth []Label, k float64) (TrialResult, error) {
	if len(tokens) == 0 {
		return TrialResult{}, ErrEmptyCorpus
	}
	model, err := buildModel(training, shared, k)
	if err != nil {
		return TrialResult{}, fmt.Errorf("trial k=%g: %w", k, err)
	}

	trial := TrialResult{K: k}
	for i, set := range tokens {
		predicted := Classify(set, model)
		switch {
		case truth[i] == LabelHam && predicted == LabelHam:
			trial.CorrectHam++
		case truth[i] == LabelSpam && predicted == LabelSpam:
			trial.CorrectSpam++
		case truth[i] == LabelSpam:
			trial.IncorrectHam++
		default:
			trial.IncorrectSpam++
		}
	}
	trial.Accuracy = float64(trial.CorrectHam+trial.CorrectSpam) / float64(len(tokens))
	return trial, nil
}

// AlignGroundTruth checks that truth covers every test document in order
// and returns the labels trimmed to the corpus length. A named entry must
// match the file name of the document at its position.
func AlignGroundTruth(test []Document, truth []GroundTruth) ([]Label, error) {
	if len(test) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(truth) < len(test) {
		return nil, fmt.Errorf("%w: %d labels for %d test documents", ErrMalformedGroundTruth, len(truth), len(test))
	}
	labels := make([]Label, len(test))
	for i, entry := range truth[:len(test)] {
		if entry.Name != "" && entry.Name != test[i].Name && path.Base(entry.Name) != test[i].Name {
			return nil, fmt.Errorf("%w: label %d names %s but test document %d is %s",
				ErrMalformedGroundTruth, i+1, entry.Name, i+1, test[i].Name)
		}
		if entry.Label != LabelHam && entry.Label != LabelSpam {
			return nil, fmt.Errorf("%w: label %d for %s is %q", ErrMalformedGroundTruth, i+1, test[i].Name, entry.Label)
		}
		labels[i] = entry.Label
	}
	return labels, nil
}
