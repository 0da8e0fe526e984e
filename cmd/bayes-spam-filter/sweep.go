package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/bayes-spam-filter/internal/adapters/results"
	"github.com/mikey/bayes-spam-filter/internal/config"
	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/mikey/bayes-spam-filter/internal/di"
	"github.com/mikey/bayes-spam-filter/internal/factory"
)

// bestTrialStore is implemented by sinks that can answer best-trial queries
type bestTrialStore interface {
	Best(ctx context.Context, runID string) (*core.TrialResult, error)
}

func newSweepCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Search the smoothing constant for the best test accuracy",
		Args:  cobra.NoArgs,
	}
	bindings := corpusFlags(cmd)
	flags := cmd.Flags()
	flags.String("test", "data/test", "Directory of labelled test emails")
	flags.String("labels", "true_labels.txt", "Ground truth file, one \"<filename> <label>\" per sorted test file")
	flags.Float64("k-min", 0.05, "First smoothing constant")
	flags.Float64("k-max", 250, "Last smoothing constant")
	flags.Float64("k-step", 0.05, "Smoothing constant increment")
	flags.Int("workers", 1, "Trials evaluated in parallel")
	flags.String("csv", "k values.csv", "Results table path (empty to disable)")
	flags.String("store", "none", "Results store: none, memory, sqlite or mysql")
	bindings = append(bindings,
		di.FlagBinding{Key: "corpus.test_dir", Flag: "test"},
		di.FlagBinding{Key: "corpus.labels_file", Flag: "labels"},
		di.FlagBinding{Key: "sweep.k_min", Flag: "k-min"},
		di.FlagBinding{Key: "sweep.k_max", Flag: "k-max"},
		di.FlagBinding{Key: "sweep.k_step", Flag: "k-step"},
		di.FlagBinding{Key: "sweep.workers", Flag: "workers"},
		di.FlagBinding{Key: "results.csv_path", Flag: "csv"},
		di.FlagBinding{Key: "results.store", Flag: "store"},
	)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		container, logger, err := opts.buildContainer(cmd, bindings)
		if err != nil {
			return err
		}
		defer logger.Sync()

		return container.Invoke(func(
			cfg *config.Config,
			training *core.TrainingSet,
			reader core.CorpusReader,
			truthSource core.GroundTruthSource,
			tokenizer *core.Tokenizer,
			resultsFactory *factory.ResultsFactory,
		) (err error) {
			ctx := cmd.Context()
			sweepCfg := cfg.GetSweep()
			if err := sweepCfg.Validate(); err != nil {
				return err
			}

			test, err := reader.ReadDocuments(ctx, cfg.GetCorpus().TestDir)
			if err != nil {
				return err
			}
			truth, err := truthSource.Labels(ctx)
			if err != nil {
				return err
			}
			if len(truth) > len(test) {
				logger.Warn("Ground truth has more labels than test documents",
					zap.Int("labels", len(truth)),
					zap.Int("documents", len(test)))
			}

			sink, err := resultsFactory.CreateSink()
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := sink.Close(); closeErr != nil && err == nil {
					err = fmt.Errorf("failed to close results: %w", closeErr)
				}
			}()

			rng := core.Range{Min: sweepCfg.KMin, Max: sweepCfg.KMax, Step: sweepCfg.KStep}
			sweeper := core.NewSweeper(tokenizer, rng, sweepCfg.Workers, sink, logger)
			result, err := sweeper.Run(ctx, training, test, truth)
			if err != nil {
				return err
			}

			for _, s := range sink.Sinks() {
				store, ok := s.(bestTrialStore)
				if !ok {
					continue
				}
				stored, err := store.Best(ctx, result.RunID)
				if err != nil {
					return fmt.Errorf("failed to read best trial from store: %w", err)
				}
				if stored.K != result.Best.K {
					logger.Warn("Stored best trial differs from sweep result",
						zap.Float64("stored_k", stored.K),
						zap.Float64("sweep_k", result.Best.K))
				}
			}

			fmt.Fprintf(opts.out, "Best trial (run %s):\n%s\n%s\n",
				result.RunID,
				strings.Join(results.CSVHeader, ","),
				strings.Join(results.FormatRow(result.Best), ","))
			return nil
		})
	}
	return cmd
}
