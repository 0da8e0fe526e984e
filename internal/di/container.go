package di

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/bayes-spam-filter/internal/adapters/corpus"
	"github.com/mikey/bayes-spam-filter/internal/adapters/groundtruth"
	"github.com/mikey/bayes-spam-filter/internal/config"
	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/mikey/bayes-spam-filter/internal/factory"
	"github.com/mikey/bayes-spam-filter/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container.
// Training happens lazily the first time a model or training set is invoked
// and reads the corpus under ctx.
func BuildContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger, fs afero.Fs) (*dig.Container, error) {
	container := dig.New()

	// Register context, configuration, logger and filesystem
	if err := container.Provide(func() context.Context { return ctx }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *zap.Logger { return logger }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() afero.Fs { return fs }); err != nil {
		return nil, err
	}

	// Register tokenizer
	if err := container.Provide(func(cfg *config.Config) *core.Tokenizer {
		tokCfg := cfg.GetTokenizer()
		return core.NewTokenizer(tokCfg.HeaderLength, tokCfg.KeepEmptyTokens)
	}); err != nil {
		return nil, err
	}

	// Register corpus reader
	if err := container.Provide(func(cfg *config.Config, fs afero.Fs, logger *zap.Logger) (core.CorpusReader, error) {
		corpusCfg := cfg.GetCorpus()
		if err := corpusCfg.Validate(); err != nil {
			return nil, err
		}
		return corpus.NewFSReader(fs, corpusCfg.Encoding, corpusCfg.SortOrder, logger)
	}); err != nil {
		return nil, err
	}

	// Register ground truth
	if err := container.Provide(func(cfg *config.Config, fs afero.Fs) core.GroundTruthSource {
		return groundtruth.NewFileSource(fs, cfg.GetCorpus().LabelsFile)
	}); err != nil {
		return nil, err
	}

	// Register estimator and training set
	if err := container.Provide(core.NewEstimator); err != nil {
		return nil, err
	}
	if err := container.Provide(func(ctx context.Context, cfg *config.Config, estimator *core.Estimator) (*core.TrainingSet, error) {
		corpusCfg := cfg.GetCorpus()
		return estimator.Train(ctx, corpusCfg.HamDir, corpusCfg.SpamDir)
	}); err != nil {
		return nil, err
	}

	// Register model for plain classification and serving
	if err := container.Provide(func(cfg *config.Config, training *core.TrainingSet, logger *zap.Logger) (*core.Model, error) {
		classifyCfg := cfg.GetClassify()
		if err := classifyCfg.Validate(); err != nil {
			return nil, err
		}
		model, err := core.BuildModel(training, classifyCfg.K)
		if err != nil {
			return nil, fmt.Errorf("failed to build model: %w", err)
		}
		logger.Info("Built model",
			zap.Float64("k", model.K),
			zap.Float64("ham_prior", model.HamPrior),
			zap.Float64("spam_prior", model.SpamPrior),
			zap.Int("shared_vocabulary", len(model.Shared)))
		return model, nil
	}); err != nil {
		return nil, err
	}

	// Register results factory
	if err := container.Provide(factory.NewResultsFactory); err != nil {
		return nil, err
	}

	// Register whitelist
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.SenderAllowList {
		domains := cfg.GetServer().WhitelistedDomains
		if len(domains) > 0 {
			logger.Info("Loaded whitelisted domains", zap.Strings("domains", domains))
		}
		return whitelist.NewChecker(domains, logger)
	}); err != nil {
		return nil, err
	}

	// Register spam filter service
	if err := container.Provide(core.NewSpamFilterService); err != nil {
		return nil, err
	}

	// Register email filter factory
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}

	return container, nil
}
