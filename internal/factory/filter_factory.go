package factory

import (
	"fmt"
	"io"

	"github.com/mikey/bayes-spam-filter/internal/adapters/filter"
	"github.com/mikey/bayes-spam-filter/internal/config"
	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/mikey/bayes-spam-filter/internal/ports"
	"go.uber.org/zap"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg         *config.Config
	logger      *zap.Logger
	spamService *core.SpamFilterService
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, spamService *core.SpamFilterService) *FilterFactory {
	return &FilterFactory{
		cfg:         cfg,
		logger:      logger,
		spamService: spamService,
	}
}

// CreateEmailFilter creates an email filter of the given type. The cli
// filter prints its report to out.
func (f *FilterFactory) CreateEmailFilter(filterType string, out io.Writer) (ports.EmailFilter, error) {
	switch filterType {
	case "postfix":
		serverCfg := f.cfg.GetServer()
		return filter.NewPostfixFilter(f.spamService, f.logger, filter.PostfixOptions{
			ListenAddr:    serverCfg.ListenAddress,
			BlockSpam:     serverCfg.BlockSpam,
			SpamHeader:    serverCfg.SpamHeader,
			ScoreHeader:   serverCfg.ScoreHeader,
			ReasonHeader:  serverCfg.ReasonHeader,
			RelayAddr:     serverCfg.RelayAddress,
			RelayPort:     serverCfg.RelayPort,
			RelayEnabled:  serverCfg.RelayEnabled,
			SubjectPrefix: serverCfg.SubjectPrefix,
			ModifySubject: serverCfg.ModifySubject,
		}), nil
	case "cli":
		return filter.NewCliFilter(f.spamService, f.logger, out, f.cfg.GetBool("cli.verbose"))
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", filterType)
	}
}
