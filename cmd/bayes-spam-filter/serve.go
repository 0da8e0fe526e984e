package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/mikey/bayes-spam-filter/internal/di"
	"github.com/mikey/bayes-spam-filter/internal/factory"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classifier as a Postfix SMTP content filter",
		Args:  cobra.NoArgs,
	}
	bindings := corpusFlags(cmd)
	flags := cmd.Flags()
	flags.Float64("k", 1.0, "Laplace smoothing constant")
	flags.String("listen", "0.0.0.0:10025", "Address the content filter listens on")
	flags.Bool("block-spam", false, "Reject spam instead of tagging it")
	flags.String("relay-address", "127.0.0.1", "Postfix reinjection address")
	flags.Int("relay-port", 10026, "Postfix reinjection port")
	bindings = append(bindings,
		di.FlagBinding{Key: "classify.k", Flag: "k"},
		di.FlagBinding{Key: "server.listen_address", Flag: "listen"},
		di.FlagBinding{Key: "server.block_spam", Flag: "block-spam"},
		di.FlagBinding{Key: "server.relay.address", Flag: "relay-address"},
		di.FlagBinding{Key: "server.relay.port", Flag: "relay-port"},
	)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		container, logger, err := opts.buildContainer(cmd, bindings)
		if err != nil {
			return err
		}
		defer logger.Sync()

		return container.Invoke(func(model *core.Model, filterFactory *factory.FilterFactory) error {
			emailFilter, err := filterFactory.CreateEmailFilter("postfix", opts.out)
			if err != nil {
				return fmt.Errorf("failed to create email filter: %w", err)
			}

			logger.Info("Starting Postfix content filter", zap.Float64("k", model.K))
			if err := emailFilter.Start(); err != nil {
				return fmt.Errorf("failed to start email filter: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			logger.Info("Shutting down...")
			if err := emailFilter.Stop(); err != nil {
				logger.Error("Error stopping email filter", zap.Error(err))
				return err
			}
			return nil
		})
	}
	return cmd
}
