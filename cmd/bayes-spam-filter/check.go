package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/mikey/bayes-spam-filter/internal/di"
	"github.com/mikey/bayes-spam-filter/internal/factory"
)

// messageProcessor classifies a raw RFC 5322 message
type messageProcessor interface {
	ProcessMessage(ctx context.Context, r io.Reader) (*core.AnalysisResult, error)
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Classify a single email message read from a file or stdin",
		Args:  cobra.NoArgs,
	}
	bindings := corpusFlags(cmd)
	cmd.Flags().Float64("k", 1.0, "Laplace smoothing constant")
	cmd.Flags().StringP("file", "f", "", "Message file (defaults to stdin)")
	bindings = append(bindings, di.FlagBinding{Key: "classify.k", Flag: "k"})

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		container, logger, err := opts.buildContainer(cmd, bindings)
		if err != nil {
			return err
		}
		defer logger.Sync()

		return container.Invoke(func(filterFactory *factory.FilterFactory, fs afero.Fs) error {
			emailFilter, err := filterFactory.CreateEmailFilter("cli", opts.out)
			if err != nil {
				return fmt.Errorf("failed to create email filter: %w", err)
			}
			processor, ok := emailFilter.(messageProcessor)
			if !ok {
				return fmt.Errorf("email filter cannot read raw messages")
			}

			in := cmd.InOrStdin()
			if path, _ := cmd.Flags().GetString("file"); path != "" {
				f, err := fs.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open message: %w", err)
				}
				defer f.Close()
				in = f
			}

			_, err = processor.ProcessMessage(cmd.Context(), in)
			return err
		})
	}
	return cmd
}
