package main

import (
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/bayes-spam-filter/internal/di"
	"github.com/mikey/bayes-spam-filter/internal/logging"
)

type rootOptions struct {
	configFile string
	verbose    bool
	jsonLog    bool
	fs         afero.Fs
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{fs: afero.NewOsFs(), out: out}

	cmd := &cobra.Command{
		Use:           "bayes-spam-filter",
		Short:         "Naive Bayes ham/spam classifier with a smoothing sweep",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to config file (defaults to config.yaml in the standard locations)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&opts.jsonLog, "json-log", false, "Output logs in JSON format")

	cmd.AddCommand(
		newClassifyCmd(opts),
		newSweepCmd(opts),
		newServeCmd(opts),
		newCheckCmd(opts),
	)
	return cmd
}

// corpusFlags registers the corpus location flags shared by every command
func corpusFlags(cmd *cobra.Command) []di.FlagBinding {
	flags := cmd.Flags()
	flags.String("ham", "data/train/ham", "Directory of ham training emails")
	flags.String("spam", "data/train/spam", "Directory of spam training emails")
	flags.String("encoding", "utf-8", "Character encoding of corpus files")
	flags.String("sort", "natural", "Test file order: natural or lexical")
	flags.Int("header-length", 9, "Characters stripped from the start of every document")

	return []di.FlagBinding{
		{Key: "corpus.ham_dir", Flag: "ham"},
		{Key: "corpus.spam_dir", Flag: "spam"},
		{Key: "corpus.encoding", Flag: "encoding"},
		{Key: "corpus.sort_order", Flag: "sort"},
		{Key: "tokenizer.header_length", Flag: "header-length"},
	}
}

// buildContainer loads configuration with the command's flag bindings and
// wires the dependency container.
func (o *rootOptions) buildContainer(cmd *cobra.Command, bindings []di.FlagBinding) (*dig.Container, *zap.Logger, error) {
	cfg, err := di.LoadCLIConfig(o.configFile, cmd.Flags(), bindings)
	if err != nil {
		return nil, nil, err
	}
	cfg.GetViper().Set("cli.verbose", o.verbose)

	var logger *zap.Logger
	if cmd.Flags().Changed("verbose") || cmd.Flags().Changed("json-log") {
		logger, err = logging.InitConsoleLogger(o.verbose, o.jsonLog)
	} else {
		logger, err = logging.InitLogger(cfg)
	}
	if err != nil {
		return nil, nil, err
	}

	container, err := di.BuildContainer(cmd.Context(), cfg, logger, o.fs)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}
	return container, logger, nil
}
