package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/bayes-spam-filter/internal/config"
	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/mikey/bayes-spam-filter/internal/di"
)

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Label every test email as ham or spam",
		Args:  cobra.NoArgs,
	}
	bindings := corpusFlags(cmd)
	cmd.Flags().String("test", "data/test", "Directory of emails to classify")
	cmd.Flags().Float64("k", 1.0, "Laplace smoothing constant")
	cmd.Flags().StringP("output", "o", "-", "Output file for <filename> <label> lines (- for stdout)")
	bindings = append(bindings,
		di.FlagBinding{Key: "corpus.test_dir", Flag: "test"},
		di.FlagBinding{Key: "classify.k", Flag: "k"},
		di.FlagBinding{Key: "classify.output", Flag: "output"},
	)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		container, logger, err := opts.buildContainer(cmd, bindings)
		if err != nil {
			return err
		}
		defer logger.Sync()

		return container.Invoke(func(
			cfg *config.Config,
			reader core.CorpusReader,
			tokenizer *core.Tokenizer,
			model *core.Model,
			fs afero.Fs,
		) error {
			testDir := cfg.GetCorpus().TestDir
			docs, err := reader.ReadDocuments(cmd.Context(), testDir)
			if err != nil {
				return err
			}

			classifications := core.ClassifyDocuments(tokenizer, model, docs)
			spam := 0
			for _, c := range classifications {
				if c.Label == core.LabelSpam {
					spam++
				}
			}
			logger.Info("Classified test corpus",
				zap.String("dir", testDir),
				zap.Int("documents", len(classifications)),
				zap.Int("spam", spam))

			return writeClassifications(fs, cfg.GetClassify().Output, opts.out, classifications)
		})
	}
	return cmd
}

func writeClassifications(fs afero.Fs, path string, stdout io.Writer, classifications []core.Classification) error {
	out := stdout
	if path != "" && path != "-" {
		f, err := fs.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	for _, c := range classifications {
		fmt.Fprintf(w, "%s %s\n", c.Name, c.Label)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write classifications: %w", err)
	}
	return nil
}
