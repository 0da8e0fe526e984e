package di

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/bayes-spam-filter/internal/config"
	"github.com/mikey/bayes-spam-filter/internal/core"
)

func newTestConfig() *config.Config {
	v := config.NewEmptyViper()
	v.Set("corpus.ham_dir", "train/ham")
	v.Set("corpus.spam_dir", "train/spam")
	v.Set("server.whitelisted_domains", []string{"example.com"})
	return config.NewFromViper(v)
}

func writeCorpus(t *testing.T, fs afero.Fs) {
	t.Helper()
	files := map[string]string{
		"train/ham/1.txt":  "Subject: meeting notes attached",
		"train/ham/2.txt":  "Subject: lunch notes today",
		"train/spam/1.txt": "Subject: cheap pills today",
		"train/spam/2.txt": "Subject: cheap offer notes",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
}

func TestBuildContainer_TrainsModel(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCorpus(t, fs)

	container, err := BuildContainer(context.Background(), newTestConfig(), zap.NewNop(), fs)
	require.NoError(t, err)

	err = container.Invoke(func(training *core.TrainingSet, model *core.Model) {
		assert.Equal(t, 2, training.HamCount)
		assert.Equal(t, 2, training.SpamCount)
		assert.Equal(t, 1.0, model.K)
		assert.Equal(t, core.NewTokenSet("notes", "today"), model.Shared)
	})
	require.NoError(t, err)
}

func TestBuildContainer_ServiceHonoursWhitelist(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCorpus(t, fs)

	container, err := BuildContainer(context.Background(), newTestConfig(), zap.NewNop(), fs)
	require.NoError(t, err)

	err = container.Invoke(func(service *core.SpamFilterService) {
		result, err := service.AnalyzeEmail(context.Background(), &core.Email{
			From:    "boss@example.com",
			Subject: "cheap pills today",
		})
		require.NoError(t, err)
		assert.Equal(t, core.LabelHam, result.Label)
		assert.Equal(t, "whitelist", result.ModelUsed)
	})
	require.NoError(t, err)
}

func TestBuildContainer_MissingCorpus(t *testing.T) {
	container, err := BuildContainer(context.Background(), newTestConfig(), zap.NewNop(), afero.NewMemMapFs())
	require.NoError(t, err)

	err = container.Invoke(func(*core.Model) {})
	assert.ErrorIs(t, err, core.ErrCorpusAccess)
}

func TestBuildContainer_TrainingHonoursContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCorpus(t, fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	container, err := BuildContainer(ctx, newTestConfig(), zap.NewNop(), fs)
	require.NoError(t, err)

	err = container.Invoke(func(*core.TrainingSet) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadCLIConfig_FlagOverrides(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("k", 1.0, "")
	flags.String("ham", "data/train/ham", "")
	require.NoError(t, flags.Parse([]string{"--k", "2.5"}))

	cfg, err := LoadCLIConfig("", flags, []FlagBinding{
		{Key: "classify.k", Flag: "k"},
		{Key: "corpus.ham_dir", Flag: "ham"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.GetClassify().K)
	assert.Equal(t, "data/train/ham", cfg.GetCorpus().HamDir)

	_, err = LoadCLIConfig("", flags, []FlagBinding{{Key: "x", Flag: "missing"}})
	assert.Error(t, err)
}
