package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFixture(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func TestFSReader_ReadDocumentsNaturalOrder(t *testing.T) {
	fs := newFixture(t, map[string]string{
		"test/10.txt": "Subject: ten",
		"test/2.txt":  "Subject: two",
		"test/1.txt":  "Subject: one",
	})
	require.NoError(t, fs.MkdirAll("test/nested", 0o755))

	reader, err := NewFSReader(fs, "utf-8", "natural", zap.NewNop())
	require.NoError(t, err)

	docs, err := reader.ReadDocuments(context.Background(), "test")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"1.txt", "2.txt", "10.txt"}, names(docs))
	assert.Equal(t, "Subject: two", docs[1].Text)
}

func TestFSReader_ReadDocumentsLexicalOrder(t *testing.T) {
	fs := newFixture(t, map[string]string{
		"test/10.txt": "a",
		"test/2.txt":  "b",
		"test/1.txt":  "c",
	})

	reader, err := NewFSReader(fs, "utf-8", "lexical", zap.NewNop())
	require.NoError(t, err)

	docs, err := reader.ReadDocuments(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.txt", "10.txt", "2.txt"}, names(docs))
}

func TestFSReader_DecodesWindows1252(t *testing.T) {
	fs := newFixture(t, map[string]string{
		"ham/1.txt": "Subject: caf\xe9",
	})

	reader, err := NewFSReader(fs, "windows-1252", "natural", zap.NewNop())
	require.NoError(t, err)

	docs, err := reader.ReadDocuments(context.Background(), "ham")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Subject: café", docs[0].Text)
}

func TestFSReader_MissingDirectory(t *testing.T) {
	reader, err := NewFSReader(afero.NewMemMapFs(), "utf-8", "natural", zap.NewNop())
	require.NoError(t, err)

	_, err = reader.ReadDocuments(context.Background(), "nowhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrCorpusAccess))

	var corpusErr *core.CorpusError
	require.ErrorAs(t, err, &corpusErr)
	assert.Equal(t, "nowhere", corpusErr.Path)
}

func TestNewFSReader_RejectsUnknownSettings(t *testing.T) {
	_, err := NewFSReader(afero.NewMemMapFs(), "klingon", "natural", zap.NewNop())
	assert.Error(t, err)

	_, err = NewFSReader(afero.NewMemMapFs(), "utf-8", "random", zap.NewNop())
	assert.Error(t, err)
}

func TestFSReader_EstimateIsIdempotent(t *testing.T) {
	fs := newFixture(t, map[string]string{
		"ham/1.txt": "Subject: hello world hello",
		"ham/2.txt": "Subject: world\r\nagain",
	})
	reader, err := NewFSReader(fs, "utf-8", "natural", zap.NewNop())
	require.NoError(t, err)

	estimator := core.NewEstimator(reader, core.NewTokenizer(core.DefaultHeaderLength, false), zap.NewNop())
	first, n1, err := estimator.Estimate(context.Background(), "ham")
	require.NoError(t, err)
	second, n2, err := estimator.Estimate(context.Background(), "ham")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, n1, n2)
	assert.Equal(t, core.FrequencyTable{"hello": 1, "world": 2, "again": 1}, first)
}

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.txt", "2.txt", true},
		{"2.txt", "10.txt", true},
		{"10.txt", "2.txt", false},
		{"a", "ab", true},
		{"x", "x1", true},
		{"x1", "x", false},
		{"01.txt", "1.txt", false},
		{"1.txt", "01.txt", true},
		{"same", "same", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"<"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, NaturalLess(tt.a, tt.b))
		})
	}
}

func names(docs []core.Document) []string {
	out := make([]string, len(docs))
	for i, doc := range docs {
		out[i] = doc.Name
	}
	return out
}
