package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type domainAllowList string

func (d domainAllowList) IsWhitelisted(from string) bool {
	return strings.HasSuffix(from, "@"+string(d))
}

func newTestService(t *testing.T, allowList SenderAllowList) *SpamFilterService {
	t.Helper()
	model, err := BuildModel(skewedTraining(), 0.5)
	require.NoError(t, err)
	return NewSpamFilterService(model, NewTokenizer(DefaultHeaderLength, false), allowList, zap.NewNop())
}

func TestDocumentText(t *testing.T) {
	text := DocumentText(&Email{Subject: "x", Body: "y"})
	assert.Equal(t, "Subject: x\ny", text)
	assert.Equal(t, NewTokenSet("x", "y"), NewTokenizer(DefaultHeaderLength, false).Tokenize(text))
}

func TestAnalyzeEmail(t *testing.T) {
	service := newTestService(t, nil)

	result, err := service.AnalyzeEmail(context.Background(), &Email{From: "a@b.c", Subject: "x", Body: "y"})
	require.NoError(t, err)
	assert.True(t, result.IsSpam())
	assert.Greater(t, result.Margin(), 0.0)
	assert.Equal(t, "naive-bayes(k=0.5)", result.ModelUsed)
	assert.Contains(t, result.Explanation, "over 2 tokens")

	result, err = service.AnalyzeEmail(context.Background(), &Email{From: "a@b.c", Subject: "w"})
	require.NoError(t, err)
	assert.Equal(t, LabelHam, result.Label)
	assert.Less(t, result.Margin(), 0.0)
}

func TestAnalyzeEmailWhitelist(t *testing.T) {
	service := newTestService(t, domainAllowList("example.com"))

	result, err := service.AnalyzeEmail(context.Background(), &Email{From: "boss@example.com", Subject: "x", Body: "y"})
	require.NoError(t, err)
	assert.Equal(t, LabelHam, result.Label)
	assert.Equal(t, "whitelist", result.ModelUsed)
	assert.Zero(t, result.Margin())
}

func TestAnalyzeEmailCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(t, nil).AnalyzeEmail(ctx, &Email{Subject: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
