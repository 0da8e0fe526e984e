package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SenderAllowList decides whether a sender bypasses classification
type SenderAllowList interface {
	IsWhitelisted(from string) bool
}

// SpamFilterService classifies incoming emails with a trained model
type SpamFilterService struct {
	model     *Model
	tokenizer *Tokenizer
	allowList SenderAllowList
	logger    *zap.Logger
}

// NewSpamFilterService creates a new spam filter service
func NewSpamFilterService(
	model *Model,
	tokenizer *Tokenizer,
	allowList SenderAllowList,
	logger *zap.Logger,
) *SpamFilterService {
	return &SpamFilterService{
		model:     model,
		tokenizer: tokenizer,
		allowList: allowList,
		logger:    logger,
	}
}

// DocumentText renders an email in the corpus layout: a "Subject: " header
// line followed by the body, so the tokenizer's header strip applies.
func DocumentText(email *Email) string {
	return "Subject: " + email.Subject + "\n" + email.Body
}

// AnalyzeEmail checks if an email is spam
func (s *SpamFilterService) AnalyzeEmail(ctx context.Context, email *Email) (*AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.allowList != nil && s.allowList.IsWhitelisted(email.From) {
		s.logger.Info("Skipping spam check for whitelisted domain",
			zap.String("sender", email.From),
			zap.String("action", "whitelist_bypass"))

		return &AnalysisResult{
			Label:       LabelHam,
			Explanation: "Sender domain is whitelisted",
			ModelUsed:   "whitelist",
		}, nil
	}

	tokens := s.tokenizer.Tokenize(DocumentText(email))
	hamScore, spamScore := Score(tokens, s.model)
	result := &AnalysisResult{
		Label:     decide(hamScore, spamScore),
		HamScore:  hamScore,
		SpamScore: spamScore,
		ModelUsed: fmt.Sprintf("naive-bayes(k=%g)", s.model.K),
	}
	result.Explanation = fmt.Sprintf("log10 spam=%.4f ham=%.4f over %d tokens", spamScore, hamScore, len(tokens))

	s.logger.Debug("Classified email",
		zap.String("sender", email.From),
		zap.String("label", string(result.Label)),
		zap.Float64("margin", result.Margin()))

	return result, nil
}
