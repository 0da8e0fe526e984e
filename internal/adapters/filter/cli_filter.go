package filter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mikey/bayes-spam-filter/internal/core"
	"go.uber.org/zap"
)

// previewBytes bounds the verbose body preview
const previewBytes = 500

// CliFilter implements a command-line interface for spam detection
type CliFilter struct {
	service *core.SpamFilterService
	logger  *zap.Logger
	out     io.Writer
	verbose bool
}

// NewCliFilter creates a new CLI filter that reports to out
func NewCliFilter(service *core.SpamFilterService, logger *zap.Logger, out io.Writer, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service: service,
		logger:  logger,
		out:     out,
		verbose: verbose,
	}, nil
}

// ProcessMessage parses a raw RFC 5322 message from r and classifies it
func (f *CliFilter) ProcessMessage(ctx context.Context, r io.Reader) (*core.AnalysisResult, error) {
	msg, err := mail.ReadMessage(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}

	subject, err := decodeEncodedHeader(msg.Header.Get("Subject"))
	if err != nil {
		subject = msg.Header.Get("Subject")
	}

	body, err := extractTextFromMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to read email body: %w", err)
	}

	var to []string
	if raw := msg.Header.Get("To"); raw != "" {
		for _, addr := range strings.Split(raw, ",") {
			to = append(to, strings.TrimSpace(addr))
		}
	}

	email := &core.Email{
		From:    msg.Header.Get("From"),
		To:      to,
		Subject: subject,
		Body:    body,
		Headers: map[string][]string(msg.Header),
	}
	return f.ProcessEmail(ctx, email)
}

// ProcessEmail classifies an email and prints the report
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", email.From)
	fmt.Fprintf(f.out, "To: %s\n", strings.Join(email.To, ", "))
	fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", previewText(email.Body, previewBytes))
	}

	startTime := time.Now()
	result, err := f.service.AnalyzeEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		return nil, err
	}
	duration := time.Since(startTime)

	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Label: %s\n", result.Label)
	fmt.Fprintf(f.out, "Ham log score: %.4f\n", result.HamScore)
	fmt.Fprintf(f.out, "Spam log score: %.4f\n", result.SpamScore)
	fmt.Fprintf(f.out, "Explanation: %s\n", result.Explanation)
	fmt.Fprintf(f.out, "Model used: %s\n", result.ModelUsed)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return result, nil
}

// previewText cuts s to at most limit bytes on a rune boundary
func previewText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
