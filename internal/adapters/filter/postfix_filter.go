package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/bayes-spam-filter/internal/core"
	"go.uber.org/zap"
)

// defaultSubjectPrefix is used when subject rewriting is on without a prefix
const defaultSubjectPrefix = "[**SPAM**] "

// PostfixOptions configures the SMTP content filter
type PostfixOptions struct {
	ListenAddr    string
	BlockSpam     bool
	SpamHeader    string
	ScoreHeader   string
	ReasonHeader  string
	RelayAddr     string
	RelayPort     int
	RelayEnabled  bool
	SubjectPrefix string
	ModifySubject bool
}

// PostfixFilter implements a Postfix content filter
type PostfixFilter struct {
	service *core.SpamFilterService
	logger  *zap.Logger
	opts    PostfixOptions
	server  *smtp.Server
	deliver func(sender string, recipients []string, data []byte) error
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(service *core.SpamFilterService, logger *zap.Logger, opts PostfixOptions) *PostfixFilter {
	if opts.SubjectPrefix == "" && opts.ModifySubject {
		opts.SubjectPrefix = defaultSubjectPrefix
	}

	f := &PostfixFilter{
		service: service,
		logger:  logger,
		opts:    opts,
	}
	f.deliver = f.sendToPostfix
	return f
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.opts.ListenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	ln, err := net.Listen("tcp", f.opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.opts.ListenAddr, err)
	}

	f.logger.Info("Postfix filter started", zap.String("address", ln.Addr().String()))

	go func() {
		if err := f.server.Serve(ln); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail classifies an already parsed email
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisResult, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// filterMessage classifies a raw message and returns it with spam headers
// added. A nil message with a non-nil result means the mail is rejected.
func (f *PostfixFilter) filterMessage(ctx context.Context, sender string, recipients []string, raw []byte) ([]byte, *core.AnalysisResult, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse email message: %w", err)
	}

	subject, err := decodeEncodedHeader(msg.Header.Get("Subject"))
	if err != nil {
		subject = msg.Header.Get("Subject")
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	email := &core.Email{
		From:    sender,
		To:      recipients,
		Subject: subject,
		Body:    textContent,
		Headers: map[string][]string(msg.Header),
	}

	result, err := f.service.AnalyzeEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	if result.IsSpam() && f.opts.BlockSpam {
		return nil, result, nil
	}

	headerBlock, body := splitMessage(raw)

	var out bytes.Buffer
	fmt.Fprintf(&out, "%s: %s\r\n", f.opts.SpamHeader, spamStatus(result))
	fmt.Fprintf(&out, "%s: %.4f\r\n", f.opts.ScoreHeader, result.Margin())
	fmt.Fprintf(&out, "%s: %s\r\n", f.opts.ReasonHeader, result.Explanation)

	if result.IsSpam() && f.opts.ModifySubject && !strings.HasPrefix(subject, f.opts.SubjectPrefix) {
		headerBlock = replaceSubject(headerBlock, mime.QEncoding.Encode("utf-8", f.opts.SubjectPrefix+subject))
	}
	out.Write(headerBlock)
	out.Write(body)

	return out.Bytes(), result, nil
}

func spamStatus(result *core.AnalysisResult) string {
	if result.IsSpam() {
		return "Yes"
	}
	return "No"
}

// splitMessage returns the header block including its terminating blank
// line and the body that follows it.
func splitMessage(raw []byte) ([]byte, []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i+4], raw[i+4:]
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return raw[:i+2], raw[i+2:]
	}
	return raw, nil
}

// replaceSubject swaps the Subject field, including folded continuation
// lines, for a new one. A Subject is appended when none exists.
func replaceSubject(headerBlock []byte, subject string) []byte {
	lines := strings.SplitAfter(string(headerBlock), "\n")
	var out strings.Builder
	replaced, skipping := false, false
	for _, line := range lines {
		if skipping && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			continue
		}
		skipping = false
		if !replaced && len(line) >= 8 && strings.EqualFold(line[:8], "Subject:") {
			fmt.Fprintf(&out, "Subject: %s\r\n", subject)
			replaced, skipping = true, true
			continue
		}
		if !replaced && strings.TrimRight(line, "\r\n") == "" {
			fmt.Fprintf(&out, "Subject: %s\r\n", subject)
			replaced = true
		}
		out.WriteString(line)
	}
	return []byte(out.String())
}

// sendToPostfix sends the processed email back to Postfix on the configured port using go-smtp
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	if !f.opts.RelayEnabled {
		f.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
		return nil
	}

	postfixAddr := net.JoinHostPort(f.opts.RelayAddr, fmt.Sprint(f.opts.RelayPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// The message is already accepted at this point
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message and relays or rejects it
func (s *smtpSession) Data(r io.Reader) error {
	logger := s.filter.logger

	raw, err := io.ReadAll(r)
	if err != nil {
		logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filtered, result, err := s.filter.filterMessage(ctx, s.sender, s.recipients, raw)
	if err != nil {
		logger.Error("Failed to filter email", zap.Error(err), zap.String("sender", s.sender))
		return err
	}

	if filtered == nil {
		logger.Info("Rejecting spam email",
			zap.String("from", s.sender),
			zap.Float64("margin", result.Margin()),
			zap.String("model", result.ModelUsed))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      "Rejected as spam",
		}
	}

	if err := s.filter.deliver(s.sender, s.recipients, filtered); err != nil {
		logger.Error("Failed to send email back to Postfix", zap.Error(err), zap.String("sender", s.sender))
		return err
	}

	logger.Info("Processed email",
		zap.String("from", s.sender),
		zap.String("label", string(result.Label)),
		zap.Float64("margin", result.Margin()),
		zap.String("model", result.ModelUsed))

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
