package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// SMTPOptions configures the SMTP responder
type SMTPOptions struct {
	Address     string
	Username    string
	Password    string
	From        string
	To          []string
	DialTimeout time.Duration
}

// SMTPResponder mails automated responses to a relay instead of typing them
// into the live list. The conversation link travels in a header.
type SMTPResponder struct {
	opts   SMTPOptions
	logger *zap.Logger
	now    func() time.Time
}

// NewSMTPResponder creates a new SMTP responder
func NewSMTPResponder(opts SMTPOptions, logger *zap.Logger) *SMTPResponder {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	return &SMTPResponder{opts: opts, logger: logger, now: time.Now}
}

// SendResponse implements core.Responder
func (r *SMTPResponder) SendResponse(ctx context.Context, link, text string) error {
	if len(r.opts.To) == 0 {
		return fmt.Errorf("no SMTP recipients configured")
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	dialer := net.Dialer{Timeout: r.opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", r.opts.Address)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	deadline := time.Now().Add(30 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if r.opts.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", r.opts.Username, r.opts.Password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(r.opts.From, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range r.opts.To {
		if err := c.Rcpt(recipient, nil); err != nil {
			r.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(composeMessage(r.opts.From, r.opts.To, link, text, r.now())); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		r.logger.Warn("QUIT command failed", zap.Error(err))
	}

	r.logger.Info("Automated response mailed",
		zap.String("link", link),
		zap.Strings("recipients", r.opts.To))
	return nil
}

// composeMessage renders a plain text message with CRLF line endings
func composeMessage(from string, to []string, link, text string, now time.Time) []byte {
	var b bytes.Buffer
	header := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	header("From", from)
	header("To", strings.Join(to, ", "))
	header("Subject", "Automated response")
	header("Date", now.Format(time.RFC1123Z))
	header("X-Message-Link", link)
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\r\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\r\n") {
		b.WriteString("\r\n")
	}
	return b.Bytes()
}
