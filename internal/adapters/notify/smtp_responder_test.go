package notify

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap/zaptest"
)

func TestComposeMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	raw := composeMessage("bot@example.com", []string{"me@example.com"}, "/messaging/thread/42", "Hi Ann,\nthanks!", now)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if got := msg.Header.Get("X-Message-Link"); got != "/messaging/thread/42" {
		t.Fatalf("X-Message-Link = %q", got)
	}
	if got := msg.Header.Get("Date"); got != "Wed, 01 May 2024 09:30:00 +0000" {
		t.Fatalf("Date = %q", got)
	}
	body, _ := io.ReadAll(msg.Body)
	if string(body) != "Hi Ann,\r\nthanks!\r\n" {
		t.Fatalf("body = %q", body)
	}
}

type captureBackend struct {
	mu       sync.Mutex
	from     string
	rcpts    []string
	received []byte
}

func (b *captureBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &captureSession{backend: b}, nil
}

type captureSession struct {
	backend *captureBackend
}

func (s *captureSession) Reset()        {}
func (s *captureSession) Logout() error { return nil }

func (s *captureSession) Mail(from string, _ *smtp.MailOptions) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.from = from
	return nil
}

func (s *captureSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.rcpts = append(s.backend.rcpts, to)
	return nil
}

func (s *captureSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	s.backend.received = data
	return nil
}

func TestSendResponseOverSMTP(t *testing.T) {
	backend := &captureBackend{}
	server := smtp.NewServer(backend)
	server.Domain = "localhost"
	server.AllowInsecureAuth = true

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go func() { _ = server.Serve(ln) }()
	defer server.Close()

	r := NewSMTPResponder(SMTPOptions{
		Address: ln.Addr().String(),
		From:    "bot@example.com",
		To:      []string{"me@example.com"},
	}, zaptest.NewLogger(t))

	if err := r.SendResponse(context.Background(), "/m/7", "On it."); err != nil {
		t.Fatalf("SendResponse: %v", err)
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.from != "bot@example.com" || len(backend.rcpts) != 1 || backend.rcpts[0] != "me@example.com" {
		t.Fatalf("unexpected envelope from=%q rcpts=%v", backend.from, backend.rcpts)
	}
	if !strings.Contains(string(backend.received), "X-Message-Link: /m/7") {
		t.Fatalf("link header missing from %q", backend.received)
	}
}

func TestSendResponseWithoutRecipients(t *testing.T) {
	r := NewSMTPResponder(SMTPOptions{Address: "127.0.0.1:1"}, zaptest.NewLogger(t))
	if err := r.SendResponse(context.Background(), "/m/1", "x"); err == nil {
		t.Fatal("expected error without recipients")
	}
}
