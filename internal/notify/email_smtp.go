package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// SMTPConfig points at a submission server (host:port, STARTTLS on 587).
type SMTPConfig struct {
	Addr     string
	Username string
	Password string
}

// SMTPSender delivers over plain SMTP submission.
type SMTPSender struct {
	cfg    SMTPConfig
	from   Sender
	logger *logging.Logger
	send   func(addr string, a sasl.Client, from string, to []string, r io.Reader) error
	now    func() time.Time
}

// NewSMTPSender returns nil without a server address.
func NewSMTPSender(cfg SMTPConfig, from Sender, logger *logging.Logger) *SMTPSender {
	if cfg.Addr == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SMTPSender{cfg: cfg, from: from.withDefaults(), logger: logger, send: smtp.SendMail, now: time.Now}
}

func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.send == nil {
		return fmt.Errorf("notify: smtp sender not configured")
	}
	raw, err := s.compose(msg)
	if err != nil {
		return err
	}

	var auth sasl.Client
	if s.cfg.Username != "" {
		auth = sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)
	}

	// smtp.SendMail has no context; run it aside so the caller's deadline holds.
	done := make(chan error, 1)
	go func() {
		done <- s.send(s.cfg.Addr, auth, s.from.Address, []string{msg.To}, bytes.NewReader(raw))
	}()
	select {
	case <-ctx.Done():
		s.logger.Error("smtp send timed out", "to", msg.To, "error", ctx.Err())
		return fmt.Errorf("notify: smtp send: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			s.logger.Error("smtp send failed", "error", err, "to", msg.To)
			return fmt.Errorf("notify: smtp send failed: %w", err)
		}
	}
	s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject)
	return nil
}

// compose renders a single-part RFC 5322 message.
func (s *SMTPSender) compose(msg EmailMessage) ([]byte, error) {
	var h mail.Header
	h.SetDate(s.now())
	h.SetAddressList("From", []*mail.Address{{Name: s.from.Name, Address: s.from.Address}})
	h.SetAddressList("To", []*mail.Address{{Name: msg.ToName, Address: msg.To}})
	h.SetSubject(msg.Subject)

	body, contentType := msg.Body, "text/plain"
	if body == "" && msg.HTML != "" {
		body, contentType = msg.HTML, "text/html"
	}
	h.SetContentType(contentType, map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("notify: build message: %w", err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, fmt.Errorf("notify: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("notify: close message: %w", err)
	}
	return buf.Bytes(), nil
}

var _ EmailSender = (*SMTPSender)(nil)
