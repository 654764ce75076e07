package mailer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samaraie/linktree-backend/config"
	"github.com/samaraie/linktree-backend/pkg/logger"
	"gopkg.in/gomail.v2"
)

var ErrNoRecipient = errors.New("no recipient specified")

// Message is a single outbound e-mail with an HTML body and a plain-text alternative
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers messages. Implementations must honour ctx cancellation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the SMTP mailer when a relay is configured, otherwise the logging mailer
func New(cfg *config.MailConfig) Mailer {
	if cfg.Host == "" {
		logger.Warn("SMTP_HOST not set, e-mails will be logged instead of sent", nil)
		return NewLogMailer()
	}
	return NewSMTPMailer(cfg)
}

// SMTPMailer sends through any SMTP relay, e.g. smtp.resend.com:465 with
// username "resend" and the API key as password.
type SMTPMailer struct {
	from string
	host string
	send func(...*gomail.Message) error
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{
		from: cfg.From,
		host: cfg.Host,
		send: dialer.DialAndSend,
	}
}

// Send returns ctx.Err() as soon as ctx is done. gomail cannot abort a
// transfer, so a message already handed to the relay may still be delivered;
// that late outcome is logged.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := buildMessage(m.from, msg)

	// the dial itself times out after 10s
	done := make(chan error, 1)
	go func() {
		done <- m.send(gm)
	}()

	select {
	case <-ctx.Done():
		go logLateResult(done, msg)
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", m.host, err)
		}
		logger.Info("E-mail sent", map[string]interface{}{
			"to":      msg.To,
			"subject": msg.Subject,
		})
		return nil
	}
}

func logLateResult(done <-chan error, msg Message) {
	fields := map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	}
	if err := <-done; err != nil {
		logger.Error("E-mail failed after the caller gave up", err, fields)
		return
	}
	logger.Warn("E-mail delivered after the caller gave up", fields)
}

func buildMessage(from string, msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)

	if msg.HTMLBody != "" {
		gm.SetBody("text/html", msg.HTMLBody)
		if msg.TextBody != "" {
			gm.AddAlternative("text/plain", msg.TextBody)
		}
	} else {
		gm.SetBody("text/plain", msg.TextBody)
	}
	return gm
}

// LogMailer is the development mailer: it writes the plain-text body to the log
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Info("[DEV MODE] E-mail not sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    msg.TextBody,
	})
	return nil
}

// Outbox keeps messages in memory. SetErr simulates delivery failures.
type Outbox struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns a copy of everything delivered so far
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.messages))
	copy(out, o.messages)
	return out
}

// Last returns the most recent message, if any
func (o *Outbox) Last() (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.messages) == 0 {
		return Message{}, false
	}
	return o.messages[len(o.messages)-1], true
}

func (o *Outbox) SetErr(err error) {
	o.mu.Lock()
	o.err = err
	o.mu.Unlock()
}
