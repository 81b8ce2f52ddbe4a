package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPGateway sends a multipart text/HTML message over SMTP.
type SMTPGateway struct {
	from   string
	dialer mailDialer
}

func NewSMTPGateway(s SMTPSettings) *SMTPGateway {
	return &SMTPGateway{from: s.From, dialer: gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)}
}

func (g *SMTPGateway) Send(ctx context.Context, msg Message) Result {
	return protect(ProviderSMTP, func() Result {
		if msg.To == "" {
			return Failed("smtp: recipient is empty")
		}

		m := gomail.NewMessage()
		m.SetHeader("From", g.from)
		m.SetHeader("To", msg.To)
		m.SetHeader("Subject", msg.Subject)
		m.SetBody("text/plain", msg.Text)
		if msg.HTML != "" {
			m.AddAlternative("text/html", msg.HTML)
		}

		// gomail has no context support; give up waiting when ctx ends.
		done := make(chan error, 1)
		go func() { done <- g.dialer.DialAndSend(m) }()

		select {
		case err := <-done:
			if err != nil {
				return Failed(fmt.Sprintf("smtp: %v", err))
			}
			return Ok()
		case <-ctx.Done():
			return Failed(fmt.Sprintf("smtp: %v", ctx.Err()))
		}
	})
}
