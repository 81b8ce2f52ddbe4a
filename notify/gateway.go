// Package notify delivers best-effort email notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/ariebrainware/hospital-booking/config"
	"github.com/rs/zerolog/log"
)

const (
	ProviderSendGrid = "sendgrid"
	ProviderSMTP     = "smtp"
)

// Status is the outcome of a single delivery attempt.
type Status int

const (
	StatusOK Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result reports what happened to a notification. Gateways return it instead
// of an error so that callers cannot fail because delivery failed.
type Result struct {
	Status Status
	Reason string
}

func Ok() Result { return Result{Status: StatusOK} }

func Skipped(reason string) Result { return Result{Status: StatusSkipped, Reason: reason} }

func Failed(reason string) Result { return Result{Status: StatusFailed, Reason: reason} }

func (r Result) String() string {
	if r.Reason == "" {
		return r.Status.String()
	}
	return fmt.Sprintf("%s: %s", r.Status, r.Reason)
}

// Message is a single email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Gateway sends one message with at most one attempt.
type Gateway interface {
	Send(ctx context.Context, msg Message) Result
}

// NewGateway builds the gateway named by NOTIFY_PROVIDER. Missing credentials
// yield a Noop gateway that reports why it skips.
func NewGateway(cfg *config.Config) Gateway {
	switch cfg.NotifyProvider {
	case ProviderSendGrid:
		if cfg.SendGridAPIKey == "" || cfg.FromEmail == "" {
			return Noop{Reason: "sendgrid is not configured"}
		}
		return NewSendGridGateway(cfg.SendGridAPIKey, cfg.FromEmail)
	case ProviderSMTP:
		if cfg.SMTPHost == "" || cfg.FromEmail == "" {
			return Noop{Reason: "smtp is not configured"}
		}
		return NewSMTPGateway(SMTPSettings{
			Host:     cfg.SMTPHost,
			Port:     int(cfg.SMTPPort),
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.FromEmail,
		})
	case "":
		// SendGrid is the default when its credentials are present.
		if cfg.SendGridAPIKey != "" && cfg.FromEmail != "" {
			return NewSendGridGateway(cfg.SendGridAPIKey, cfg.FromEmail)
		}
		return Noop{Reason: "no notification provider configured"}
	default:
		return Noop{Reason: fmt.Sprintf("unknown notification provider %q", cfg.NotifyProvider)}
	}
}

// protect converts a panic inside send into a Failed result.
func protect(provider string, send func() Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("provider", provider).Interface("panic", r).Msg("notification gateway panicked")
			res = Failed(fmt.Sprintf("%s: panic: %v", provider, r))
		}
	}()
	return send()
}
