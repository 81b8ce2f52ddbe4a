package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Noop never sends. It is used when no provider is configured.
type Noop struct {
	Reason string
}

func (n Noop) Send(_ context.Context, msg Message) Result {
	reason := n.Reason
	if reason == "" {
		reason = "notifications disabled"
	}
	log.Warn().Str("to", msg.To).Str("subject", msg.Subject).Msg("email not sent: " + reason)
	return Skipped(reason)
}
