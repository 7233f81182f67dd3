package events

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Publisher emits service events onto NATS. A nil connection turns every
// publish into a no-op, so callers do not need to care whether eventing is
// configured.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewPublisher builds a publisher for the given subject.
func NewPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

// Publish marshals the payload and emits it. Publish failures are logged and
// swallowed; eventing is best-effort and must never fail the caller.
func (p *Publisher) Publish(payload interface{}) {
	if p == nil || p.conn == nil || p.subject == "" {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to marshal event payload")
		return
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Msg("failed to publish event")
	}
}
