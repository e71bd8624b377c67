package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/farmmap/internal/core/ports"
)

// Subjects used by the farm map.
const (
	SubjectLocationValidated = "farm.location.validated"
	SubjectAuditViolation    = "farm.audit.violation"
	SubjectBroadcast         = "farm.updates.broadcast"
)

// LocationSubject is the subject a validation event of one level is
// published on, e.g. "farm.location.validated.plant".
func LocationSubject(ev *ports.LocationEvent) string {
	return SubjectLocationValidated + "." + string(ev.Level)
}

// ViolationSubject is the per-domain subject of an audit violation.
func ViolationSubject(v *ports.AuditViolation) string {
	return SubjectAuditViolation + "." + v.DomainID
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "FARM_LOCATIONS",
			Subjects:  []string{SubjectLocationValidated + ".>"},
			Retention: nats.InterestPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "FARM_AUDIT",
			Subjects:  []string{SubjectAuditViolation + ".>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist; try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishLocationValidated(ctx context.Context, ev *ports.LocationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(LocationSubject(ev), data, nats.Context(ctx)); err != nil {
		return err
	}
	// Live maps listen on the core subject; JetStream keeps the durable copy.
	return p.conn.Publish(SubjectBroadcast, data)
}

func (p *Publisher) PublishAuditViolation(ctx context.Context, v *ports.AuditViolation) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ViolationSubject(v), data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish(SubjectBroadcast, data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
