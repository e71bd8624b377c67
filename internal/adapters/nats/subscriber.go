package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/farmmap/internal/core/ports"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// Acker is the part of *nats.Msg a handler result is reported on.
type Acker interface {
	Ack(opts ...nats.AckOpt) error
	Nak(opts ...nats.AckOpt) error
}

// Dispatch decodes data into T and runs handler, acking on success and
// nak-ing on a decode or handler failure.
func Dispatch[T any](ctx context.Context, data []byte, ack Acker, handler func(context.Context, *T) error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logging.LoggerFromCtx(ctx).Warn("dropping undecodable event", slog.String("error", err.Error()))
		_ = ack.Nak()
		return
	}
	if err := handler(ctx, &v); err != nil {
		_ = ack.Nak()
		return
	}
	_ = ack.Ack()
}

func (s *Subscriber) SubscribeLocationValidated(ctx context.Context, handler func(ctx context.Context, ev *ports.LocationEvent) error) error {
	sub, err := s.js.Subscribe(SubjectLocationValidated+".>", func(msg *nats.Msg) {
		Dispatch(ctx, msg.Data, msg, handler)
	},
		nats.Durable("location-cache-invalidator"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) SubscribeAuditViolations(ctx context.Context, handler func(ctx context.Context, v *ports.AuditViolation) error) error {
	sub, err := s.js.Subscribe(SubjectAuditViolation+".>", func(msg *nats.Msg) {
		Dispatch(ctx, msg.Data, msg, handler)
	},
		nats.Durable("audit-violation-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
