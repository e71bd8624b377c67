package natsadapter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/farmmap/internal/adapters/nats"
	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
)

type fakeAck struct{ acks, naks int }

func (f *fakeAck) Ack(opts ...nats.AckOpt) error { f.acks++; return nil }
func (f *fakeAck) Nak(opts ...nats.AckOpt) error { f.naks++; return nil }

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"level":"plant","entity_id":"p1","point":{"lat":12.6,"lon":78.0},"result":{"outcome":"validated","valid":true,"level":"plant"}}`)

	tests := []struct {
		name       string
		data       []byte
		handlerErr error
		acks, naks int
	}{
		{"ok", payload, nil, 1, 0},
		{"handler fails", payload, errors.New("cache down"), 0, 1},
		{"garbage", []byte("{"), nil, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			var got *ports.LocationEvent
			natsadapter.Dispatch(ctx, tt.data, ack, func(ctx context.Context, ev *ports.LocationEvent) error {
				got = ev
				return tt.handlerErr
			})
			if ack.acks != tt.acks || ack.naks != tt.naks {
				t.Errorf("acks/naks = %d/%d, want %d/%d", ack.acks, ack.naks, tt.acks, tt.naks)
			}
			if tt.name == "ok" && (got == nil || got.EntityID != "p1" || got.Level != domain.LevelPlant) {
				t.Errorf("decoded %+v", got)
			}
		})
	}
}

func TestDispatch_PopulatedReferences(t *testing.T) {
	data := []byte(`{"level":"plant","entity_id":{"_id":"p1","name":"Neem"},"parent_id":{"id":"pl1"},"point":{"lat":12.6,"lon":78.0}}`)
	var got *ports.LocationEvent
	ack := &fakeAck{}
	natsadapter.Dispatch(context.Background(), data, ack, func(ctx context.Context, ev *ports.LocationEvent) error {
		got = ev
		return nil
	})
	if ack.acks != 1 {
		t.Fatalf("expected ack, got %d acks %d naks", ack.acks, ack.naks)
	}
	if got.EntityID != "p1" || got.ParentID != "pl1" {
		t.Errorf("ids = %q/%q, want p1/pl1", got.EntityID, got.ParentID)
	}
}

func TestSubjects(t *testing.T) {
	if s := natsadapter.LocationSubject(&ports.LocationEvent{Level: domain.LevelPlot}); s != "farm.location.validated.plot" {
		t.Errorf("LocationSubject = %q", s)
	}
	if s := natsadapter.ViolationSubject(&ports.AuditViolation{DomainID: "d1"}); s != "farm.audit.violation.d1" {
		t.Errorf("ViolationSubject = %q", s)
	}
}
