package ports

import (
	"context"
	"encoding/json"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

// LocationEvent is emitted after a placement check so live maps can refresh.
type LocationEvent struct {
	Level    domain.Level            `json:"level"`
	EntityID string                  `json:"entity_id,omitempty"`
	ParentID string                  `json:"parent_id,omitempty"`
	Point    domain.GeoPoint         `json:"point"`
	Result   domain.ValidationResult `json:"result"`
}

// UnmarshalJSON reduces expanded entity and parent references to ids, so
// events from publishers that embed populated records decode the same way.
func (e *LocationEvent) UnmarshalJSON(b []byte) error {
	var wire struct {
		Level    domain.Level            `json:"level"`
		EntityID domain.Ref              `json:"entity_id"`
		ParentID domain.Ref              `json:"parent_id"`
		Point    domain.GeoPoint         `json:"point"`
		Result   domain.ValidationResult `json:"result"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*e = LocationEvent{
		Level:    wire.Level,
		EntityID: string(wire.EntityID),
		ParentID: string(wire.ParentID),
		Point:    wire.Point,
		Result:   wire.Result,
	}
	return nil
}

// AuditViolation is a stored entity found outside its containment zone.
type AuditViolation struct {
	DomainID string                  `json:"domain_id"`
	Level    domain.Level            `json:"level"`
	EntityID string                  `json:"entity_id"`
	Name     string                  `json:"name"`
	Result   domain.ValidationResult `json:"result"`
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishLocationValidated(ctx context.Context, ev *LocationEvent) error
	PublishAuditViolation(ctx context.Context, v *AuditViolation) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeLocationValidated(ctx context.Context, handler func(ctx context.Context, ev *LocationEvent) error) error
	SubscribeAuditViolations(ctx context.Context, handler func(ctx context.Context, v *AuditViolation) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// PlantQuery is the storage/API query used by progressive loading.
// A nil bounds requests the unbounded set.
type PlantQuery interface {
	FetchPlants(ctx context.Context, bounds *domain.ViewportBounds) ([]domain.Plant, error)
}

// PlantQueryFunc adapts a function to PlantQuery.
type PlantQueryFunc func(ctx context.Context, bounds *domain.ViewportBounds) ([]domain.Plant, error)

func (f PlantQueryFunc) FetchPlants(ctx context.Context, bounds *domain.ViewportBounds) ([]domain.Plant, error) {
	return f(ctx, bounds)
}
