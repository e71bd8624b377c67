package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facebookgo/clock"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

func recv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

func quiet[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected %s: %v", what, v)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestMapSession_GestureTriggersSingleFetch(t *testing.T) {
	mock := clock.NewMock()
	fetched := make(chan domain.ViewportBounds, 10)
	q := &mockPlantQuery{fetchFn: func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
		fetched <- *b
		return []domain.Plant{plant("p1", 12.69, 78.06)}, nil
	}}
	loader := usecases.NewProgressiveLoader(q, th, mock)
	visible := make(chan usecases.Viewport, 10)
	s := usecases.NewMapSession(context.Background(), loader, mock, usecases.SessionConfig{},
		func(v usecases.Viewport) { visible <- v }, nil)
	defer s.Close()

	// Pan east in ten steps, one every 100ms.
	var last domain.ViewportBounds
	for i := 0; i < 10; i++ {
		last = rect(12.6, 78.0+float64(i)*0.01, 12.8, 78.2+float64(i)*0.01)
		s.OnViewportMove(last, 15.5)
		mock.Add(100 * time.Millisecond)
	}
	quiet(t, visible, "visible recompute during gesture")
	quiet(t, fetched, "fetch during gesture")

	mock.Add(150 * time.Millisecond)
	v := recv(t, visible, "visible recompute")
	if v.Bounds != last {
		t.Errorf("recompute used stale bounds %+v", v.Bounds)
	}
	quiet(t, fetched, "fetch before its window")

	mock.Add(250 * time.Millisecond)
	if got := recv(t, fetched, "plant fetch"); got != last {
		t.Errorf("fetched %+v, want %+v", got, last)
	}
	recv(t, visible, "recompute after fetch")
	quiet(t, fetched, "second fetch")

	if len(loader.Plants()) != 1 {
		t.Errorf("expected merged plant, got %d", len(loader.Plants()))
	}
	if s.Moves() != 10 {
		t.Errorf("moves = %d", s.Moves())
	}
}

func TestMapSession_ReportsFetchFailure(t *testing.T) {
	mock := clock.NewMock()
	q := &mockPlantQuery{fetchFn: func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
		return nil, errors.New("timeout")
	}}
	loader := usecases.NewProgressiveLoader(q, th, mock)
	errs := make(chan error, 1)
	s := usecases.NewMapSession(context.Background(), loader, mock, usecases.SessionConfig{
		VisibleDelay: 50 * time.Millisecond,
		FetchDelay:   100 * time.Millisecond,
	}, nil, func(err error) { errs <- err })
	defer s.Close()

	s.OnViewportMove(rect(0, 0, 1, 1), 16)
	mock.Add(100 * time.Millisecond)

	err := recv(t, errs, "fetch error")
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Errorf("expected FetchError, got %v", err)
	}
}

func TestMapSession_ReloadForcesFetch(t *testing.T) {
	mock := clock.NewMock()
	fetched := make(chan struct{}, 10)
	q := &mockPlantQuery{fetchFn: func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
		fetched <- struct{}{}
		return nil, nil
	}}
	loader := usecases.NewProgressiveLoader(q, th, mock)
	s := usecases.NewMapSession(context.Background(), loader, mock, usecases.SessionConfig{}, nil, nil)
	defer s.Close()

	s.OnViewportMove(rect(0, 0, 1, 1), 15)
	mock.Add(500 * time.Millisecond)
	recv(t, fetched, "first fetch")

	s.OnViewportMove(rect(0.1, 0.1, 0.9, 0.9), 15)
	mock.Add(500 * time.Millisecond)
	quiet(t, fetched, "fetch of a cached window")

	s.Reload()
	mock.Add(500 * time.Millisecond)
	recv(t, fetched, "forced fetch")
	if s.Latest().Force {
		t.Error("force flag must be consumed by the fetch")
	}
}
