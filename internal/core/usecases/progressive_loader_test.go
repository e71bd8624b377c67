package usecases_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facebookgo/clock"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

func plant(id string, lat, lon float64) domain.Plant {
	return domain.Plant{ID: id, Name: "Plant " + id, Location: domain.NewPoint(lat, lon)}
}

func plantIDs(ps []domain.Plant) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestMergeByID(t *testing.T) {
	held := []domain.Plant{plant("a", 0, 0), plant("b", 0, 0)}
	incoming := []domain.Plant{plant("b", 1, 1), plant("c", 0, 0), plant("c", 2, 2)}

	got := usecases.MergeByID(held, incoming)
	ids := plantIDs(got)
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Fatalf("unexpected merge %v", ids)
	}
	if got[1].Location.Lat != 0 {
		t.Error("held entry must not be replaced by a duplicate")
	}
	if got[2].Location.Lat != 0 {
		t.Error("first incoming occurrence wins")
	}
}

func TestProgressiveLoader_OverlappingWindowsNoDuplicates(t *testing.T) {
	calls := 0
	q := &mockPlantQuery{fetchFn: func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
		calls++
		if b == nil {
			t.Fatal("viewport fetch must be bounded")
		}
		if calls == 1 {
			return []domain.Plant{plant("p1", 12.65, 78.05), plant("p2", 12.66, 78.06)}, nil
		}
		return []domain.Plant{plant("p2", 12.66, 78.06), plant("p3", 12.75, 78.15)}, nil
	}}
	l := usecases.NewProgressiveLoader(q, th, clock.NewMock())
	ctx := context.Background()

	if err := l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(12.6, 78.0, 12.7, 78.1), Zoom: 15}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(12.65, 78.05, 12.8, 78.2), Zoom: 15}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 2 {
		t.Errorf("expected 2 fetches, got %d", calls)
	}
	ids := plantIDs(l.Plants())
	if len(ids) != 3 {
		t.Errorf("expected 3 distinct plants, got %v", ids)
	}
	if l.State().PlantsLoading {
		t.Error("loading flag must be cleared after the fetch")
	}
}

func TestProgressiveLoader_CachedWindowSkipsFetch(t *testing.T) {
	var calls int32
	q := &mockPlantQuery{fetchFn: func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}}
	l := usecases.NewProgressiveLoader(q, th, nil)
	ctx := context.Background()

	_ = l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(0, 0, 1, 1), Zoom: 15})
	_ = l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(0.2, 0.2, 0.8, 0.8), Zoom: 15.5})
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 fetch, got %d", n)
	}
}

func TestProgressiveLoader_FailureKeepsHeldData(t *testing.T) {
	fail := false
	q := &mockPlantQuery{fetchFn: func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
		if fail {
			return nil, errors.New("503 service unavailable")
		}
		return []domain.Plant{plant("p1", 0.5, 0.5)}, nil
	}}
	l := usecases.NewProgressiveLoader(q, th, nil)
	ctx := context.Background()

	if err := l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(0, 0, 1, 1), Zoom: 15}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := l.State().Plants.Entries()

	fail = true
	err := l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(5, 5, 6, 6), Zoom: 15})
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Bounds != rect(5, 5, 6, 6) {
		t.Errorf("unexpected bounds in error: %+v", fe.Bounds)
	}
	if !errors.Is(l.LastError(), fe.Err) {
		t.Errorf("LastError = %v", l.LastError())
	}

	if ids := plantIDs(l.Plants()); len(ids) != 1 || ids[0] != "p1" {
		t.Errorf("held plants changed: %v", ids)
	}
	after := l.State().Plants.Entries()
	if len(after) != len(before) || after[0].Bounds != before[0].Bounds {
		t.Errorf("region cache changed on failure: %+v", after)
	}
	if l.State().PlantsLoading {
		t.Error("loading flag must be cleared after a failed fetch")
	}

	// The next viewport change retries.
	fail = false
	if err := l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(5, 5, 6, 6), Zoom: 15}); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if l.LastError() != nil {
		t.Error("successful fetch must clear the last error")
	}
}

func TestProgressiveLoader_DropsConcurrentTrigger(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls int32
	q := &mockPlantQuery{fetchFn: func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
		atomic.AddInt32(&calls, 1)
		started <- struct{}{}
		<-release
		return []domain.Plant{plant("p1", 0.5, 0.5)}, nil
	}}
	l := usecases.NewProgressiveLoader(q, th, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(0, 0, 1, 1), Zoom: 15})
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("fetch did not start")
	}

	if err := l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(10, 10, 11, 11), Zoom: 15}); err != nil {
		t.Fatalf("dropped trigger must not fail: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected the concurrent trigger to be dropped, got %d fetches", n)
	}
}

func TestProgressiveLoader_ZoomOutEvictsPlants(t *testing.T) {
	q := &mockPlantQuery{fetchFn: func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
		return []domain.Plant{plant("p1", 0.5, 0.5)}, nil
	}}
	l := usecases.NewProgressiveLoader(q, th, nil)
	ctx := context.Background()

	_ = l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(0, 0, 1, 1), Zoom: 15})
	if len(l.Plants()) != 1 {
		t.Fatal("expected held plants")
	}

	_ = l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(0, 0, 1, 1), Zoom: 13})
	if len(l.Plants()) != 0 {
		t.Error("plants must be evicted below the plant threshold")
	}
	if l.State().Plants.Len() != 0 {
		t.Error("plant cache must be invalidated")
	}
}

func TestProgressiveLoader_FilterChangeInvalidates(t *testing.T) {
	var calls int32
	q := &mockPlantQuery{fetchFn: func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}}
	l := usecases.NewProgressiveLoader(q, th, nil)
	ctx := context.Background()
	v := usecases.Viewport{Bounds: rect(0, 0, 1, 1), Zoom: 15}

	_ = l.OnViewportSettled(ctx, v)
	l.SetFilters(domain.FilterState{Category: "fruit"})
	_ = l.OnViewportSettled(ctx, v)
	l.SetFilters(domain.FilterState{Category: "fruit"})
	_ = l.OnViewportSettled(ctx, v)

	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected 2 fetches, got %d", n)
	}
	if l.Filters().Category != "fruit" {
		t.Errorf("unexpected filters %+v", l.Filters())
	}
}

// blockingQuery returns a query whose first fetch waits for release.
func blockingQuery(started chan<- struct{}, release <-chan struct{}) *mockPlantQuery {
	var calls int32
	return &mockPlantQuery{fetchFn: func(ctx context.Context, b *domain.ViewportBounds) ([]domain.Plant, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			started <- struct{}{}
			<-release
		}
		return []domain.Plant{plant("p1", 0.5, 0.5)}, nil
	}}
}

func TestProgressiveLoader_EvictionDiscardsInFlightFetch(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	l := usecases.NewProgressiveLoader(blockingQuery(started, release), th, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(0, 0, 1, 1), Zoom: 16})
	}()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("fetch did not start")
	}

	if err := l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(0, 0, 1, 1), Zoom: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(l.Plants()); n != 0 {
		t.Errorf("held plants = %d, want 0 after zoom-out", n)
	}
	st := l.State()
	if st.Plants.Len() != 0 {
		t.Errorf("region cache has %d entries, want 0", st.Plants.Len())
	}
	if st.PlantsLoading {
		t.Error("loading flag must be cleared by a discarded fetch")
	}

	// Zooming back in fetches again.
	if err := l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(0, 0, 1, 1), Zoom: 16}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(l.Plants()); n != 1 {
		t.Errorf("held plants = %d after refetch, want 1", n)
	}
}

func TestProgressiveLoader_FilterChangeDiscardsInFlightFetch(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	l := usecases.NewProgressiveLoader(blockingQuery(started, release), th, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- l.OnViewportSettled(ctx, usecases.Viewport{Bounds: rect(0, 0, 1, 1), Zoom: 16})
	}()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("fetch did not start")
	}

	l.SetFilters(domain.FilterState{Health: "poor"})
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(l.Plants()); n != 0 {
		t.Errorf("held plants = %d, want 0: the result predates the filter", n)
	}
	if l.State().Plants.Len() != 0 {
		t.Error("stale window must not be recorded")
	}
}
