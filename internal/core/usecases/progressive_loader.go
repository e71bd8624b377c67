package usecases

import (
	"context"
	"log/slog"
	"sync"

	"github.com/facebookgo/clock"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
	"github.com/samirrijal/farmmap/internal/pkg/metrics"
	"github.com/samirrijal/farmmap/internal/pkg/telemetry"
)

// MergeByID appends the incoming items whose id is not already held. Held
// items keep their position; incoming duplicates are dropped.
func MergeByID[T domain.IDer](held, incoming []T) []T {
	existing := make(map[string]struct{}, len(held))
	for _, h := range held {
		existing[h.GetID()] = struct{}{}
	}
	out := held
	for _, item := range incoming {
		id := item.GetID()
		if _, ok := existing[id]; ok {
			continue
		}
		existing[id] = struct{}{}
		out = append(out, item)
	}
	return out
}

// ProgressiveLoader holds the plants fetched for the viewports a user has
// visited and decides, per settled viewport, whether more are needed. At most
// one plant fetch is in flight; triggers arriving meanwhile are dropped.
type ProgressiveLoader struct {
	query      ports.PlantQuery
	thresholds domain.ZoomThresholds
	clock      clock.Clock

	mu      sync.Mutex
	state   ProgressiveLoadState
	filters domain.FilterState
	plants  []domain.Plant
	lastErr error
}

// NewProgressiveLoader creates a loader. A nil clock uses wall time.
func NewProgressiveLoader(query ports.PlantQuery, thresholds domain.ZoomThresholds, clk clock.Clock) *ProgressiveLoader {
	if clk == nil {
		clk = clock.New()
	}
	return &ProgressiveLoader{query: query, thresholds: thresholds, clock: clk}
}

// OnViewportSettled plans and carries out the loading required by v. It
// blocks for the duration of a plant fetch. A fetch whose result arrives after
// an eviction or filter change is discarded. The returned error is a
// *domain.FetchError; held data is unchanged when it occurs.
func (l *ProgressiveLoader) OnViewportSettled(ctx context.Context, v Viewport) error {
	log := logging.LoggerFromCtx(ctx)

	l.mu.Lock()
	next, effects := PlanViewport(l.state, v, l.filters, l.thresholds)
	l.state = next
	l.mu.Unlock()

	var err error
	for _, eff := range effects {
		switch eff.Kind {
		case EffectEvictPlots:
			log.Debug("plots hidden", slog.Float64("zoom", v.Zoom))
		case EffectEvictPlants:
			l.mu.Lock()
			n := len(l.plants)
			l.plants = nil
			l.mu.Unlock()
			if n > 0 {
				log.Debug("plants evicted", slog.Int("count", n), slog.Float64("zoom", v.Zoom))
			}
		case EffectFetchDropped:
			metrics.PlantFetches.WithLabelValues("dropped").Inc()
			log.Debug("plant fetch dropped, one already in flight")
		case EffectFetchPlants:
			err = l.fetch(ctx, eff)
		}
	}
	return err
}

func (l *ProgressiveLoader) fetch(ctx context.Context, eff LoadEffect) error {
	log := logging.LoggerFromCtx(ctx)
	defer func() {
		l.mu.Lock()
		l.state.PlantsLoading = false
		l.mu.Unlock()
	}()

	ctx, span := telemetry.Start(ctx, telemetry.SpanPlantFetch)
	start := l.clock.Now()
	bounds := eff.Bounds
	plants, fetchErr := l.query.FetchPlants(ctx, &bounds)
	metrics.PlantFetchDuration.Observe(l.clock.Now().Sub(start).Seconds())
	telemetry.End(span, fetchErr)

	l.mu.Lock()
	defer l.mu.Unlock()
	if fetchErr != nil {
		metrics.PlantFetches.WithLabelValues("error").Inc()
		l.lastErr = &domain.FetchError{Bounds: eff.Bounds, Err: fetchErr}
		log.Error("plant fetch failed",
			slog.String("bounds", eff.Bounds.SW.String()+".."+eff.Bounds.NE.String()),
			slog.String("error", fetchErr.Error()),
		)
		return l.lastErr
	}

	if l.state.Generation != eff.Generation {
		metrics.PlantFetches.WithLabelValues("stale").Inc()
		log.Debug("stale plant fetch discarded",
			slog.Int("received", len(plants)),
			slog.Uint64("fetch_generation", eff.Generation),
			slog.Uint64("generation", l.state.Generation),
		)
		return nil
	}

	metrics.PlantFetches.WithLabelValues("ok").Inc()
	before := len(l.plants)
	l.plants = MergeByID(l.plants, plants)
	l.state.Plants = l.state.Plants.Record(eff.Bounds, eff.Precision, l.clock.Now())
	l.lastErr = nil
	log.Debug("plants merged",
		slog.Int("received", len(plants)),
		slog.Int("added", len(l.plants)-before),
		slog.Int("held", len(l.plants)),
	)
	return nil
}

// SetFilters replaces the active filters. A change in filters invalidates the
// plant cache so the next settle refetches, and discards the result of any
// fetch still in flight.
func (l *ProgressiveLoader) SetFilters(f domain.FilterState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if f == l.filters {
		return
	}
	l.filters = f
	l.state.Plants = l.state.Plants.Invalidate()
	l.state.Generation++
}

// Filters returns the active filters.
func (l *ProgressiveLoader) Filters() domain.FilterState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filters
}

// Plants returns a copy of the held plants.
func (l *ProgressiveLoader) Plants() []domain.Plant {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Plant(nil), l.plants...)
}

// State returns the current load state.
func (l *ProgressiveLoader) State() ProgressiveLoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LastError returns the error of the most recent fetch, or nil if it
// succeeded.
func (l *ProgressiveLoader) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}
