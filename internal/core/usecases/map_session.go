package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/pkg/debounce"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
)

const (
	DefaultVisibleDelay = 250 * time.Millisecond
	DefaultFetchDelay   = 500 * time.Millisecond
)

// SessionConfig tunes the two debounce windows of a MapSession.
type SessionConfig struct {
	VisibleDelay time.Duration
	FetchDelay   time.Duration
}

// MapSession feeds viewport moves of one map into two trailing debouncers:
// a short one that recomputes the visible set from held data and a longer
// one that asks the loader for more plants. Only the last move of a gesture
// reaches either.
type MapSession struct {
	ctx    context.Context
	loader *ProgressiveLoader

	visible *debounce.Debouncer
	fetch   *debounce.Debouncer

	onVisible func(Viewport)
	onError   func(error)

	mu     sync.Mutex
	latest Viewport
	moves  int
}

// NewMapSession creates a session. onVisible runs after every settled
// visible-set window and after each successful fetch; onError, if set,
// receives fetch failures. A nil clock uses wall time.
func NewMapSession(ctx context.Context, loader *ProgressiveLoader, clk clock.Clock, cfg SessionConfig,
	onVisible func(Viewport), onError func(error)) *MapSession {
	if cfg.VisibleDelay <= 0 {
		cfg.VisibleDelay = DefaultVisibleDelay
	}
	if cfg.FetchDelay <= 0 {
		cfg.FetchDelay = DefaultFetchDelay
	}
	if onVisible == nil {
		onVisible = func(Viewport) {}
	}
	s := &MapSession{ctx: ctx, loader: loader, onVisible: onVisible, onError: onError}
	s.visible = debounce.New(clk, cfg.VisibleDelay, s.recompute)
	s.fetch = debounce.New(clk, cfg.FetchDelay, s.settle)
	return s
}

// OnViewportMove records the latest view and restarts both windows.
func (s *MapSession) OnViewportMove(bounds domain.ViewportBounds, zoom float64) {
	s.mu.Lock()
	s.latest = Viewport{Bounds: bounds, Zoom: zoom}
	s.moves++
	s.mu.Unlock()

	s.visible.Trigger()
	s.fetch.Trigger()
}

// Reload forces a fetch of the latest viewport after the fetch window.
func (s *MapSession) Reload() {
	s.mu.Lock()
	s.latest.Force = true
	s.mu.Unlock()
	s.fetch.Trigger()
}

// Latest returns the most recent viewport.
func (s *MapSession) Latest() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Moves returns how many viewport moves have been received.
func (s *MapSession) Moves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moves
}

// Close stops both debouncers. Pending work is discarded.
func (s *MapSession) Close() {
	s.visible.Stop()
	s.fetch.Stop()
}

func (s *MapSession) recompute() {
	s.onVisible(s.Latest())
}

func (s *MapSession) settle() {
	s.mu.Lock()
	v := s.latest
	s.latest.Force = false
	s.mu.Unlock()

	if err := s.loader.OnViewportSettled(s.ctx, v); err != nil {
		logging.LoggerFromCtx(s.ctx).Warn("viewport load failed", slog.String("error", err.Error()))
		if s.onError != nil {
			s.onError(err)
		}
		return
	}
	s.onVisible(v)
}
