package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/facebookgo/clock"
	"github.com/spf13/cobra"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/ports"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

// traceStep is one line of a replay trace. A step either moves the viewport,
// replaces the filters or forces a reload.
type traceStep struct {
	AtMs    int64               `json:"at_ms"`
	SW      *domain.GeoPoint    `json:"sw,omitempty"`
	NE      *domain.GeoPoint    `json:"ne,omitempty"`
	Zoom    float64             `json:"zoom,omitempty"`
	Filters *domain.FilterState `json:"filters,omitempty"`
	Reload  bool                `json:"reload,omitempty"`
}

func (s traceStep) at() time.Duration { return time.Duration(s.AtMs) * time.Millisecond }

func parseTrace(r io.Reader) ([]traceStep, error) {
	var steps []traceStep
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 || b[0] == '#' {
			continue
		}
		var s traceStep
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if (s.SW == nil) != (s.NE == nil) {
			return nil, fmt.Errorf("line %d: sw and ne must be given together", line)
		}
		if s.SW != nil {
			b := domain.ViewportBounds{SW: *s.SW, NE: *s.NE}
			if err := b.Validate(); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		steps = append(steps, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].AtMs < steps[j].AtMs })
	return steps, nil
}

// replayStats summarises a replay.
type replayStats struct {
	Moves      int `json:"moves"`
	Recomputes int `json:"recomputes"`
	Errors     int `json:"errors"`
	Plants     int `json:"plants_held"`
	Regions    int `json:"regions_cached"`
}

// replay drives a MapSession through steps on virtual time and returns what
// happened. The query runs synchronously inside the fetch window.
func replay(cmd *cobra.Command, query ports.PlantQueryFunc, steps []traceStep, thresholds domain.ZoomThresholds, cfg usecases.SessionConfig) (replayStats, error) {
	var stats replayStats
	mock := clock.NewMock()
	loader := usecases.NewProgressiveLoader(query, thresholds, mock)

	events := make(chan string, 64)
	session := usecases.NewMapSession(cmd.Context(), loader, mock, cfg,
		func(v usecases.Viewport) {
			events <- fmt.Sprintf("visible  zoom=%.1f %v..%v", v.Zoom, v.Bounds.SW, v.Bounds.NE)
		},
		func(err error) { events <- "error    " + err.Error() },
	)
	defer session.Close()

	out := cmd.OutOrStdout()
	start := mock.Now()
	// drain prints session events until the session has been quiet for a
	// moment and no fetch is in flight.
	drain := func() {
		for {
			select {
			case ev := <-events:
				if ev[0] == 'e' {
					stats.Errors++
				} else {
					stats.Recomputes++
				}
				fmt.Fprintf(out, "%8s  %s\n", mock.Now().Sub(start), ev)
			case <-time.After(50 * time.Millisecond):
				if !loader.State().PlantsLoading {
					return
				}
			}
		}
	}

	for _, s := range steps {
		if d := start.Add(s.at()).Sub(mock.Now()); d > 0 {
			mock.Add(d)
			drain()
		}
		switch {
		case s.Filters != nil:
			loader.SetFilters(*s.Filters)
		case s.Reload:
			session.Reload()
		case s.SW != nil:
			session.OnViewportMove(domain.ViewportBounds{SW: *s.SW, NE: *s.NE}, s.Zoom)
			stats.Moves++
		}
		if err := cmd.Context().Err(); err != nil {
			return stats, err
		}
	}

	// Let both windows close after the last step.
	mock.Add(cfg.VisibleDelay + cfg.FetchDelay)
	drain()

	stats.Plants = len(loader.Plants())
	stats.Regions = loader.State().Plants.Len()
	return stats, nil
}

func replayCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace.jsonl>",
		Short: "Replay a recorded map session against the API",
		Long: `Replay feeds a JSONL trace of viewport moves through a map session
with the configured debounce windows, fetching plants from the API. Each line
holds at_ms and either sw/ne/zoom, filters, or reload.`,
		Example: `  {"at_ms":0,"sw":{"lat":12.68,"lon":78.05},"ne":{"lat":12.69,"lon":78.06},"zoom":15.2}
  {"at_ms":120,"sw":{"lat":12.681,"lon":78.05},"ne":{"lat":12.691,"lon":78.06},"zoom":15.4}
  {"at_ms":2000,"reload":true}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			steps, err := parseTrace(f)
			if err != nil {
				return err
			}

			cfg := usecases.SessionConfig{
				VisibleDelay: opts.cfg.Map.VisibleDebounce,
				FetchDelay:   opts.cfg.Map.FetchDebounce,
			}
			if cfg.VisibleDelay <= 0 {
				cfg.VisibleDelay = usecases.DefaultVisibleDelay
			}
			if cfg.FetchDelay <= 0 {
				cfg.FetchDelay = usecases.DefaultFetchDelay
			}

			stats, err := replay(cmd, opts.client().FetchPlants, steps, opts.cfg.Map.Zoom, cfg)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}
