package usecases

import (
	"fmt"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

// Viewport is a settled map view.
type Viewport struct {
	Bounds domain.ViewportBounds `json:"bounds"`
	Zoom   float64               `json:"zoom"`
	// Force bypasses the region cache, e.g. on an explicit reload.
	Force bool `json:"force,omitempty"`
}

// ProgressiveLoadState is everything the progressive loader knows about what
// has been loaded. It is a value: PlanViewport returns a new one.
type ProgressiveLoadState struct {
	PlotsReady    bool
	Plants        RegionCache
	PlantsLoading bool
	// Generation advances whenever held plants stop being valid (eviction or
	// a filter change). A fetch started under an older generation is stale.
	Generation uint64
}

// EffectKind names a side effect requested by PlanViewport.
type EffectKind int

const (
	// EffectEvictPlots hides plots; they stay resident with the CRUD layer.
	EffectEvictPlots EffectKind = iota
	// EffectEvictPlants clears the held plant set.
	EffectEvictPlants
	// EffectFetchPlants requests plants inside Bounds.
	EffectFetchPlants
	// EffectFetchDropped reports a fetch skipped because one is in flight.
	EffectFetchDropped
)

func (k EffectKind) String() string {
	switch k {
	case EffectEvictPlots:
		return "evict_plots"
	case EffectEvictPlants:
		return "evict_plants"
	case EffectFetchPlants:
		return "fetch_plants"
	case EffectFetchDropped:
		return "fetch_dropped"
	}
	return fmt.Sprintf("effect(%d)", int(k))
}

// LoadEffect is a side effect the caller must carry out.
type LoadEffect struct {
	Kind       EffectKind
	Bounds     domain.ViewportBounds
	Precision  int
	Generation uint64
}

// PlanViewport decides what a settled viewport requires. It does no I/O; the
// returned state already has PlantsLoading set when a fetch is requested, and
// the executor must clear it when the fetch ends.
func PlanViewport(s ProgressiveLoadState, v Viewport, filters domain.FilterState, th domain.ZoomThresholds) (ProgressiveLoadState, []LoadEffect) {
	var effects []LoadEffect
	precision := PrecisionForZoom(v.Zoom)

	switch {
	case v.Zoom < th.ShowPlots && !filters.ForcesPlots():
		if s.PlotsReady {
			effects = append(effects, LoadEffect{Kind: EffectEvictPlots})
		}
		s.PlotsReady = false
	default:
		s.PlotsReady = true
	}

	plantsWanted := v.Zoom >= th.ShowPlants || filters.ForcesPlants()
	if plantsWanted {
		if s.Plants.ShouldFetch(v.Bounds, precision, v.Force) {
			if s.PlantsLoading {
				effects = append(effects, LoadEffect{Kind: EffectFetchDropped, Bounds: v.Bounds, Precision: precision})
			} else {
				s.PlantsLoading = true
				effects = append(effects, LoadEffect{Kind: EffectFetchPlants, Bounds: v.Bounds, Precision: precision, Generation: s.Generation})
			}
		}
	} else {
		s.Plants = s.Plants.Invalidate()
		s.Generation++
		effects = append(effects, LoadEffect{Kind: EffectEvictPlants, Generation: s.Generation})
	}

	return s, effects
}
