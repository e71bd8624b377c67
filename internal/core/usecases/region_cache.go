package usecases

import (
	"math"
	"time"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/pkg/geospatial"
)

// regionHistory bounds how many superseded windows are kept for inspection.
const regionHistory = 16

// PrecisionForZoom maps a fractional map zoom to a cache precision level.
func PrecisionForZoom(zoom float64) int {
	return int(math.Floor(zoom))
}

// RegionCache remembers which viewport windows of one entity class have been
// fetched. Only the most recent window answers ShouldFetch; older ones are
// kept as superseded history. The zero value is an empty cache. Methods never
// mutate a backing array shared with a copy, so RegionCache values can be
// passed around freely.
type RegionCache struct {
	entries []domain.RegionEntry
}

// ShouldFetch reports whether requested needs a fetch at precision. It is
// false only when the latest window contains requested and was fetched at the
// same or a higher precision.
func (c RegionCache) ShouldFetch(requested domain.ViewportBounds, precision int, force bool) bool {
	if force {
		return true
	}
	latest, ok := c.Latest()
	if !ok {
		return true
	}
	if latest.Precision < precision {
		return true
	}
	return !geospatial.Contains(latest.Bounds, requested)
}

// Record returns a cache whose latest window is b. Earlier windows contained
// in b are marked superseded.
func (c RegionCache) Record(b domain.ViewportBounds, precision int, at time.Time) RegionCache {
	start := 0
	if len(c.entries) >= regionHistory {
		start = len(c.entries) - regionHistory + 1
	}
	entries := make([]domain.RegionEntry, 0, len(c.entries)-start+1)
	for _, e := range c.entries[start:] {
		if geospatial.Contains(b, e.Bounds) {
			e.Superseded = true
		}
		entries = append(entries, e)
	}
	entries = append(entries, domain.RegionEntry{Bounds: b, Precision: precision, FetchedAt: at})
	return RegionCache{entries: entries}
}

// Invalidate drops every window.
func (c RegionCache) Invalidate() RegionCache {
	return RegionCache{}
}

// Latest returns the most recently recorded window.
func (c RegionCache) Latest() (domain.RegionEntry, bool) {
	if len(c.entries) == 0 {
		return domain.RegionEntry{}, false
	}
	return c.entries[len(c.entries)-1], true
}

// Entries returns a copy of the recorded windows, oldest first.
func (c RegionCache) Entries() []domain.RegionEntry {
	return append([]domain.RegionEntry(nil), c.entries...)
}

// Len returns the number of recorded windows.
func (c RegionCache) Len() int { return len(c.entries) }
