package domain

import "time"

// RegionEntry records one fetched viewport window. Precision is the integer
// zoom the window was fetched at.
type RegionEntry struct {
	Bounds     ViewportBounds `json:"bounds"`
	Precision  int            `json:"precision"`
	FetchedAt  time.Time      `json:"fetched_at"`
	Superseded bool           `json:"superseded"`
}
