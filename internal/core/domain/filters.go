package domain

import "strings"

// FilterState mirrors the filters selected in the map UI. Empty fields mean
// "all".
type FilterState struct {
	OrganizationID string `json:"organization_id,omitempty"`
	DomainID       string `json:"domain_id,omitempty"`
	PlotID         string `json:"plot_id,omitempty"`
	Category       string `json:"category,omitempty"`
	Health         string `json:"health,omitempty"`
	Search         string `json:"search,omitempty"`
}

// IsZero reports whether no filter is active.
func (f FilterState) IsZero() bool {
	return f == FilterState{}
}

// ForcesPlots reports whether plots must load regardless of zoom.
func (f FilterState) ForcesPlots() bool {
	return f.DomainID != "" || f.PlotID != ""
}

// ForcesPlants reports whether plants must load regardless of zoom.
func (f FilterState) ForcesPlants() bool {
	return f.DomainID != "" || f.PlotID != ""
}

// MatchDomain reports whether d passes the hierarchy filters.
func (f FilterState) MatchDomain(d Domain) bool {
	if f.OrganizationID != "" && d.OrganizationID != f.OrganizationID {
		return false
	}
	return f.DomainID == "" || d.ID == f.DomainID
}

// MatchPlot reports whether p passes the hierarchy filters.
func (f FilterState) MatchPlot(p Plot) bool {
	if f.OrganizationID != "" && p.OrganizationID != f.OrganizationID {
		return false
	}
	if f.DomainID != "" && p.DomainID != f.DomainID {
		return false
	}
	return f.PlotID == "" || p.ID == f.PlotID
}

// MatchPlant reports whether p passes every filter. Search is a
// case-insensitive substring match on name, type and variety.
func (f FilterState) MatchPlant(p Plant) bool {
	if f.OrganizationID != "" && p.OrganizationID != f.OrganizationID {
		return false
	}
	if f.DomainID != "" && p.DomainID != f.DomainID {
		return false
	}
	if f.PlotID != "" && p.PlotID != f.PlotID {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.Health != "" && !strings.EqualFold(p.Health, f.Health) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Type), q) &&
			!strings.Contains(strings.ToLower(p.Variety), q) {
			return false
		}
	}
	return true
}
