package postgres

import (
	"strings"
	"testing"

	"github.com/samirrijal/farmmap/internal/core/domain"
)

func TestBoundsClause(t *testing.T) {
	b := domain.ViewportBounds{SW: domain.GeoPoint{Lat: 10, Lon: 20}, NE: domain.GeoPoint{Lat: 11, Lon: 21}}
	sql, args := boundsClause("pl.location", b, 2)
	if sql != "pl.location::geometry && ST_MakeEnvelope($2, $3, $4, $5, 4326)" {
		t.Errorf("unexpected clause %q", sql)
	}
	want := []any{20.0, 10.0, 21.0, 11.0}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args = %v, want %v", args, want)
			break
		}
	}
}

func TestBoundsClause_Antimeridian(t *testing.T) {
	b := domain.ViewportBounds{SW: domain.GeoPoint{Lat: -5, Lon: 170}, NE: domain.GeoPoint{Lat: 5, Lon: -170}}
	sql, args := boundsClause("loc", b, 1)
	if !strings.Contains(sql, " OR ") || !strings.Contains(sql, "$8") {
		t.Errorf("expected two envelopes, got %q", sql)
	}
	if len(args) != 8 || args[2] != 180.0 || args[4] != -180.0 {
		t.Errorf("unexpected args %v", args)
	}
}

func TestPoint(t *testing.T) {
	lat, lon := 12.5, 78.1
	if point(&lat, nil) != nil {
		t.Error("half a coordinate must yield no point")
	}
	if p := point(&lat, &lon); p == nil || p.Lat != lat || p.Lon != lon {
		t.Errorf("point() = %v", p)
	}
}
