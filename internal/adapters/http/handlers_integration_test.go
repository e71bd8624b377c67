//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	handler "github.com/samirrijal/farmmap/internal/adapters/http"
	"github.com/samirrijal/farmmap/internal/adapters/postgres"
	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/usecases"
	"github.com/samirrijal/farmmap/internal/pkg/config"
)

// setupTestDB connects to the test database migrated by cmd/migrate.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("farmmap-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}
	return &postgres.DB{Pool: pool}
}

// setupTestDeps creates dependencies with real repos and no cache.
func setupTestDeps(db *postgres.DB) *handler.Dependencies {
	domains := postgres.NewDomainRepo(db)
	plots := postgres.NewPlotRepo(db)
	plants := postgres.NewPlantRepo(db)

	return &handler.Dependencies{
		Domains:    usecases.NewDomainService(domains, nil),
		Plots:      usecases.NewPlotService(plots, nil),
		Plants:     usecases.NewPlantService(plants, nil, 0),
		Map:        usecases.NewMapService(domains, plots, plants, domain.DefaultZoomThresholds, nil, 0),
		Validation: usecases.NewValidationService(domains, plots, nil),
		DB:         db,
	}
}

// seedFarm inserts one organization with a domain at the Phase 1 center, a
// plot next to it and a plant inside the plot. It returns the domain and plot
// ids.
func seedFarm(t *testing.T, db *postgres.DB, suffix string) (string, string) {
	ctx := context.Background()
	c := domain.Phase1Center

	var orgID, domainID, plotID string
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO organizations (name) VALUES ($1) RETURNING id
	`, "Test Org "+suffix).Scan(&orgID); err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO domains (organization_id, name, location)
		VALUES ($1, $2, ST_Point($3, $4, 4326)::geography)
		RETURNING id
	`, orgID, "Domain "+suffix, c.Lon, c.Lat).Scan(&domainID); err != nil {
		t.Fatalf("seed domain: %v", err)
	}
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO plots (domain_id, name, location, area_sq_ft)
		VALUES ($1, $2, ST_Point($3, $4, 4326)::geography, 10000)
		RETURNING id
	`, domainID, "Plot "+suffix, c.Lon, c.Lat).Scan(&plotID); err != nil {
		t.Fatalf("seed plot: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO plants (plot_id, name, category, location)
		VALUES ($1, $2, 'fruit', ST_Point($3, $4, 4326)::geography)
	`, plotID, "Mango "+suffix, c.Lon+0.0001, c.Lat+0.0001); err != nil {
		t.Fatalf("seed plant: %v", err)
	}
	return domainID, plotID
}

func suffix() string { return time.Now().Format("20060102150405.000") }

// TestGetDomain_Integration tests domain lookup against a real database.
func TestGetDomain_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	domainID, _ := seedFarm(t, db, suffix())
	app := setupApp(setupTestDeps(db))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/domains/"+domainID, nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var d domain.Domain
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if d.ID != domainID || d.Location == nil {
		t.Errorf("unexpected domain %+v", d)
	}
}

// TestMapview_Integration tests the bounding-box query against PostGIS.
func TestMapview_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	seedFarm(t, db, suffix())
	app := setupApp(setupTestDeps(db))

	c := domain.Phase1Center
	url := fmt.Sprintf("/v1/plants/mapview?swLng=%f&swLat=%f&neLng=%f&neLat=%f",
		c.Lon-0.01, c.Lat-0.01, c.Lon+0.01, c.Lat+0.01)
	resp, err := app.Test(httptest.NewRequest("GET", url, nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out handler.MapviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Total == 0 {
		t.Error("expected at least 1 plant in bounds, got 0")
	}
}

// TestValidatePlant_Integration resolves the plot center from storage.
func TestValidatePlant_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	_, plotID := seedFarm(t, db, suffix())
	svc := usecases.NewValidationService(postgres.NewDomainRepo(db), postgres.NewPlotRepo(db), nil)

	res, err := svc.Validate(context.Background(), usecases.ValidateRequest{
		Level:     domain.LevelPlant,
		PlotID:    plotID,
		Candidate: domain.GeoPoint{Lat: domain.Phase1Center.Lat + 0.01, Lon: domain.Phase1Center.Lon},
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Outcome != domain.OutcomeRejected {
		t.Errorf("expected ≈1.1 km plant to be rejected, got %+v", res)
	}
}
