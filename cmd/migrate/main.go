package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/farmmap/internal/adapters/postgres"
	"github.com/samirrijal/farmmap/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|seed <farm.json>>")
	}

	cfg, err := config.Load("farmmap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		runMigrations(ctx, pool, upMigrations()...)
	case "down":
		runMigrations(ctx, pool, filepath.Join(migrationsDir, dropMigration))
	case "seed":
		if len(os.Args) < 3 {
			log.Fatal("usage: migrate seed <farm.json>")
		}
		seed(ctx, &postgres.DB{Pool: pool}, os.Args[2])
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

const (
	migrationsDir = "migrations"
	dropMigration = "000_drop.sql"
)

// upMigrations lists migrations/*.sql in lexical order, skipping the drop script.
func upMigrations() []string {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	sort.Strings(files)
	up := files[:0]
	for _, f := range files {
		if filepath.Base(f) != dropMigration {
			up = append(up, f)
		}
	}
	if len(up) == 0 {
		log.Fatalf("no migrations found in %s", migrationsDir)
	}
	return up
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, files ...string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		_, err = pool.Exec(ctx, string(data))
		if err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

func seed(ctx context.Context, db *postgres.DB, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}

	var farm postgres.FarmSeed
	if err := json.Unmarshal(data, &farm); err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	n, err := db.Seed(ctx, farm)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Printf("seeded %q: %d domains, %d plots, %d plants\n", farm.Organization, n.Domains, n.Plots, n.Plants)
}
