// cmd/tools/template-seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"proposal-workers/internal/common/config"
	"proposal-workers/internal/common/database"
	"proposal-workers/internal/common/remedystore"
)

const pricingCacheDDL = `
CREATE TABLE IF NOT EXISTS regional_pricing_cache (
	id         BIGSERIAL PRIMARY KEY,
	trade_id   TEXT        NOT NULL,
	zipcode    TEXT        NOT NULL,
	payload    JSONB       NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_regional_pricing_cache_lookup
	ON regional_pricing_cache (trade_id, zipcode, expires_at, fetched_at DESC);
`

const remedyTemplatesDDL = `
CREATE TABLE IF NOT EXISTS remedy_scope_templates (
	id         BIGSERIAL PRIMARY KEY,
	issue_type TEXT NOT NULL,
	remedy     TEXT NOT NULL,
	item       TEXT NOT NULL,
	position   INT  NOT NULL,
	UNIQUE (issue_type, remedy, position)
);
`

func main() {
	dryRun := flag.Bool("dry-run", false, "print what would be seeded without writing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		printPlan()
		return
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := pg.Ping(ctx); err != nil {
		fmt.Printf("Error pinging postgres: %v\n", err)
		os.Exit(1)
	}

	for _, ddl := range []string{pricingCacheDDL, remedyTemplatesDDL} {
		if _, err := pg.DB.ExecContext(ctx, ddl); err != nil {
			fmt.Printf("Error creating tables: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Println("Tables ensured: regional_pricing_cache, remedy_scope_templates")

	seeded, err := seedTemplates(ctx, pg)
	if err != nil {
		fmt.Printf("Error seeding templates: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d remedy scope template rows\n", seeded)
}

func seedTemplates(ctx context.Context, pg *database.PostgresClient) (int, error) {
	templates := remedystore.BuiltinTemplates()

	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	total := 0
	for _, key := range keys {
		parts := strings.SplitN(key, ":", 2)
		issueType, remedy := parts[0], parts[1]

		for position, item := range templates[key] {
			_, err := pg.DB.ExecContext(ctx, `
				INSERT INTO remedy_scope_templates (issue_type, remedy, item, position)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (issue_type, remedy, position) DO UPDATE SET item = EXCLUDED.item`,
				issueType, remedy, item, position)
			if err != nil {
				return total, fmt.Errorf("insert %s/%s position %d: %w", issueType, remedy, position, err)
			}
			total++
		}
	}
	return total, nil
}

func printPlan() {
	templates := remedystore.BuiltinTemplates()

	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Println("Would ensure tables: regional_pricing_cache, remedy_scope_templates")
	for _, key := range keys {
		fmt.Printf("  %s: %d items\n", key, len(templates[key]))
	}
}
