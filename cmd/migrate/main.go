// Package main provides the schema and sequence maintenance CLI.
// Usage: migrate schema
//
//	migrate sync-sequences
//	migrate seed-sequence --prefix FA --year 2025 --value 120
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"custody/internal/config"
	corenumerator "custody/internal/core/numerator"
	"custody/internal/infrastructure/numerator"
	"custody/internal/infrastructure/storage/postgres"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "schema":
		applySchema(ctx)
	case "sync-sequences":
		syncSequences(ctx)
	case "seed-sequence":
		seedSequence(ctx)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Invoice schema & sequence CLI

Usage:
  migrate <command> [options]

Commands:
  schema          Apply the embedded schema (idempotent)
  sync-sequences  Raise every counter to the highest number already issued
  seed-sequence   Raise one counter to at least --value
  help            Show this help

Environment Variables:
  DATABASE_URL    Connection string (required)

Examples:
  migrate schema
  migrate sync-sequences
  migrate seed-sequence --prefix FA --year 2025 --value 120`)
}

func getPool(ctx context.Context) *postgres.Pool {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MinConns = 1
	poolCfg.MaxConns = 2

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	return pool
}

func applySchema(ctx context.Context) {
	pool := getPool(ctx)
	defer pool.Close()

	fmt.Println("Applying schema...")
	if err := postgres.Migrate(ctx, pool); err != nil {
		fmt.Printf("Error applying schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Schema is up to date")
}

func syncSequences(ctx context.Context) {
	pool := getPool(ctx)
	defer pool.Close()

	n, err := numerator.New(pool).SyncFromInvoices(ctx)
	if err != nil {
		fmt.Printf("Error syncing sequences: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Synced %d sequence(s)\n", n)
}

func seedSequence(ctx context.Context) {
	var (
		prefix string
		year   int
		value  int64
		err    error
	)

	// Parse arguments
	for i := 2; i < len(os.Args); i++ {
		if i+1 >= len(os.Args) {
			break
		}
		switch os.Args[i] {
		case "--prefix":
			prefix = os.Args[i+1]
			i++
		case "--year":
			if year, err = strconv.Atoi(os.Args[i+1]); err != nil {
				fmt.Printf("Error: invalid --year %q\n", os.Args[i+1])
				os.Exit(1)
			}
			i++
		case "--value":
			if value, err = strconv.ParseInt(os.Args[i+1], 10, 64); err != nil {
				fmt.Printf("Error: invalid --value %q\n", os.Args[i+1])
				os.Exit(1)
			}
			i++
		}
	}

	if prefix == "" || year == 0 || value == 0 {
		fmt.Println("Error: --prefix, --year and --value are required")
		fmt.Println("Usage: migrate seed-sequence --prefix FA --year 2025 --value 120")
		os.Exit(1)
	}

	pool := getPool(ctx)
	defer pool.Close()

	key := corenumerator.Key{Prefix: prefix, Year: year}
	current, err := numerator.New(pool).Seed(ctx, key, value)
	if err != nil {
		fmt.Printf("Error seeding %s: %v\n", key, err)
		os.Exit(1)
	}
	fmt.Printf("Sequence %s is now at %d\n", key, current)
}
