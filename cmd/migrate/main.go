package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"messagely/config"
	"messagely/pkg/database"
)

const usage = `
Messagely - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Apply all pending migrations
  down        Roll back every migration
  status      Show which migrations have been applied
  reset       Roll back and re-apply every migration (DANGEROUS)
  seed        Seed development users and messages
  truncate    Truncate all tables (DANGEROUS)

Examples:
  go run ./cmd/migrate up
  go run ./cmd/migrate status
  go run ./cmd/migrate seed
`

func main() {
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	ctx := context.Background()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		log.Println("Running migrations UP...")
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully!")
	case "down":
		log.Println("Rolling back migrations...")
		if err := database.Rollback(ctx, db); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Println("Rollback completed successfully!")
	case "status":
		if err := database.Status(ctx, db); err != nil {
			log.Fatalf("Status failed: %v", err)
		}
	case "reset":
		log.Println("WARNING: rolling back and re-applying every migration")
		if err := database.Reset(ctx, db); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		log.Println("Database reset completed!")
	case "seed":
		seedCfg := database.DefaultSeedConfig()
		seedCfg.WorkFactor = cfg.BcryptWorkFactor
		result, err := database.Seed(ctx, db, seedCfg)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Printf("Seed summary: created users %v, skipped users %v, messages %d",
			result.CreatedUsers, result.SkippedUsers, result.Messages)
	case "truncate":
		log.Println("WARNING: truncating all tables")
		if err := database.Truncate(ctx, db); err != nil {
			log.Fatalf("Truncate failed: %v", err)
		}
		log.Println("All tables truncated!")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
