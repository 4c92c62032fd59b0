package main

import (
	"log"
	"os"

	"tumaini-be/internal/model"
	"tumaini-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions & Enums
	log.Println("Step 1: Setting up Extensions and Enums...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,

		// Enums (Idempotent creation)
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'donation_status') THEN CREATE TYPE donation_status AS ENUM ('pending', 'completed', 'failed', 'refunded'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payment_method') THEN CREATE TYPE payment_method AS ENUM ('snap', 'mpesa', 'bank'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'pledge_status') THEN CREATE TYPE pledge_status AS ENUM ('active', 'paused', 'cancelled'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'pledge_frequency') THEN CREATE TYPE pledge_frequency AS ENUM ('monthly', 'yearly'); END IF; END $$;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Donation{},
		&model.DonationEvent{},
		&model.RecurringPledge{},
		&model.DonationTier{},
		&model.AdminUser{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Views
	log.Println("Step 3: Creating Views...")

	postMigrationSQL := []string{
		// View: donation_totals (per-currency raised, completed only)
		`CREATE OR REPLACE VIEW donation_totals AS
		 SELECT currency, SUM(amount) AS total_amount, COUNT(*) AS donation_count
		 FROM donations
		 WHERE status = 'completed'
		 GROUP BY currency;`,

		// View: donation_audit_trail (ledger rows joined to their evidence)
		`CREATE OR REPLACE VIEW donation_audit_trail AS
		 SELECT d.reference, d.status, d.method, d.amount, d.currency,
		        e.kind, e.actor, e.payload, e.created_at AS evidence_at
		 FROM donations d
		 JOIN donation_events e ON e.donation_id = d.id
		 ORDER BY e.created_at;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
