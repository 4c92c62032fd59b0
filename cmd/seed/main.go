package main

import (
	"log"
	"os"

	"tumaini-be/internal/model"
	"tumaini-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("🌱 Seeding donation tiers and admin user\n")

	seedTiers(db)
	seedAdmin(db)

	color.Green("✅ Seeding complete")
}

func seedTiers(db *gorm.DB) {
	tiers := []model.DonationTier{
		{
			Name:        "Friend",
			Amount:      100000, // minor units
			Currency:    "KES",
			Description: "Covers school supplies for one child for a month",
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Name:        "Supporter",
			Amount:      500000,
			Currency:    "KES",
			Description: "Funds a week of community meals",
			SortOrder:   2,
			IsActive:    true,
		},
		{
			Name:        "Champion",
			Amount:      2500000,
			Currency:    "KES",
			Description: "Sponsors a full scholarship term",
			SortOrder:   3,
			IsActive:    true,
		},
	}

	for _, tier := range tiers {
		var existing model.DonationTier
		err := db.Where("name = ?", tier.Name).First(&existing).Error
		if err == nil {
			color.Yellow("Tier %q already exists, skipping", tier.Name)
			continue
		}
		if err := db.Create(&tier).Error; err != nil {
			color.Red("Failed to seed tier %q: %v", tier.Name, err)
			continue
		}
		color.Green("Seeded tier %q", tier.Name)
	}
}

func seedAdmin(db *gorm.DB) {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		color.Yellow("SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	var existing model.AdminUser
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		color.Yellow("Admin %s already exists, skipping", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		color.Red("Failed to hash admin password: %v", err)
		return
	}

	admin := model.AdminUser{
		Email:        email,
		FullName:     os.Getenv("SEED_ADMIN_NAME"),
		PasswordHash: string(hash),
	}
	if err := db.Create(&admin).Error; err != nil {
		color.Red("Failed to seed admin user: %v", err)
		return
	}
	color.Green("Seeded admin user %s", email)
}
