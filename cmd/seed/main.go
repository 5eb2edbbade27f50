package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"tradecrm/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	var envFile string
	flag.StringVar(&envFile, "env", ".env", "Environment file to load (.env, .prod.env, etc)")
	flag.Parse()

	err := godotenv.Load(envFile)
	if err != nil {
		log.Fatalf("Error loading %s file", envFile)
	}

	userIDStr := os.Getenv("SEED_USER_ID")
	if userIDStr == "" {
		log.Fatal("SEED_USER_ID environment variable is not set. Please set it to the user id to seed CRM data for.")
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		log.Fatalf("Invalid SEED_USER_ID: %v", err)
	}

	// Initialize database
	postgresURL := os.Getenv("DATABASE_URL")
	if postgresURL == "" {
		log.Fatal("DATABASE_URL environment variable is empty")
	}

	database, err := db.NewDB(postgresURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		err = errors.Join(err, database.Close())
	}()

	seeder := NewSeeder(database, userID)

	fmt.Printf("Seeding calculations and reminders for user %d\n", userID)

	if err := seeder.Seed(); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}

	fmt.Println("Seeding completed successfully!")
}
