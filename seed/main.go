package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/lingokit/grambot/model"
	"github.com/lingokit/grambot/seed/seeders"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, categories, topics")
		dsn      = flag.String("dsn", "", "Postgres DSN (overrides POSTGRES_DSN env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	database := *dsn
	if database == "" {
		database = os.Getenv("POSTGRES_DSN")
	}
	if database == "" {
		host := envOr("DB_HOST", "localhost")
		port := envOr("DB_PORT", "5432")
		user := envOr("DB_USER", "postgres")
		password := envOr("DB_PASSWORD", "postgres")
		dbname := envOr("DB_NAME", "grambot")
		sslmode := envOr("DB_SSLMODE", "disable")
		database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			host, user, password, dbname, port, sslmode)
	}

	db, err := gorm.Open(postgres.Open(database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&model.GrammarCategory{}, &model.GrammarTopic{}); err != nil {
		log.Fatalf("Failed to migrate reference tables: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "categories":
		if err := mainSeeder.SeedCategoriesOnly(); err != nil {
			log.Fatalf("Failed to seed categories: %v", err)
		}
	case "topics":
		if err := mainSeeder.SeedTopicsOnly(); err != nil {
			log.Fatalf("Failed to seed topics: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'categories' or 'topics'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func showHelp() {
	log.Println(`
Database seeding tool for the grammar bot

Usage: go run seed/main.go [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, categories, topics
  -dsn string
        Postgres DSN (overrides POSTGRES_DSN environment variable)
  -help
        Show this help message

Environment Variables:
  POSTGRES_DSN - Postgres connection string
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE - fallback parts`)
}
