package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	grammarSeeder := NewGrammarSeeder(s.db)
	if err := grammarSeeder.SeedCategories(); err != nil {
		log.Printf("Category seeding failed: %v", err)
		return err
	}
	if err := grammarSeeder.SeedTopics(); err != nil {
		log.Printf("Topic seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedCategoriesOnly seeds the grammar categories without topics
func (s *MainSeeder) SeedCategoriesOnly() error {
	return NewGrammarSeeder(s.db).SeedCategories()
}

// SeedTopicsOnly seeds the starter topics only
func (s *MainSeeder) SeedTopicsOnly() error {
	return NewGrammarSeeder(s.db).SeedTopics()
}
