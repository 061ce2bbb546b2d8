package database

import (
	"database/sql"
	"log"
	"os"

	"voart-api/internal/models"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// MigrateDatabase handles database migrations using GORM's AutoMigrate and raw SQL as a fallback
func MigrateDatabase(dsn string) {
	env := os.Getenv("APP_ENV")
	log.Printf("Running migrations for environment: %s", env)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to the database with GORM: %v", err)
	}

	log.Println("Running GORM migrations...")
	err = DB.AutoMigrate(&models.StoreEntry{})
	if err != nil {
		log.Fatalf("Failed to perform GORM migrations: %v", err)
	}
	log.Println("GORM migrations executed successfully.")

	// Use raw SQL migrations as a safety fallback
	dbSQL, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to the database with SQL: %v", err)
	}
	defer dbSQL.Close()

	executeSQLMigrations(dbSQL)
}

// executeSQLMigrations performs raw SQL migrations as a fallback
func executeSQLMigrations(db *sql.DB) {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS store_entries (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            version BIGINT NOT NULL DEFAULT 1,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
	}

	for _, query := range queries {
		_, err := db.Exec(query)
		if err != nil {
			log.Fatalf("Failed to execute query: %s, error: %v", query, err)
		}
	}
	log.Println("Raw SQL migrations executed successfully.")
}
