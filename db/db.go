package db

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func GetDB() *gorm.DB {
	return DB
}

// Init establishes the DB connection without running migrations.
// A postgres URL is expected in production; anything else is treated as a
// sqlite DSN, which keeps local development and tests self-contained.
func Init(databaseURL string) {
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	var (
		conn *gorm.DB
		err  error
	)
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		conn, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	} else {
		conn, err = gorm.Open(sqlite.Open(databaseURL), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	DB = conn
	log.Println("✅ Database connection established successfully!")
}
