package db

import (
	"fmt"
	"log"

	"github.com/lncalendar/lncalendar/models"
)

// Migrate applies the additive schema. AutoMigrate only ever adds columns and
// indexes with defaults, so existing rows from older revisions stay valid.
func Migrate() {
	err := DB.AutoMigrate(
		&models.Wallet{},
		&models.Schedule{},
		&models.Appointment{},
		&models.UnavailableTime{},
		&models.CalendarSettings{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
