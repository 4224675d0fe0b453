package database

import (
	"github.com/miniats/miniats/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection and runs migrations. The DSN comes
// from config (DATABASE_URL).
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables. Split out so tests can run the same migrations
// against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Session{},
		&models.Administrator{},
		&models.Job{},
		&models.Candidate{},
		&models.Application{},
		&models.TalentPoolEntry{},
		&models.TeamMember{},
		&models.Notification{},
		&models.ActivityLog{},
		&models.ProcessedWebhookEvent{},
	)
}
