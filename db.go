package main

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"studyplan/models"
)

func initDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.AutoMigrate {
		migrateDB(db)
	}
	return db, nil
}

// migrateDB migrates models individually so a failure on one doesn't block
// the others; permission errors are logged and ignored.
func migrateDB(db *gorm.DB) {
	for _, m := range []any{
		&models.User{},
		&models.RefreshToken{},
		&models.StudySession{},
		&models.SessionTemplate{},
	} {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("migration warning (%T): %v", m, err)
		}
	}
}
