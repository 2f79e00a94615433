package postgres

import (
	"log"

	"github.com/LavaJover/shvark-kiosk-service/internal/config"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-kiosk-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.KioskConfig) *gorm.DB {
	dsn := cfg.KioskDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if cfg.KioskDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.KioskDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v\n", err)
		}
		return db
	}

	if err := db.AutoMigrate(&models.AssetModel{}); err != nil {
		log.Fatalf("failed to auto migrate: %v\n", err)
	}

	return db
}
