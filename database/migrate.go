package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jobboard_backend/internal/config"
	"jobboard_backend/internal/models"
	chatmodels "jobboard_backend/internal/models/chat"
)

var gormDB *gorm.DB

// ConnectGorm инициализирует GORM с URL из config.yaml
func ConnectGorm() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	cfg := config.GetConfig()
	dsn := cfg.Database.DSN

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	gormDB = db
	return db, nil
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate() error {
	db, err := ConnectGorm()
	if err != nil {
		return err
	}
	return Migrate(db)
}

// Migrate прогоняет миграции на переданном соединении.
// Chat-таблицы живут в отдельной схеме "chat".
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE SCHEMA IF NOT EXISTS chat`).Error; err != nil {
		return fmt.Errorf("failed to create chat schema: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.JobApplication{},
		// chat модуль
		&chatmodels.ChatThread{},
		&chatmodels.Message{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}

	log.Println("✅ AutoMigrate успешно завершен.")
	return nil
}
