package config

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zephyros1603/urbanup/internal/models"
)

func New(dsn string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("db open failed: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskApplication{},
		&models.Chat{},
		&models.Message{},
		&models.Notification{},
	); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	return db
}
