package database

import (
	"fmt"

	"github.com/chatly/chat_management_backend/config"
	"github.com/chatly/chat_management_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect establishes a connection to the database
func Connect(cfg *config.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	logrus.Info("database connection established")
	return db
}

// Migrate automatically migrates the database schema
func Migrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Room{},
		&models.Participant{},
		&models.InviteCode{},
		&models.Notification{},
	)
	if err != nil {
		logrus.WithError(err).Fatal("database migration failed")
	}
	logrus.Info("database migration completed")
}
