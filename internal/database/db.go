package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"go-pos-backoffice/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Connect opens the MySQL database, waiting for it to come up, and syncs the schema.
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty DB_DSN")
	}

	var (
		db  *gorm.DB
		err error
	)

	// 1. Connect with GORM (Wait for DB to be ready)
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/%d)", i+1, connectAttempts)
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("connect after %d attempts: %w", connectAttempts, err)
	}

	log.Println("✅ Successfully connected to MySQL!")

	// 2. Auto-Migrate
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Println("✅ Database Schema Synced!")
	return nil
}

// translate maps gorm errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
