package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/organizainador/organizer-service/internal/config"
	"github.com/organizainador/organizer-service/internal/models"
)

// InitDatabase opens the PostgreSQL connection and migrates the schema.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.Environment == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the organizer tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Activity{},
		&models.ScheduleSlot{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return applySlotConstraints(db)
}

type checkConstraint struct {
	name  string
	check string
}

var slotConstraints = []checkConstraint{
	// Exactly one owner.
	{name: "chk_schedule_slots_owner", check: "(class_id IS NULL) <> (activity_id IS NULL)"},
	{name: "chk_schedule_slots_kind", check: "(is_recurring AND day_of_week <> '') OR (NOT is_recurring AND specific_date IS NOT NULL)"},
	// A slot never ends at or before its start.
	{name: "chk_schedule_slots_span", check: "end_time > start_time"},
}

// applySlotConstraints replaces the CHECK constraints on schedule_slots.
func applySlotConstraints(db *gorm.DB) error {
	for _, c := range slotConstraints {
		stmts := []string{
			fmt.Sprintf("ALTER TABLE schedule_slots DROP CONSTRAINT IF EXISTS %s", c.name),
			fmt.Sprintf("ALTER TABLE schedule_slots ADD CONSTRAINT %s CHECK (%s)", c.name, c.check),
		}
		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to apply constraint %s: %w", c.name, err)
			}
		}
	}

	return nil
}
