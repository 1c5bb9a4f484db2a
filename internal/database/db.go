package database

import (
	"backend/internal/model"
	"backend/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.TenantMember{},
		&model.RefreshToken{},
		&model.Division{},
		&model.Team{},
		&model.InventoryItem{},
		&model.IncomingRecord{},
		&model.OutgoingRecord{},
		&model.MaterialUsageRecord{},
		&model.OpticalCable{},
		&model.OpticalCableLog{},
		&model.AuditLog{},
	)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to auto-migrate models")
	}

	return db, nil
}
