package model

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated organization. Every domain row carries its id and is
// removed with it.
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Plan      string    `gorm:"type:varchar(50);default:'standard'" json:"plan"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
