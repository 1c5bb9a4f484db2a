package model

import (
	"time"

	"github.com/google/uuid"
)

// Division is a business unit materials are tracked under (also part of the
// inventory item identity tuple).
type Division struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant    Tenant    `gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Team is a field crew that receives dispatched material and reports usage.
type Team struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant        Tenant     `gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	DivisionID    *uuid.UUID `gorm:"type:uuid;index" json:"division_id"`
	MemberCount   int        `gorm:"default:0" json:"member_count"`
	MaterialCount int        `gorm:"default:0" json:"material_count"`
	LastActivity  string     `gorm:"type:varchar(50)" json:"last_activity"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
