package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Per-tenant membership roles
const (
	RoleAdmin  = "admin"  // tenant administrator
	RoleOffice = "office" // office staff: incoming/outgoing/inventory management
	RoleField  = "field"  // field team member: usage reporting
)

// User is a login identity. Tenant access is granted through TenantMember rows;
// a single super admin provisions tenants outside any membership.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Name         string         `gorm:"type:varchar(255)" json:"name"`
	Phone        string         `gorm:"type:varchar(20)" json:"phone"`
	Password     string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	IsSuperAdmin bool           `gorm:"default:false" json:"is_super_admin"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// TenantMember links a user to a tenant with a role.
type TenantMember struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_member_user_tenant,unique,priority:1" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_member_user_tenant,unique,priority:2" json:"tenant_id"`
	Tenant    Tenant     `gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Role      string     `gorm:"type:varchar(50);not null;default:'office'" json:"role"`
	TeamID    *uuid.UUID `gorm:"type:uuid;index" json:"team_id"` // set for field members
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
