package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateIncoming = "CREATE_INCOMING"
	ActionUpdateIncoming = "UPDATE_INCOMING"
	ActionDeleteIncoming = "DELETE_INCOMING"
	ActionCreateOutgoing = "CREATE_OUTGOING"
	ActionUpdateOutgoing = "UPDATE_OUTGOING"
	ActionDeleteOutgoing = "DELETE_OUTGOING"
	ActionCreateUsage    = "CREATE_USAGE"
	ActionUpdateUsage    = "UPDATE_USAGE"
	ActionDeleteUsage    = "DELETE_USAGE"

	ActionCreateInventoryItem = "CREATE_INVENTORY_ITEM"
	ActionUpdateInventoryItem = "UPDATE_INVENTORY_ITEM"
	ActionDeleteInventoryItem = "DELETE_INVENTORY_ITEM"
	ActionSeedInventory       = "SEED_INVENTORY"
	ActionSyncInventory       = "SYNC_INVENTORY"
	ActionAuditInventory      = "AUDIT_INVENTORY"

	ActionRegisterCable = "REGISTER_CABLE"
	ActionCableAction   = "CABLE_ACTION"
	ActionDeleteCable   = "DELETE_CABLE"

	ActionProvisionTenant    = "PROVISION_TENANT"
	ActionDeactivateTenant   = "DEACTIVATE_TENANT"
	ActionDeleteTenant       = "DELETE_TENANT"
	ActionAddTenantMember    = "ADD_TENANT_MEMBER"
	ActionRemoveTenantMember = "REMOVE_TENANT_MEMBER"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id"` // nil for super-admin actions
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`   // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (serial id/uuid)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
