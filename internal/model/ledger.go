package model

import (
	"encoding/json"
	"time"

	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Material type variants carried in record attributes
const (
	MaterialTypeGeneral = "general"
	MaterialTypeCable   = "cable"
)

// RecordAttributes is the typed extension payload of a ledger record. Cable
// materials reference the physical drum they were drawn from.
type RecordAttributes struct {
	Type   string `json:"type,omitempty"`
	DrumNo string `json:"drum_no,omitempty"`
}

// Validate rejects unknown material variants and cable rows without a drum.
func (a RecordAttributes) Validate() error {
	switch a.Type {
	case "", MaterialTypeGeneral:
		return nil
	case MaterialTypeCable:
		if a.DrumNo == "" {
			return apperror.Validation("cable attributes require drum_no")
		}
		return nil
	default:
		return apperror.Validation("unknown material type %q", a.Type)
	}
}

// ParseRecordAttributes decodes the stored JSON payload; empty means general.
func ParseRecordAttributes(raw string) (RecordAttributes, error) {
	if raw == "" {
		return RecordAttributes{}, nil
	}
	var attrs RecordAttributes
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return RecordAttributes{}, apperror.Wrap(apperror.KindValidation, err, "malformed attributes payload")
	}
	if err := attrs.Validate(); err != nil {
		return RecordAttributes{}, err
	}
	return attrs, nil
}

// IncomingRecord is an append-only receipt event: material arriving at the
// office warehouse from a supplier.
type IncomingRecord struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant          Tenant          `gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Date            string          `gorm:"type:varchar(20);not null" json:"date"`
	Division        string          `gorm:"type:varchar(100);not null" json:"division"`
	Category        string          `gorm:"type:varchar(100)" json:"category"`
	Supplier        string          `gorm:"type:varchar(255)" json:"supplier"`
	ProjectName     string          `gorm:"type:varchar(255)" json:"project_name"`
	ProductName     string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Specification   string          `gorm:"type:varchar(255);not null;default:''" json:"specification"`
	Attributes      string          `gorm:"type:jsonb" json:"attributes,omitempty"`
	Quantity        int             `gorm:"not null;default:0" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"unit_price"`
	Remark          string          `gorm:"type:text" json:"remark"`
	InventoryItemID *uint           `gorm:"index" json:"inventory_item_id"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// OutgoingRecord is an append-only dispatch event: material handed to a field
// team. It leaves office stock but stays inside the organization.
type OutgoingRecord struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TenantID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant          Tenant     `gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Date            string     `gorm:"type:varchar(20);not null" json:"date"`
	Division        string     `gorm:"type:varchar(100);not null" json:"division"`
	Category        string     `gorm:"type:varchar(100)" json:"category"`
	TeamCategory    string     `gorm:"type:varchar(100)" json:"team_category"`
	ProjectName     string     `gorm:"type:varchar(255)" json:"project_name"`
	ProductName     string     `gorm:"type:varchar(255);not null" json:"product_name"`
	Specification   string     `gorm:"type:varchar(255);not null;default:''" json:"specification"`
	Attributes      string     `gorm:"type:jsonb" json:"attributes,omitempty"`
	Quantity        int        `gorm:"not null;default:0" json:"quantity"`
	Recipient       string     `gorm:"type:varchar(255)" json:"recipient"`
	Remark          string     `gorm:"type:text" json:"remark"`
	InventoryItemID *uint      `gorm:"index" json:"inventory_item_id"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// MaterialUsageRecord is an append-only consumption event reported by a field
// team against stock it already holds.
type MaterialUsageRecord struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TenantID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant          Tenant     `gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Date            string     `gorm:"type:varchar(20);not null" json:"date"`
	Division        string     `gorm:"type:varchar(100);not null" json:"division"`
	Category        string     `gorm:"type:varchar(100)" json:"category"`
	TeamCategory    string     `gorm:"type:varchar(100)" json:"team_category"`
	ProjectName     string     `gorm:"type:varchar(255)" json:"project_name"`
	ProductName     string     `gorm:"type:varchar(255);not null" json:"product_name"`
	Specification   string     `gorm:"type:varchar(255);not null;default:''" json:"specification"`
	Attributes      string     `gorm:"type:jsonb" json:"attributes,omitempty"`
	Quantity        int        `gorm:"not null;default:0" json:"quantity"`
	Recipient       string     `gorm:"type:varchar(255)" json:"recipient"`
	Remark          string     `gorm:"type:text" json:"remark"`
	InventoryItemID *uint      `gorm:"index" json:"inventory_item_id"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
