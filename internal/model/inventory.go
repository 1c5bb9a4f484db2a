package model

import (
	"strings"
	"time"

	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is the reconciled stock snapshot for one product identity
// (tenant, division, productName, specification). The three ledgers are the
// source of truth; this row is maintained incrementally on every ledger write.
//
// Remaining counts office-held stock only: material dispatched to a team stays
// out of Remaining until the team's records are deleted, and consumption is
// tracked in Usage without touching Remaining.
type InventoryItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_item_identity,unique,priority:1" json:"tenant_id"`
	Tenant        Tenant          `gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Division      string          `gorm:"type:varchar(100);not null;index:idx_item_identity,unique,priority:2" json:"division"`
	Category      string          `gorm:"type:varchar(100);not null" json:"category"`
	ProductName   string          `gorm:"type:varchar(255);not null;index:idx_item_identity,unique,priority:3" json:"product_name"`
	Specification string          `gorm:"type:varchar(255);not null;default:'';index:idx_item_identity,unique,priority:4" json:"specification"`
	CarriedOver   int             `gorm:"not null;default:0" json:"carried_over"` // opening balance, immutable after creation
	Incoming      int             `gorm:"not null;default:0" json:"incoming"`
	Outgoing      int             `gorm:"not null;default:0" json:"outgoing"` // cumulative sent to field teams
	Usage         int             `gorm:"not null;default:0" json:"usage"`    // cumulative consumed by teams
	Remaining     int             `gorm:"not null;default:0" json:"remaining"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"unit_price"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"total_amount"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ItemIdentity is the textual matching key used when a ledger record carries
// no inventory item id. Values are trimmed; empty specification matches empty.
type ItemIdentity struct {
	Division      string
	ProductName   string
	Specification string
}

// NewItemIdentity normalizes the tuple for matching.
func NewItemIdentity(division, productName, specification string) ItemIdentity {
	return ItemIdentity{
		Division:      strings.TrimSpace(division),
		ProductName:   strings.TrimSpace(productName),
		Specification: strings.TrimSpace(specification),
	}
}

// Identity returns the item's normalized matching key.
func (i *InventoryItem) Identity() ItemIdentity {
	return NewItemIdentity(i.Division, i.ProductName, i.Specification)
}

// TeamStock is material dispatched to teams but not yet consumed. Derived,
// never stored.
func (i *InventoryItem) TeamStock() int {
	return i.Outgoing - i.Usage
}

// TotalStock is office stock plus team-held stock.
func (i *InventoryItem) TotalStock() int {
	return i.Remaining + i.TeamStock()
}

// Recalculate refreshes the derived snapshot fields from the accumulators.
// TotalAmount values office stock only.
func (i *InventoryItem) Recalculate() {
	i.Remaining = i.CarriedOver + i.Incoming - i.Outgoing
	i.TotalAmount = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Remaining)))
}

// ApplyIncoming shifts the incoming accumulator by delta (negative on reversal).
func (i *InventoryItem) ApplyIncoming(delta int) {
	i.Incoming += delta
	i.Recalculate()
}

// ApplyOutgoing shifts the outgoing accumulator by delta. Does not touch Usage.
func (i *InventoryItem) ApplyOutgoing(delta int) {
	i.Outgoing += delta
	i.Recalculate()
}

// ApplyUsage shifts the usage accumulator by delta. Remaining is untouched:
// usage consumes team-held stock, not office stock.
func (i *InventoryItem) ApplyUsage(delta int) {
	i.Usage += delta
}

// CheckConsistency verifies the snapshot invariant after an apply. A failure
// here means the row diverged from its own accumulators and the enclosing
// transaction must roll back.
func (i *InventoryItem) CheckConsistency() error {
	if i.Remaining != i.CarriedOver+i.Incoming-i.Outgoing {
		return apperror.Integrity(
			"inventory item %d: remaining %d != carriedOver %d + incoming %d - outgoing %d",
			i.ID, i.Remaining, i.CarriedOver, i.Incoming, i.Outgoing)
	}
	return nil
}
