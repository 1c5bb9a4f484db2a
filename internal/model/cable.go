package model

import (
	"math"
	"strconv"
	"strings"
	"time"

	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Drum statuses
const (
	CableStatusInStock  = "in_stock"
	CableStatusAssigned = "assigned"
	CableStatusUsedUp   = "used_up"
	CableStatusReturned = "returned"
	CableStatusWaste    = "waste"
)

// Log types. A receive row is written once at drum registration; the four
// action types are the lifecycle transitions.
const (
	CableLogReceive = "receive"
	CableLogAssign  = "assign"
	CableLogUsage   = "usage"
	CableLogReturn  = "return"
	CableLogWaste   = "waste"
)

// OpticalCable is a physical drum of fiber cable. The log table is the source
// of truth; the length counters and status here are a cached fold of the logs.
type OpticalCable struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant          Tenant          `gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ManagementNo    string          `gorm:"type:varchar(100)" json:"management_no"`
	DrumNo          string          `gorm:"type:varchar(100);not null;index" json:"drum_no"`
	Spec            string          `gorm:"type:varchar(255)" json:"spec"`
	CoreCount       int             `gorm:"default:0" json:"core_count"`
	TotalLength     string          `gorm:"type:varchar(100)" json:"total_length"` // may be a composite label, not always numeric
	RemainingLength float64         `gorm:"not null;default:0" json:"remaining_length"`
	UsedLength      float64         `gorm:"not null;default:0" json:"used_length"`
	WasteLength     float64         `gorm:"not null;default:0" json:"waste_length"`
	Status          string          `gorm:"type:varchar(20);not null;default:'in_stock'" json:"status"`
	CurrentTeamID   *uuid.UUID      `gorm:"type:uuid;index" json:"current_team_id"`
	ReceivedDate    string          `gorm:"type:varchar(20)" json:"received_date"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"unit_price"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"total_amount"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Logs            []OpticalCableLog `gorm:"foreignKey:CableID" json:"logs,omitempty"`
}

// OpticalCableLog is one append-only history row per lifecycle transition.
type OpticalCableLog struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant           Tenant     `gorm:"foreignKey:TenantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CableID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"cable_id"`
	LogType          string     `gorm:"type:varchar(20);not null" json:"log_type"`
	UsageDate        string     `gorm:"type:varchar(20)" json:"usage_date"`
	InstallLength    float64    `gorm:"not null;default:0" json:"install_length"`
	WasteLength      float64    `gorm:"not null;default:0" json:"waste_length"`
	UsedLength       float64    `gorm:"not null;default:0" json:"used_length"`
	BeforeRemaining  float64    `gorm:"not null;default:0" json:"before_remaining"`
	AfterRemaining   float64    `gorm:"not null;default:0" json:"after_remaining"`
	TeamID           *uuid.UUID `gorm:"type:uuid;index" json:"team_id"`
	WorkerName       string     `gorm:"type:varchar(255)" json:"worker_name"`
	ProjectNameUsage string     `gorm:"type:varchar(255)" json:"project_name_usage"`
	SectionName      string     `gorm:"type:varchar(255)" json:"section_name"`
	CreatedBy        *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	Cable *OpticalCable `gorm:"foreignKey:CableID" json:"cable,omitempty"`
}

// Exhausted reports whether the drum has no usable length left. Derived on
// purpose: waste can drain a drum without forcing a status change, so status
// alone is not a reliable exhaustion signal.
func (c *OpticalCable) Exhausted() bool {
	return c.RemainingLength <= 0
}

// NumericTotalLength parses the total length label. Returns false when the
// label is a composite string rather than a plain number.
func (c *OpticalCable) NumericTotalLength() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.TotalLength), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CableAction carries the parameters of a lifecycle transition.
type CableAction struct {
	Type             string
	TeamID           *uuid.UUID
	InstallLength    float64 // usage only
	WasteLength      float64 // usage: scrap cut alongside the install; waste: the discarded amount
	UsageDate        string
	WorkerName       string
	ProjectNameUsage string
	SectionName      string
	CreatedBy        *uuid.UUID
}

func validLength(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// ApplyCableAction mutates the drum per the requested transition and returns
// the single log row recording it. On any error the drum is left untouched.
//
// assign requires in_stock or returned (a returned drum is re-dispatchable),
// usage and return require assigned, waste is allowed from any non-terminal
// status except used_up. usage is the only transition that sets used_up.
func ApplyCableAction(cable *OpticalCable, action CableAction) (*OpticalCableLog, error) {
	log := &OpticalCableLog{
		TenantID:         cable.TenantID,
		CableID:          cable.ID,
		LogType:          action.Type,
		UsageDate:        action.UsageDate,
		TeamID:           action.TeamID,
		WorkerName:       action.WorkerName,
		ProjectNameUsage: action.ProjectNameUsage,
		SectionName:      action.SectionName,
		CreatedBy:        action.CreatedBy,
		BeforeRemaining:  cable.RemainingLength,
		AfterRemaining:   cable.RemainingLength,
	}

	switch action.Type {
	case CableLogAssign:
		if cable.Status != CableStatusInStock && cable.Status != CableStatusReturned {
			return nil, apperror.StateConflict("cannot assign drum %s from status %s", cable.DrumNo, cable.Status)
		}
		if action.TeamID == nil {
			return nil, apperror.Validation("team id is required for assignment")
		}
		cable.CurrentTeamID = action.TeamID
		cable.Status = CableStatusAssigned

	case CableLogUsage:
		if cable.Status != CableStatusAssigned {
			return nil, apperror.StateConflict("cannot record usage on drum %s in status %s", cable.DrumNo, cable.Status)
		}
		if !validLength(action.InstallLength) || !validLength(action.WasteLength) {
			return nil, apperror.Validation("install and waste lengths must be non-negative numbers")
		}
		consumed := action.InstallLength + action.WasteLength
		if consumed <= 0 {
			return nil, apperror.Validation("usage must consume a positive length")
		}
		if consumed > cable.RemainingLength {
			return nil, apperror.Capacity("drum %s has %.1fm remaining, cannot consume %.1fm",
				cable.DrumNo, cable.RemainingLength, consumed)
		}
		cable.RemainingLength -= consumed
		cable.UsedLength += action.InstallLength
		cable.WasteLength += action.WasteLength
		if cable.RemainingLength <= 0 {
			cable.Status = CableStatusUsedUp
		}
		log.InstallLength = action.InstallLength
		log.WasteLength = action.WasteLength
		log.UsedLength = consumed
		log.AfterRemaining = cable.RemainingLength

	case CableLogReturn:
		if cable.Status != CableStatusAssigned {
			return nil, apperror.StateConflict("cannot return drum %s in status %s", cable.DrumNo, cable.Status)
		}
		cable.CurrentTeamID = nil
		cable.Status = CableStatusReturned

	case CableLogWaste:
		switch cable.Status {
		case CableStatusInStock, CableStatusAssigned, CableStatusReturned:
		default:
			return nil, apperror.StateConflict("cannot discard from drum %s in status %s", cable.DrumNo, cable.Status)
		}
		if !validLength(action.WasteLength) {
			return nil, apperror.Validation("waste amount must be a non-negative number")
		}
		if action.WasteLength <= 0 {
			return nil, apperror.Validation("waste amount must be positive")
		}
		if action.WasteLength > cable.RemainingLength {
			return nil, apperror.Capacity("drum %s has %.1fm remaining, cannot discard %.1fm",
				cable.DrumNo, cable.RemainingLength, action.WasteLength)
		}
		// Status is deliberately untouched: exhaustion via waste is derived
		// (Exhausted), only usage transitions to used_up.
		cable.RemainingLength -= action.WasteLength
		cable.WasteLength += action.WasteLength
		log.WasteLength = action.WasteLength
		log.AfterRemaining = cable.RemainingLength

	default:
		return nil, apperror.Validation("unknown cable action %q", action.Type)
	}

	return log, nil
}

// CableFold is the state obtained by replaying a drum's logs in order.
type CableFold struct {
	Remaining float64
	Used      float64
	Waste     float64
	Status    string
	TeamID    *uuid.UUID
}

// FoldCableLogs replays logs (creation order) from a fresh drum state. The
// stored drum row must always equal this fold; divergence means a log was
// written without its matching drum update.
func FoldCableLogs(totalLength float64, logs []OpticalCableLog) CableFold {
	fold := CableFold{
		Remaining: totalLength,
		Status:    CableStatusInStock,
	}
	for _, l := range logs {
		switch l.LogType {
		case CableLogReceive:
			fold.Remaining = l.AfterRemaining
		case CableLogAssign:
			fold.Status = CableStatusAssigned
			fold.TeamID = l.TeamID
		case CableLogUsage:
			fold.Remaining -= l.InstallLength + l.WasteLength
			fold.Used += l.InstallLength
			fold.Waste += l.WasteLength
			if fold.Remaining <= 0 {
				fold.Status = CableStatusUsedUp
			}
		case CableLogReturn:
			fold.Status = CableStatusReturned
			fold.TeamID = nil
		case CableLogWaste:
			fold.Remaining -= l.WasteLength
			fold.Waste += l.WasteLength
		}
	}
	return fold
}
