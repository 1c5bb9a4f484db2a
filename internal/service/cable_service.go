package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/apperror"
	"backend/pkg/logger"
	"backend/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CableRequest struct {
	ManagementNo string          `json:"management_no"`
	DrumNo       string          `json:"drum_no" binding:"required"`
	Spec         string          `json:"spec"`
	CoreCount    int             `json:"core_count"`
	TotalLength  string          `json:"total_length"`
	ReceivedDate string          `json:"received_date"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

type CableActionRequest struct {
	Action           string     `json:"action" binding:"required"`
	TeamID           *uuid.UUID `json:"team_id"`
	InstallLength    float64    `json:"install_length"`
	WasteLength      float64    `json:"waste_length"`
	UsageDate        string     `json:"usage_date"`
	WorkerName       string     `json:"worker_name"`
	ProjectNameUsage string     `json:"project_name_usage"`
	SectionName      string     `json:"section_name"`
}

// CableService manages the drum lifecycle. Every mutation writes its
// append-only log row in the same transaction as the drum update, so the drum
// row always equals the fold of its logs.
type CableService interface {
	CreateCable(ctx context.Context, tenantID uuid.UUID, userID string, req CableRequest) (*model.OpticalCable, error)
	CreateCablesBulk(ctx context.Context, tenantID uuid.UUID, userID string, reqs []CableRequest) ([]model.OpticalCable, error)
	UpdateCable(ctx context.Context, tenantID, id uuid.UUID, userID string, req CableRequest) (*model.OpticalCable, error)
	DeleteCable(ctx context.Context, tenantID, id uuid.UUID, userID string) error
	BulkDeleteCables(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, userID string) (int64, error)
	GetCable(ctx context.Context, tenantID, id uuid.UUID) (*model.OpticalCable, error)
	ListCables(ctx context.Context, tenantID uuid.UUID, withLogs bool) ([]model.OpticalCable, error)
	ApplyAction(ctx context.Context, tenantID, id uuid.UUID, userID string, req CableActionRequest) (*model.OpticalCable, error)
	GetCableLogs(ctx context.Context, tenantID, id uuid.UUID) ([]model.OpticalCableLog, error)
	ListAllLogs(ctx context.Context, tenantID uuid.UUID) ([]model.OpticalCableLog, error)
	BulkDeleteLogs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, userID string) (int64, error)
}

type cableService struct {
	cableRepo repository.CableRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewCableService(
	cableRepo repository.CableRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) CableService {
	return &cableService{
		cableRepo: cableRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
	}
}

func (s *cableService) audit(ctx context.Context, tenantID uuid.UUID, userID, action, entityID, entityName string, payload interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}
	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		TenantID:   &tenantID,
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *cableService) broadcastCable(cable *model.OpticalCable) {
	if s.hub == nil || cable == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event": "cable.updated",
		"data": map[string]interface{}{
			"cable_id":         cable.ID,
			"drum_no":          cable.DrumNo,
			"status":           cable.Status,
			"remaining_length": cable.RemainingLength,
		},
	})
	if err != nil {
		return
	}
	select {
	case s.hub.Broadcast <- ws.Event{TenantID: cable.TenantID, Payload: payload}:
	default:
	}
}

// createCableTx registers a drum and writes its receive log in one step, so
// even a freshly registered drum folds correctly from its log history.
func (s *cableService) createCableTx(txCtx context.Context, tenantID uuid.UUID, userID string, req CableRequest) (*model.OpticalCable, error) {
	if req.DrumNo == "" {
		return nil, apperror.Validation("drum number is required")
	}

	cable := &model.OpticalCable{
		TenantID:     tenantID,
		ManagementNo: req.ManagementNo,
		DrumNo:       req.DrumNo,
		Spec:         req.Spec,
		CoreCount:    req.CoreCount,
		TotalLength:  req.TotalLength,
		ReceivedDate: req.ReceivedDate,
		UnitPrice:    req.UnitPrice,
		Status:       model.CableStatusInStock,
	}
	if length, ok := cable.NumericTotalLength(); ok {
		cable.RemainingLength = length
		cable.TotalAmount = req.UnitPrice.Mul(decimal.NewFromFloat(length))
	} else if req.TotalLength != "" {
		logger.Warn().
			Str("drum_no", req.DrumNo).
			Str("total_length", req.TotalLength).
			Msg("drum registered with non-numeric total length, remaining starts at zero")
	}
	if err := s.cableRepo.Create(txCtx, cable); err != nil {
		return nil, fmt.Errorf("failed to register drum: %w", err)
	}

	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}
	receiveLog := &model.OpticalCableLog{
		TenantID:        tenantID,
		CableID:         cable.ID,
		LogType:         model.CableLogReceive,
		UsageDate:       req.ReceivedDate,
		BeforeRemaining: cable.RemainingLength,
		AfterRemaining:  cable.RemainingLength,
		CreatedBy:       uid,
	}
	if err := s.cableRepo.CreateLog(txCtx, receiveLog); err != nil {
		return nil, fmt.Errorf("failed to write receive log: %w", err)
	}

	if err := s.audit(txCtx, tenantID, userID, model.ActionRegisterCable,
		cable.ID.String(), cable.DrumNo, req); err != nil {
		return nil, err
	}
	return cable, nil
}

func (s *cableService) CreateCable(ctx context.Context, tenantID uuid.UUID, userID string, req CableRequest) (*model.OpticalCable, error) {
	var cable *model.OpticalCable
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		cable, txErr = s.createCableTx(txCtx, tenantID, userID, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	metrics.CableActions.WithLabelValues("register").Inc()
	return cable, nil
}

func (s *cableService) CreateCablesBulk(ctx context.Context, tenantID uuid.UUID, userID string, reqs []CableRequest) ([]model.OpticalCable, error) {
	cables := make([]model.OpticalCable, 0, len(reqs))
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i, req := range reqs {
			cable, rowErr := s.createCableTx(txCtx, tenantID, userID, req)
			if rowErr != nil {
				return fmt.Errorf("row %d: %w", i, rowErr)
			}
			cables = append(cables, *cable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.CableActions.WithLabelValues("register").Add(float64(len(cables)))
	return cables, nil
}

// UpdateCable edits descriptive fields only. Length counters, status and team
// belong to the lifecycle transitions and cannot be patched directly.
func (s *cableService) UpdateCable(ctx context.Context, tenantID, id uuid.UUID, userID string, req CableRequest) (*model.OpticalCable, error) {
	var cable *model.OpticalCable
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.cableRepo.FindByIDForUpdate(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("drum %s not found", id)
			}
			return fmt.Errorf("failed to load drum: %w", findErr)
		}

		existing.ManagementNo = req.ManagementNo
		if req.DrumNo != "" {
			existing.DrumNo = req.DrumNo
		}
		existing.Spec = req.Spec
		existing.CoreCount = req.CoreCount
		existing.ReceivedDate = req.ReceivedDate
		existing.UnitPrice = req.UnitPrice
		if err := s.cableRepo.Save(txCtx, existing); err != nil {
			return fmt.Errorf("failed to update drum: %w", err)
		}

		cable = existing
		return s.audit(txCtx, tenantID, userID, model.ActionCableAction,
			existing.ID.String(), existing.DrumNo, req)
	})
	if err != nil {
		return nil, err
	}
	return cable, nil
}

func (s *cableService) DeleteCable(ctx context.Context, tenantID, id uuid.UUID, userID string) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.cableRepo.FindByID(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("drum %s not found", id)
			}
			return fmt.Errorf("failed to load drum: %w", findErr)
		}
		if _, err := s.cableRepo.Delete(txCtx, tenantID, id); err != nil {
			return fmt.Errorf("failed to delete drum: %w", err)
		}
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteCable,
			id.String(), existing.DrumNo, nil)
	})
}

func (s *cableService) BulkDeleteCables(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, userID string) (int64, error) {
	var deleted int64
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		deleted, txErr = s.cableRepo.BulkDelete(txCtx, tenantID, ids)
		if txErr != nil {
			return fmt.Errorf("failed to delete drums: %w", txErr)
		}
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteCable, "bulk", "",
			map[string]interface{}{"ids": ids, "deleted": deleted})
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *cableService) GetCable(ctx context.Context, tenantID, id uuid.UUID) (*model.OpticalCable, error) {
	cable, err := s.cableRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("drum %s not found", id)
		}
		return nil, err
	}
	return cable, nil
}

func (s *cableService) ListCables(ctx context.Context, tenantID uuid.UUID, withLogs bool) ([]model.OpticalCable, error) {
	return s.cableRepo.List(ctx, tenantID, withLogs)
}

// ApplyAction performs one lifecycle transition under a row lock. The lock
// serializes concurrent length deductions on the same drum, so two usage
// reports can never both pass the remaining-length check.
func (s *cableService) ApplyAction(ctx context.Context, tenantID, id uuid.UUID, userID string, req CableActionRequest) (*model.OpticalCable, error) {
	var cable *model.OpticalCable

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		locked, findErr := s.cableRepo.FindByIDForUpdate(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("drum %s not found", id)
			}
			return fmt.Errorf("failed to lock drum: %w", findErr)
		}

		var uid *uuid.UUID
		if parsed, err := uuid.Parse(userID); err == nil {
			uid = &parsed
		}
		log, applyErr := model.ApplyCableAction(locked, model.CableAction{
			Type:             req.Action,
			TeamID:           req.TeamID,
			InstallLength:    req.InstallLength,
			WasteLength:      req.WasteLength,
			UsageDate:        req.UsageDate,
			WorkerName:       req.WorkerName,
			ProjectNameUsage: req.ProjectNameUsage,
			SectionName:      req.SectionName,
			CreatedBy:        uid,
		})
		if applyErr != nil {
			return applyErr
		}

		if err := s.cableRepo.Save(txCtx, locked); err != nil {
			return fmt.Errorf("failed to update drum: %w", err)
		}
		if err := s.cableRepo.CreateLog(txCtx, log); err != nil {
			return fmt.Errorf("failed to write cable log: %w", err)
		}

		cable = locked
		return s.audit(txCtx, tenantID, userID, model.ActionCableAction,
			locked.ID.String(), locked.DrumNo, req)
	})
	if err != nil {
		return nil, err
	}

	metrics.CableActions.WithLabelValues(req.Action).Inc()
	s.broadcastCable(cable)
	return cable, nil
}

func (s *cableService) GetCableLogs(ctx context.Context, tenantID, id uuid.UUID) ([]model.OpticalCableLog, error) {
	if _, err := s.GetCable(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return s.cableRepo.ListLogs(ctx, tenantID, id)
}

func (s *cableService) ListAllLogs(ctx context.Context, tenantID uuid.UUID) ([]model.OpticalCableLog, error) {
	return s.cableRepo.ListAllLogs(ctx, tenantID)
}

func (s *cableService) BulkDeleteLogs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, userID string) (int64, error) {
	var deleted int64
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		deleted, txErr = s.cableRepo.BulkDeleteLogs(txCtx, tenantID, ids)
		if txErr != nil {
			return fmt.Errorf("failed to delete cable logs: %w", txErr)
		}
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteCable, "logs",
			"", map[string]interface{}{"ids": ids, "deleted": deleted})
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
