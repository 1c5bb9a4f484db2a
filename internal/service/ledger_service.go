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

// --- DTOs ---

type IncomingRequest struct {
	Date            string          `json:"date" binding:"required"`
	Division        string          `json:"division" binding:"required"`
	Category        string          `json:"category"`
	Supplier        string          `json:"supplier"`
	ProjectName     string          `json:"project_name"`
	ProductName     string          `json:"product_name" binding:"required"`
	Specification   string          `json:"specification"`
	Attributes      string          `json:"attributes"`
	Quantity        int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Remark          string          `json:"remark"`
	InventoryItemID *uint           `json:"inventory_item_id"`
}

type DispatchRequest struct {
	Date            string `json:"date" binding:"required"`
	Division        string `json:"division" binding:"required"`
	Category        string `json:"category"`
	TeamCategory    string `json:"team_category"`
	ProjectName     string `json:"project_name"`
	ProductName     string `json:"product_name" binding:"required"`
	Specification   string `json:"specification"`
	Attributes      string `json:"attributes"`
	Quantity        int    `json:"quantity" binding:"required,gt=0"`
	Recipient       string `json:"recipient"`
	Remark          string `json:"remark"`
	InventoryItemID *uint  `json:"inventory_item_id"`
}

// ledgerKind selects which accumulator a record feeds.
type ledgerKind string

const (
	ledgerIncoming ledgerKind = "incoming"
	ledgerOutgoing ledgerKind = "outgoing"
	ledgerUsage    ledgerKind = "usage"
)

// LedgerService is the reconciliation engine: every ledger mutation updates
// the matching inventory snapshot in the same transaction.
type LedgerService interface {
	CreateIncoming(ctx context.Context, tenantID uuid.UUID, userID string, req IncomingRequest) (*model.IncomingRecord, error)
	UpdateIncoming(ctx context.Context, tenantID uuid.UUID, id uint, userID string, req IncomingRequest) (*model.IncomingRecord, error)
	DeleteIncoming(ctx context.Context, tenantID uuid.UUID, id uint, userID string) error
	BulkCreateIncoming(ctx context.Context, tenantID uuid.UUID, userID string, reqs []IncomingRequest) ([]model.IncomingRecord, error)
	BulkDeleteIncoming(ctx context.Context, tenantID uuid.UUID, ids []uint, userID string) (int64, error)
	ListIncoming(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.IncomingRecord, int64, error)
	GetIncoming(ctx context.Context, tenantID uuid.UUID, id uint) (*model.IncomingRecord, error)

	CreateOutgoing(ctx context.Context, tenantID uuid.UUID, userID string, req DispatchRequest) (*model.OutgoingRecord, error)
	UpdateOutgoing(ctx context.Context, tenantID uuid.UUID, id uint, userID string, req DispatchRequest) (*model.OutgoingRecord, error)
	DeleteOutgoing(ctx context.Context, tenantID uuid.UUID, id uint, userID string) error
	BulkCreateOutgoing(ctx context.Context, tenantID uuid.UUID, userID string, reqs []DispatchRequest) ([]model.OutgoingRecord, error)
	BulkDeleteOutgoing(ctx context.Context, tenantID uuid.UUID, ids []uint, userID string) (int64, error)
	ListOutgoing(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.OutgoingRecord, int64, error)
	GetOutgoing(ctx context.Context, tenantID uuid.UUID, id uint) (*model.OutgoingRecord, error)

	CreateUsage(ctx context.Context, tenantID uuid.UUID, userID string, req DispatchRequest) (*model.MaterialUsageRecord, error)
	UpdateUsage(ctx context.Context, tenantID uuid.UUID, id uint, userID string, req DispatchRequest) (*model.MaterialUsageRecord, error)
	DeleteUsage(ctx context.Context, tenantID uuid.UUID, id uint, userID string) error
	BulkCreateUsage(ctx context.Context, tenantID uuid.UUID, userID string, reqs []DispatchRequest) ([]model.MaterialUsageRecord, error)
	BulkDeleteUsage(ctx context.Context, tenantID uuid.UUID, ids []uint, userID string) (int64, error)
	ListUsage(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.MaterialUsageRecord, int64, error)
	GetUsage(ctx context.Context, tenantID uuid.UUID, id uint) (*model.MaterialUsageRecord, error)
}

type ledgerService struct {
	itemRepo     repository.InventoryRepository
	incomingRepo repository.IncomingRepository
	outgoingRepo repository.OutgoingRepository
	usageRepo    repository.UsageRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
	enforceStock bool
}

func NewLedgerService(
	itemRepo repository.InventoryRepository,
	incomingRepo repository.IncomingRepository,
	outgoingRepo repository.OutgoingRepository,
	usageRepo repository.UsageRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	enforceStock bool,
) LedgerService {
	return &ledgerService{
		itemRepo:     itemRepo,
		incomingRepo: incomingRepo,
		outgoingRepo: outgoingRepo,
		usageRepo:    usageRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
		enforceStock: enforceStock,
	}
}

// --- shared reconciliation helpers ---

// resolveItemForUpdate locates the inventory item a ledger record belongs to
// and locks its row. The explicit item id wins; the identity tuple is the
// legacy fallback. Returns nil when nothing matches.
func (s *ledgerService) resolveItemForUpdate(ctx context.Context, tenantID uuid.UUID, itemID *uint, ident model.ItemIdentity) (*model.InventoryItem, error) {
	if itemID != nil {
		item, err := s.itemRepo.FindByIDForUpdate(ctx, tenantID, *itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("inventory item %d not found", *itemID)
			}
			return nil, fmt.Errorf("failed to lock inventory item: %w", err)
		}
		return item, nil
	}

	item, err := s.itemRepo.FindByIdentityForUpdate(ctx, tenantID, ident)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock inventory item: %w", err)
	}
	return item, nil
}

// resolveOrCreateItem resolves the matching item, creating a fresh snapshot
// row when the identity has never been seen. Used on every create path so
// bulk imports accumulate instead of silently dropping rows.
func (s *ledgerService) resolveOrCreateItem(ctx context.Context, tenantID uuid.UUID, itemID *uint, ident model.ItemIdentity, division string, unitPrice decimal.Decimal) (*model.InventoryItem, error) {
	item, err := s.resolveItemForUpdate(ctx, tenantID, itemID, ident)
	if err != nil || item != nil {
		return item, err
	}

	item = &model.InventoryItem{
		TenantID:      tenantID,
		Division:      ident.Division,
		Category:      division, // category defaults from division for auto-created items
		ProductName:   ident.ProductName,
		Specification: ident.Specification,
		UnitPrice:     unitPrice,
	}
	item.Recalculate()
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	logger.Debug().
		Str("tenant_id", tenantID.String()).
		Str("product", ident.ProductName).
		Msg("created inventory item for unseen ledger identity")
	return item, nil
}

// applyDelta shifts one accumulator and re-derives the snapshot. Negative
// deltas reverse a record's contribution. The capacity bounds are opt-in:
// when enforcement is off, violations are logged and allowed through, which
// mirrors trust-based field operations.
func (s *ledgerService) applyDelta(item *model.InventoryItem, kind ledgerKind, delta int) error {
	switch kind {
	case ledgerIncoming:
		item.ApplyIncoming(delta)
	case ledgerOutgoing:
		if s.enforceStock && delta > 0 && item.CarriedOver+item.Incoming-item.Outgoing-delta < 0 {
			return apperror.Capacity("dispatch of %d exceeds office stock %d for %s",
				delta, item.Remaining, item.ProductName)
		}
		item.ApplyOutgoing(delta)
		if item.Remaining < 0 {
			logger.Warn().
				Uint("item_id", item.ID).
				Int("remaining", item.Remaining).
				Msg("office stock went negative after dispatch")
		}
	case ledgerUsage:
		if s.enforceStock && delta > 0 && item.Usage+delta > item.Outgoing {
			return apperror.Capacity("usage of %d exceeds team-held stock %d for %s",
				delta, item.TeamStock(), item.ProductName)
		}
		item.ApplyUsage(delta)
		if item.Usage > item.Outgoing {
			logger.Warn().
				Uint("item_id", item.ID).
				Int("usage", item.Usage).
				Int("outgoing", item.Outgoing).
				Msg("usage exceeds dispatched quantity")
		}
	default:
		return apperror.Validation("unknown ledger kind %q", kind)
	}
	return item.CheckConsistency()
}

// reverseContribution subtracts a stored record's effect from its item. A
// missing item (deleted out-of-band) is tolerated on reversal paths.
func (s *ledgerService) reverseContribution(ctx context.Context, tenantID uuid.UUID, itemID *uint, ident model.ItemIdentity, kind ledgerKind, quantity int) error {
	item, err := s.resolveItemForUpdate(ctx, tenantID, itemID, ident)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil
		}
		return err
	}
	if item == nil {
		return nil
	}
	if err := s.applyDelta(item, kind, -quantity); err != nil {
		return err
	}
	return s.itemRepo.Save(ctx, item)
}

func (s *ledgerService) audit(ctx context.Context, tenantID uuid.UUID, userID, action, entityID, entityName string, payload interface{}) error {
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

// broadcastItem pushes the refreshed snapshot to the owning tenant's
// connected clients.
func (s *ledgerService) broadcastItem(item *model.InventoryItem) {
	if s.hub == nil || item == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event": "inventory.updated",
		"data": map[string]interface{}{
			"item_id":      item.ID,
			"product_name": item.ProductName,
			"remaining":    item.Remaining,
			"team_stock":   item.TeamStock(),
			"total_stock":  item.TotalStock(),
		},
	})
	if err != nil {
		return
	}
	select {
	case s.hub.Broadcast <- ws.Event{TenantID: item.TenantID, Payload: payload}:
	default:
	}
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return apperror.Validation("quantity must be positive, got %d", quantity)
	}
	return nil
}

// --- Incoming ---

// createIncomingTx runs the create path inside an existing transaction so the
// bulk import can reuse it row by row.
func (s *ledgerService) createIncomingTx(txCtx context.Context, tenantID uuid.UUID, userID string, req IncomingRequest) (*model.IncomingRecord, *model.InventoryItem, error) {
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, nil, err
	}
	if _, err := model.ParseRecordAttributes(req.Attributes); err != nil {
		return nil, nil, err
	}

	ident := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
	item, err := s.resolveOrCreateItem(txCtx, tenantID, req.InventoryItemID, ident, req.Division, req.UnitPrice)
	if err != nil {
		return nil, nil, err
	}

	record := &model.IncomingRecord{
		TenantID:        tenantID,
		Date:            req.Date,
		Division:        ident.Division,
		Category:        req.Category,
		Supplier:        req.Supplier,
		ProjectName:     req.ProjectName,
		ProductName:     ident.ProductName,
		Specification:   ident.Specification,
		Attributes:      req.Attributes,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		Remark:          req.Remark,
		InventoryItemID: &item.ID,
	}
	if parsed, err := uuid.Parse(userID); err == nil {
		record.CreatedBy = &parsed
	}
	if err := s.incomingRepo.Create(txCtx, record); err != nil {
		return nil, nil, fmt.Errorf("failed to create incoming record: %w", err)
	}

	if err := s.applyDelta(item, ledgerIncoming, req.Quantity); err != nil {
		return nil, nil, err
	}
	if err := s.itemRepo.Save(txCtx, item); err != nil {
		return nil, nil, fmt.Errorf("failed to update inventory snapshot: %w", err)
	}

	if err := s.audit(txCtx, tenantID, userID, model.ActionCreateIncoming,
		fmt.Sprintf("%d", record.ID), record.ProductName, req); err != nil {
		return nil, nil, err
	}

	return record, item, nil
}

func (s *ledgerService) CreateIncoming(ctx context.Context, tenantID uuid.UUID, userID string, req IncomingRequest) (*model.IncomingRecord, error) {
	var record *model.IncomingRecord
	var item *model.InventoryItem

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		record, item, txErr = s.createIncomingTx(txCtx, tenantID, userID, req)
		return txErr
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("incoming_create").Inc()
		return nil, err
	}

	metrics.LedgerOps.WithLabelValues("incoming", "create").Inc()
	s.broadcastItem(item)
	return record, nil
}

func (s *ledgerService) UpdateIncoming(ctx context.Context, tenantID uuid.UUID, id uint, userID string, req IncomingRequest) (*model.IncomingRecord, error) {
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if _, err := model.ParseRecordAttributes(req.Attributes); err != nil {
		return nil, err
	}

	var record *model.IncomingRecord
	var item *model.InventoryItem

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.incomingRepo.FindByID(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("incoming record %d not found", id)
			}
			return fmt.Errorf("failed to load incoming record: %w", findErr)
		}

		// Reverse the stored contribution before re-applying, otherwise an
		// edited quantity double-counts.
		oldIdent := model.NewItemIdentity(existing.Division, existing.ProductName, existing.Specification)
		if err := s.reverseContribution(txCtx, tenantID, existing.InventoryItemID, oldIdent, ledgerIncoming, existing.Quantity); err != nil {
			return err
		}

		newIdent := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
		target, resolveErr := s.resolveOrCreateItem(txCtx, tenantID, req.InventoryItemID, newIdent, req.Division, req.UnitPrice)
		if resolveErr != nil {
			return resolveErr
		}

		existing.Date = req.Date
		existing.Division = newIdent.Division
		existing.Category = req.Category
		existing.Supplier = req.Supplier
		existing.ProjectName = req.ProjectName
		existing.ProductName = newIdent.ProductName
		existing.Specification = newIdent.Specification
		existing.Attributes = req.Attributes
		existing.Quantity = req.Quantity
		existing.UnitPrice = req.UnitPrice
		existing.Remark = req.Remark
		existing.InventoryItemID = &target.ID
		if err := s.incomingRepo.Save(txCtx, existing); err != nil {
			return fmt.Errorf("failed to update incoming record: %w", err)
		}

		if err := s.applyDelta(target, ledgerIncoming, req.Quantity); err != nil {
			return err
		}
		if err := s.itemRepo.Save(txCtx, target); err != nil {
			return fmt.Errorf("failed to update inventory snapshot: %w", err)
		}

		record = existing
		item = target
		return s.audit(txCtx, tenantID, userID, model.ActionUpdateIncoming,
			fmt.Sprintf("%d", existing.ID), existing.ProductName, req)
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("incoming_update").Inc()
		return nil, err
	}

	metrics.LedgerOps.WithLabelValues("incoming", "update").Inc()
	s.broadcastItem(item)
	return record, nil
}

func (s *ledgerService) DeleteIncoming(ctx context.Context, tenantID uuid.UUID, id uint, userID string) error {
	var item *model.InventoryItem

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.incomingRepo.FindByID(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("incoming record %d not found", id)
			}
			return fmt.Errorf("failed to load incoming record: %w", findErr)
		}

		ident := model.NewItemIdentity(existing.Division, existing.ProductName, existing.Specification)
		target, resolveErr := s.resolveItemForUpdate(txCtx, tenantID, existing.InventoryItemID, ident)
		if resolveErr != nil && !apperror.IsKind(resolveErr, apperror.KindNotFound) {
			return resolveErr
		}
		if target != nil {
			if err := s.applyDelta(target, ledgerIncoming, -existing.Quantity); err != nil {
				return err
			}
			if err := s.itemRepo.Save(txCtx, target); err != nil {
				return fmt.Errorf("failed to update inventory snapshot: %w", err)
			}
		}

		if _, err := s.incomingRepo.Delete(txCtx, tenantID, id); err != nil {
			return fmt.Errorf("failed to delete incoming record: %w", err)
		}

		item = target
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteIncoming,
			fmt.Sprintf("%d", id), existing.ProductName, map[string]interface{}{"quantity": existing.Quantity})
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("incoming_delete").Inc()
		return err
	}

	metrics.LedgerOps.WithLabelValues("incoming", "delete").Inc()
	s.broadcastItem(item)
	return nil
}

func (s *ledgerService) BulkCreateIncoming(ctx context.Context, tenantID uuid.UUID, userID string, reqs []IncomingRequest) ([]model.IncomingRecord, error) {
	records := make([]model.IncomingRecord, 0, len(reqs))

	// One transaction, rows applied in input order: duplicate identities in
	// the same batch must accumulate, not overwrite.
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i, req := range reqs {
			record, _, rowErr := s.createIncomingTx(txCtx, tenantID, userID, req)
			if rowErr != nil {
				return fmt.Errorf("row %d: %w", i, rowErr)
			}
			records = append(records, *record)
		}
		return nil
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("incoming_bulk").Inc()
		return nil, err
	}

	metrics.LedgerOps.WithLabelValues("incoming", "bulk_create").Inc()
	return records, nil
}

func (s *ledgerService) BulkDeleteIncoming(ctx context.Context, tenantID uuid.UUID, ids []uint, userID string) (int64, error) {
	var deleted int64
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, id := range ids {
			existing, findErr := s.incomingRepo.FindByID(txCtx, tenantID, id)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					continue
				}
				return fmt.Errorf("failed to load incoming record %d: %w", id, findErr)
			}
			ident := model.NewItemIdentity(existing.Division, existing.ProductName, existing.Specification)
			if err := s.reverseContribution(txCtx, tenantID, existing.InventoryItemID, ident, ledgerIncoming, existing.Quantity); err != nil {
				return err
			}
			if _, err := s.incomingRepo.Delete(txCtx, tenantID, id); err != nil {
				return fmt.Errorf("failed to delete incoming record %d: %w", id, err)
			}
			deleted++
		}
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteIncoming, "bulk", "",
			map[string]interface{}{"ids": ids, "deleted": deleted})
	})
	if err != nil {
		return 0, err
	}
	metrics.LedgerOps.WithLabelValues("incoming", "bulk_delete").Inc()
	return deleted, nil
}

func (s *ledgerService) ListIncoming(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.IncomingRecord, int64, error) {
	return s.incomingRepo.List(ctx, tenantID, page, limit)
}

func (s *ledgerService) GetIncoming(ctx context.Context, tenantID uuid.UUID, id uint) (*model.IncomingRecord, error) {
	record, err := s.incomingRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("incoming record %d not found", id)
		}
		return nil, err
	}
	return record, nil
}

// --- Outgoing ---

func (s *ledgerService) createOutgoingTx(txCtx context.Context, tenantID uuid.UUID, userID string, req DispatchRequest) (*model.OutgoingRecord, *model.InventoryItem, error) {
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, nil, err
	}
	if _, err := model.ParseRecordAttributes(req.Attributes); err != nil {
		return nil, nil, err
	}

	ident := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
	item, err := s.resolveOrCreateItem(txCtx, tenantID, req.InventoryItemID, ident, req.Division, decimal.Zero)
	if err != nil {
		return nil, nil, err
	}

	record := &model.OutgoingRecord{
		TenantID:        tenantID,
		Date:            req.Date,
		Division:        ident.Division,
		Category:        req.Category,
		TeamCategory:    req.TeamCategory,
		ProjectName:     req.ProjectName,
		ProductName:     ident.ProductName,
		Specification:   ident.Specification,
		Attributes:      req.Attributes,
		Quantity:        req.Quantity,
		Recipient:       req.Recipient,
		Remark:          req.Remark,
		InventoryItemID: &item.ID,
	}
	if parsed, err := uuid.Parse(userID); err == nil {
		record.CreatedBy = &parsed
	}
	if err := s.outgoingRepo.Create(txCtx, record); err != nil {
		return nil, nil, fmt.Errorf("failed to create outgoing record: %w", err)
	}

	if err := s.applyDelta(item, ledgerOutgoing, req.Quantity); err != nil {
		return nil, nil, err
	}
	if err := s.itemRepo.Save(txCtx, item); err != nil {
		return nil, nil, fmt.Errorf("failed to update inventory snapshot: %w", err)
	}

	if err := s.audit(txCtx, tenantID, userID, model.ActionCreateOutgoing,
		fmt.Sprintf("%d", record.ID), record.ProductName, req); err != nil {
		return nil, nil, err
	}

	return record, item, nil
}

func (s *ledgerService) CreateOutgoing(ctx context.Context, tenantID uuid.UUID, userID string, req DispatchRequest) (*model.OutgoingRecord, error) {
	var record *model.OutgoingRecord
	var item *model.InventoryItem

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		record, item, txErr = s.createOutgoingTx(txCtx, tenantID, userID, req)
		return txErr
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("outgoing_create").Inc()
		return nil, err
	}

	metrics.LedgerOps.WithLabelValues("outgoing", "create").Inc()
	s.broadcastItem(item)
	return record, nil
}

func (s *ledgerService) UpdateOutgoing(ctx context.Context, tenantID uuid.UUID, id uint, userID string, req DispatchRequest) (*model.OutgoingRecord, error) {
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if _, err := model.ParseRecordAttributes(req.Attributes); err != nil {
		return nil, err
	}

	var record *model.OutgoingRecord
	var item *model.InventoryItem

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.outgoingRepo.FindByID(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("outgoing record %d not found", id)
			}
			return fmt.Errorf("failed to load outgoing record: %w", findErr)
		}

		oldIdent := model.NewItemIdentity(existing.Division, existing.ProductName, existing.Specification)
		if err := s.reverseContribution(txCtx, tenantID, existing.InventoryItemID, oldIdent, ledgerOutgoing, existing.Quantity); err != nil {
			return err
		}

		newIdent := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
		target, resolveErr := s.resolveOrCreateItem(txCtx, tenantID, req.InventoryItemID, newIdent, req.Division, decimal.Zero)
		if resolveErr != nil {
			return resolveErr
		}

		existing.Date = req.Date
		existing.Division = newIdent.Division
		existing.Category = req.Category
		existing.TeamCategory = req.TeamCategory
		existing.ProjectName = req.ProjectName
		existing.ProductName = newIdent.ProductName
		existing.Specification = newIdent.Specification
		existing.Attributes = req.Attributes
		existing.Quantity = req.Quantity
		existing.Recipient = req.Recipient
		existing.Remark = req.Remark
		existing.InventoryItemID = &target.ID
		if err := s.outgoingRepo.Save(txCtx, existing); err != nil {
			return fmt.Errorf("failed to update outgoing record: %w", err)
		}

		if err := s.applyDelta(target, ledgerOutgoing, req.Quantity); err != nil {
			return err
		}
		if err := s.itemRepo.Save(txCtx, target); err != nil {
			return fmt.Errorf("failed to update inventory snapshot: %w", err)
		}

		record = existing
		item = target
		return s.audit(txCtx, tenantID, userID, model.ActionUpdateOutgoing,
			fmt.Sprintf("%d", existing.ID), existing.ProductName, req)
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("outgoing_update").Inc()
		return nil, err
	}

	metrics.LedgerOps.WithLabelValues("outgoing", "update").Inc()
	s.broadcastItem(item)
	return record, nil
}

func (s *ledgerService) DeleteOutgoing(ctx context.Context, tenantID uuid.UUID, id uint, userID string) error {
	var item *model.InventoryItem

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.outgoingRepo.FindByID(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("outgoing record %d not found", id)
			}
			return fmt.Errorf("failed to load outgoing record: %w", findErr)
		}

		ident := model.NewItemIdentity(existing.Division, existing.ProductName, existing.Specification)
		target, resolveErr := s.resolveItemForUpdate(txCtx, tenantID, existing.InventoryItemID, ident)
		if resolveErr != nil && !apperror.IsKind(resolveErr, apperror.KindNotFound) {
			return resolveErr
		}
		if target != nil {
			if err := s.applyDelta(target, ledgerOutgoing, -existing.Quantity); err != nil {
				return err
			}
			if err := s.itemRepo.Save(txCtx, target); err != nil {
				return fmt.Errorf("failed to update inventory snapshot: %w", err)
			}
		}

		if _, err := s.outgoingRepo.Delete(txCtx, tenantID, id); err != nil {
			return fmt.Errorf("failed to delete outgoing record: %w", err)
		}

		item = target
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteOutgoing,
			fmt.Sprintf("%d", id), existing.ProductName, map[string]interface{}{"quantity": existing.Quantity})
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("outgoing_delete").Inc()
		return err
	}

	metrics.LedgerOps.WithLabelValues("outgoing", "delete").Inc()
	s.broadcastItem(item)
	return nil
}

func (s *ledgerService) BulkCreateOutgoing(ctx context.Context, tenantID uuid.UUID, userID string, reqs []DispatchRequest) ([]model.OutgoingRecord, error) {
	records := make([]model.OutgoingRecord, 0, len(reqs))
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i, req := range reqs {
			record, _, rowErr := s.createOutgoingTx(txCtx, tenantID, userID, req)
			if rowErr != nil {
				return fmt.Errorf("row %d: %w", i, rowErr)
			}
			records = append(records, *record)
		}
		return nil
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("outgoing_bulk").Inc()
		return nil, err
	}
	metrics.LedgerOps.WithLabelValues("outgoing", "bulk_create").Inc()
	return records, nil
}

func (s *ledgerService) BulkDeleteOutgoing(ctx context.Context, tenantID uuid.UUID, ids []uint, userID string) (int64, error) {
	var deleted int64
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, id := range ids {
			existing, findErr := s.outgoingRepo.FindByID(txCtx, tenantID, id)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					continue
				}
				return fmt.Errorf("failed to load outgoing record %d: %w", id, findErr)
			}
			ident := model.NewItemIdentity(existing.Division, existing.ProductName, existing.Specification)
			if err := s.reverseContribution(txCtx, tenantID, existing.InventoryItemID, ident, ledgerOutgoing, existing.Quantity); err != nil {
				return err
			}
			if _, err := s.outgoingRepo.Delete(txCtx, tenantID, id); err != nil {
				return fmt.Errorf("failed to delete outgoing record %d: %w", id, err)
			}
			deleted++
		}
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteOutgoing, "bulk", "",
			map[string]interface{}{"ids": ids, "deleted": deleted})
	})
	if err != nil {
		return 0, err
	}
	metrics.LedgerOps.WithLabelValues("outgoing", "bulk_delete").Inc()
	return deleted, nil
}

func (s *ledgerService) ListOutgoing(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.OutgoingRecord, int64, error) {
	return s.outgoingRepo.List(ctx, tenantID, page, limit)
}

func (s *ledgerService) GetOutgoing(ctx context.Context, tenantID uuid.UUID, id uint) (*model.OutgoingRecord, error) {
	record, err := s.outgoingRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("outgoing record %d not found", id)
		}
		return nil, err
	}
	return record, nil
}

// --- Usage ---

func (s *ledgerService) createUsageTx(txCtx context.Context, tenantID uuid.UUID, userID string, req DispatchRequest) (*model.MaterialUsageRecord, *model.InventoryItem, error) {
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, nil, err
	}
	if _, err := model.ParseRecordAttributes(req.Attributes); err != nil {
		return nil, nil, err
	}

	ident := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
	item, err := s.resolveOrCreateItem(txCtx, tenantID, req.InventoryItemID, ident, req.Division, decimal.Zero)
	if err != nil {
		return nil, nil, err
	}

	record := &model.MaterialUsageRecord{
		TenantID:        tenantID,
		Date:            req.Date,
		Division:        ident.Division,
		Category:        req.Category,
		TeamCategory:    req.TeamCategory,
		ProjectName:     req.ProjectName,
		ProductName:     ident.ProductName,
		Specification:   ident.Specification,
		Attributes:      req.Attributes,
		Quantity:        req.Quantity,
		Recipient:       req.Recipient,
		Remark:          req.Remark,
		InventoryItemID: &item.ID,
	}
	if parsed, err := uuid.Parse(userID); err == nil {
		record.CreatedBy = &parsed
	}
	if err := s.usageRepo.Create(txCtx, record); err != nil {
		return nil, nil, fmt.Errorf("failed to create usage record: %w", err)
	}

	if err := s.applyDelta(item, ledgerUsage, req.Quantity); err != nil {
		return nil, nil, err
	}
	if err := s.itemRepo.Save(txCtx, item); err != nil {
		return nil, nil, fmt.Errorf("failed to update inventory snapshot: %w", err)
	}

	if err := s.audit(txCtx, tenantID, userID, model.ActionCreateUsage,
		fmt.Sprintf("%d", record.ID), record.ProductName, req); err != nil {
		return nil, nil, err
	}

	return record, item, nil
}

func (s *ledgerService) CreateUsage(ctx context.Context, tenantID uuid.UUID, userID string, req DispatchRequest) (*model.MaterialUsageRecord, error) {
	var record *model.MaterialUsageRecord
	var item *model.InventoryItem

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		record, item, txErr = s.createUsageTx(txCtx, tenantID, userID, req)
		return txErr
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("usage_create").Inc()
		return nil, err
	}

	metrics.LedgerOps.WithLabelValues("usage", "create").Inc()
	s.broadcastItem(item)
	return record, nil
}

func (s *ledgerService) UpdateUsage(ctx context.Context, tenantID uuid.UUID, id uint, userID string, req DispatchRequest) (*model.MaterialUsageRecord, error) {
	if err := validateQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if _, err := model.ParseRecordAttributes(req.Attributes); err != nil {
		return nil, err
	}

	var record *model.MaterialUsageRecord
	var item *model.InventoryItem

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.usageRepo.FindByID(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("usage record %d not found", id)
			}
			return fmt.Errorf("failed to load usage record: %w", findErr)
		}

		oldIdent := model.NewItemIdentity(existing.Division, existing.ProductName, existing.Specification)
		if err := s.reverseContribution(txCtx, tenantID, existing.InventoryItemID, oldIdent, ledgerUsage, existing.Quantity); err != nil {
			return err
		}

		newIdent := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
		target, resolveErr := s.resolveOrCreateItem(txCtx, tenantID, req.InventoryItemID, newIdent, req.Division, decimal.Zero)
		if resolveErr != nil {
			return resolveErr
		}

		existing.Date = req.Date
		existing.Division = newIdent.Division
		existing.Category = req.Category
		existing.TeamCategory = req.TeamCategory
		existing.ProjectName = req.ProjectName
		existing.ProductName = newIdent.ProductName
		existing.Specification = newIdent.Specification
		existing.Attributes = req.Attributes
		existing.Quantity = req.Quantity
		existing.Recipient = req.Recipient
		existing.Remark = req.Remark
		existing.InventoryItemID = &target.ID
		if err := s.usageRepo.Save(txCtx, existing); err != nil {
			return fmt.Errorf("failed to update usage record: %w", err)
		}

		if err := s.applyDelta(target, ledgerUsage, req.Quantity); err != nil {
			return err
		}
		if err := s.itemRepo.Save(txCtx, target); err != nil {
			return fmt.Errorf("failed to update inventory snapshot: %w", err)
		}

		record = existing
		item = target
		return s.audit(txCtx, tenantID, userID, model.ActionUpdateUsage,
			fmt.Sprintf("%d", existing.ID), existing.ProductName, req)
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("usage_update").Inc()
		return nil, err
	}

	metrics.LedgerOps.WithLabelValues("usage", "update").Inc()
	s.broadcastItem(item)
	return record, nil
}

func (s *ledgerService) DeleteUsage(ctx context.Context, tenantID uuid.UUID, id uint, userID string) error {
	var item *model.InventoryItem

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.usageRepo.FindByID(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("usage record %d not found", id)
			}
			return fmt.Errorf("failed to load usage record: %w", findErr)
		}

		ident := model.NewItemIdentity(existing.Division, existing.ProductName, existing.Specification)
		target, resolveErr := s.resolveItemForUpdate(txCtx, tenantID, existing.InventoryItemID, ident)
		if resolveErr != nil && !apperror.IsKind(resolveErr, apperror.KindNotFound) {
			return resolveErr
		}
		if target != nil {
			if err := s.applyDelta(target, ledgerUsage, -existing.Quantity); err != nil {
				return err
			}
			if err := s.itemRepo.Save(txCtx, target); err != nil {
				return fmt.Errorf("failed to update inventory snapshot: %w", err)
			}
		}

		if _, err := s.usageRepo.Delete(txCtx, tenantID, id); err != nil {
			return fmt.Errorf("failed to delete usage record: %w", err)
		}

		item = target
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteUsage,
			fmt.Sprintf("%d", id), existing.ProductName, map[string]interface{}{"quantity": existing.Quantity})
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("usage_delete").Inc()
		return err
	}

	metrics.LedgerOps.WithLabelValues("usage", "delete").Inc()
	s.broadcastItem(item)
	return nil
}

func (s *ledgerService) BulkCreateUsage(ctx context.Context, tenantID uuid.UUID, userID string, reqs []DispatchRequest) ([]model.MaterialUsageRecord, error) {
	records := make([]model.MaterialUsageRecord, 0, len(reqs))
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i, req := range reqs {
			record, _, rowErr := s.createUsageTx(txCtx, tenantID, userID, req)
			if rowErr != nil {
				return fmt.Errorf("row %d: %w", i, rowErr)
			}
			records = append(records, *record)
		}
		return nil
	})
	if err != nil {
		metrics.ReconcileFailures.WithLabelValues("usage_bulk").Inc()
		return nil, err
	}
	metrics.LedgerOps.WithLabelValues("usage", "bulk_create").Inc()
	return records, nil
}

func (s *ledgerService) BulkDeleteUsage(ctx context.Context, tenantID uuid.UUID, ids []uint, userID string) (int64, error) {
	var deleted int64
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, id := range ids {
			existing, findErr := s.usageRepo.FindByID(txCtx, tenantID, id)
			if findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					continue
				}
				return fmt.Errorf("failed to load usage record %d: %w", id, findErr)
			}
			ident := model.NewItemIdentity(existing.Division, existing.ProductName, existing.Specification)
			if err := s.reverseContribution(txCtx, tenantID, existing.InventoryItemID, ident, ledgerUsage, existing.Quantity); err != nil {
				return err
			}
			if _, err := s.usageRepo.Delete(txCtx, tenantID, id); err != nil {
				return fmt.Errorf("failed to delete usage record %d: %w", id, err)
			}
			deleted++
		}
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteUsage, "bulk", "",
			map[string]interface{}{"ids": ids, "deleted": deleted})
	})
	if err != nil {
		return 0, err
	}
	metrics.LedgerOps.WithLabelValues("usage", "bulk_delete").Inc()
	return deleted, nil
}

func (s *ledgerService) ListUsage(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.MaterialUsageRecord, int64, error) {
	return s.usageRepo.List(ctx, tenantID, page, limit)
}

func (s *ledgerService) GetUsage(ctx context.Context, tenantID uuid.UUID, id uint) (*model.MaterialUsageRecord, error) {
	record, err := s.usageRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("usage record %d not found", id)
		}
		return nil, err
	}
	return record, nil
}
