package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"
	"backend/pkg/logger"
	"backend/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventoryItemRequest struct {
	Division      string          `json:"division" binding:"required"`
	Category      string          `json:"category"`
	ProductName   string          `json:"product_name" binding:"required"`
	Specification string          `json:"specification"`
	CarriedOver   int             `json:"carried_over"`
	Incoming      int             `json:"incoming"`
	Outgoing      int             `json:"outgoing"`
	Usage         int             `json:"usage"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

// ItemDiscrepancy is one item whose snapshot accumulators disagree with the
// ledger sums.
type ItemDiscrepancy struct {
	ItemID           uint   `json:"item_id"`
	ProductName      string `json:"product_name"`
	Specification    string `json:"specification"`
	Division         string `json:"division"`
	SnapshotIncoming int    `json:"snapshot_incoming"`
	LedgerIncoming   int64  `json:"ledger_incoming"`
	SnapshotOutgoing int    `json:"snapshot_outgoing"`
	LedgerOutgoing   int64  `json:"ledger_outgoing"`
	SnapshotUsage    int    `json:"snapshot_usage"`
	LedgerUsage      int64  `json:"ledger_usage"`
}

// AuditReport summarizes a full snapshot-vs-ledger comparison.
type AuditReport struct {
	ItemsChecked  int               `json:"items_checked"`
	Discrepancies []ItemDiscrepancy `json:"discrepancies"`
}

type InventoryService interface {
	List(ctx context.Context, tenantID uuid.UUID, page, limit int, search string) ([]model.InventoryItem, int64, error)
	Get(ctx context.Context, tenantID uuid.UUID, id uint) (*model.InventoryItem, error)
	Create(ctx context.Context, tenantID uuid.UUID, userID string, req InventoryItemRequest) (*model.InventoryItem, error)
	Update(ctx context.Context, tenantID uuid.UUID, id uint, userID string, req InventoryItemRequest) (*model.InventoryItem, error)
	Delete(ctx context.Context, tenantID uuid.UUID, id uint, userID string) error
	BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uint, userID string) (int64, error)
	Seed(ctx context.Context, tenantID uuid.UUID, userID string, reqs []InventoryItemRequest) ([]model.InventoryItem, error)
	Sync(ctx context.Context, tenantID uuid.UUID, userID string, reqs []InventoryItemRequest) (created, updated int, err error)
	Clear(ctx context.Context, tenantID uuid.UUID, userID string) error
	Audit(ctx context.Context, tenantID uuid.UUID, userID string) (*AuditReport, error)
}

type inventoryService struct {
	itemRepo     repository.InventoryRepository
	incomingRepo repository.IncomingRepository
	outgoingRepo repository.OutgoingRepository
	usageRepo    repository.UsageRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewInventoryService(
	itemRepo repository.InventoryRepository,
	incomingRepo repository.IncomingRepository,
	outgoingRepo repository.OutgoingRepository,
	usageRepo repository.UsageRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) InventoryService {
	return &inventoryService{
		itemRepo:     itemRepo,
		incomingRepo: incomingRepo,
		outgoingRepo: outgoingRepo,
		usageRepo:    usageRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

func (s *inventoryService) audit(ctx context.Context, tenantID uuid.UUID, userID, action, entityID, entityName string, payload interface{}) error {
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

func itemFromRequest(tenantID uuid.UUID, req InventoryItemRequest) *model.InventoryItem {
	ident := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
	category := req.Category
	if category == "" {
		category = ident.Division
	}
	item := &model.InventoryItem{
		TenantID:      tenantID,
		Division:      ident.Division,
		Category:      category,
		ProductName:   ident.ProductName,
		Specification: ident.Specification,
		CarriedOver:   req.CarriedOver,
		Incoming:      req.Incoming,
		Outgoing:      req.Outgoing,
		Usage:         req.Usage,
		UnitPrice:     req.UnitPrice,
	}
	item.Recalculate()
	return item
}

func (s *inventoryService) List(ctx context.Context, tenantID uuid.UUID, page, limit int, search string) ([]model.InventoryItem, int64, error) {
	return s.itemRepo.List(ctx, tenantID, page, limit, search)
}

func (s *inventoryService) Get(ctx context.Context, tenantID uuid.UUID, id uint) (*model.InventoryItem, error) {
	item, err := s.itemRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("inventory item %d not found", id)
		}
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) Create(ctx context.Context, tenantID uuid.UUID, userID string, req InventoryItemRequest) (*model.InventoryItem, error) {
	ident := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
	if ident.ProductName == "" {
		return nil, apperror.Validation("product name is required")
	}

	var item *model.InventoryItem
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.itemRepo.FindByIdentity(txCtx, tenantID, ident); findErr == nil {
			return apperror.StateConflict("inventory item already exists for %s / %s / %s",
				ident.Division, ident.ProductName, ident.Specification)
		} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		item = itemFromRequest(tenantID, req)
		if err := s.itemRepo.Create(txCtx, item); err != nil {
			return fmt.Errorf("failed to create inventory item: %w", err)
		}
		return s.audit(txCtx, tenantID, userID, model.ActionCreateInventoryItem,
			fmt.Sprintf("%d", item.ID), item.ProductName, req)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update edits descriptive fields and the opening balance. The ledger-fed
// accumulators are owned by the reconciliation engine and are not patched here.
func (s *inventoryService) Update(ctx context.Context, tenantID uuid.UUID, id uint, userID string, req InventoryItemRequest) (*model.InventoryItem, error) {
	var item *model.InventoryItem
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.itemRepo.FindByIDForUpdate(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("inventory item %d not found", id)
			}
			return fmt.Errorf("failed to lock inventory item: %w", findErr)
		}

		ident := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
		if ident.ProductName != "" {
			existing.Division = ident.Division
			existing.ProductName = ident.ProductName
			existing.Specification = ident.Specification
		}
		if req.Category != "" {
			existing.Category = req.Category
		}
		existing.CarriedOver = req.CarriedOver
		existing.UnitPrice = req.UnitPrice
		existing.Recalculate()
		if err := existing.CheckConsistency(); err != nil {
			return err
		}
		if err := s.itemRepo.Save(txCtx, existing); err != nil {
			return fmt.Errorf("failed to update inventory item: %w", err)
		}

		item = existing
		return s.audit(txCtx, tenantID, userID, model.ActionUpdateInventoryItem,
			fmt.Sprintf("%d", existing.ID), existing.ProductName, req)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a snapshot row only. Ledger records keep their stored item id
// and simply stop resolving; re-creating the identity starts a fresh snapshot.
func (s *inventoryService) Delete(ctx context.Context, tenantID uuid.UUID, id uint, userID string) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.itemRepo.FindByID(txCtx, tenantID, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("inventory item %d not found", id)
			}
			return fmt.Errorf("failed to load inventory item: %w", findErr)
		}
		if _, err := s.itemRepo.Delete(txCtx, tenantID, id); err != nil {
			return fmt.Errorf("failed to delete inventory item: %w", err)
		}
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteInventoryItem,
			fmt.Sprintf("%d", id), existing.ProductName, nil)
	})
}

func (s *inventoryService) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uint, userID string) (int64, error) {
	var deleted int64
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		deleted, txErr = s.itemRepo.BulkDelete(txCtx, tenantID, ids)
		if txErr != nil {
			return fmt.Errorf("failed to delete inventory items: %w", txErr)
		}
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteInventoryItem, "bulk", "",
			map[string]interface{}{"ids": ids, "deleted": deleted})
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Seed bulk-creates snapshot rows, typically an opening-balance import. Rows
// whose identity already exists fail the whole batch.
func (s *inventoryService) Seed(ctx context.Context, tenantID uuid.UUID, userID string, reqs []InventoryItemRequest) ([]model.InventoryItem, error) {
	items := make([]model.InventoryItem, 0, len(reqs))
	for i, req := range reqs {
		ident := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
		if ident.ProductName == "" {
			return nil, apperror.Validation("row %d: product name is required", i)
		}
		items = append(items, *itemFromRequest(tenantID, req))
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		created, createErr := s.itemRepo.CreateBatch(txCtx, items)
		if createErr != nil {
			return fmt.Errorf("failed to seed inventory: %w", createErr)
		}
		items = created
		return s.audit(txCtx, tenantID, userID, model.ActionSeedInventory, "bulk", "",
			map[string]interface{}{"count": len(created)})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Sync upserts snapshot rows by identity: existing rows take the imported
// accumulators, unseen identities become new rows. Used when re-importing a
// spreadsheet export over live data.
func (s *inventoryService) Sync(ctx context.Context, tenantID uuid.UUID, userID string, reqs []InventoryItemRequest) (int, int, error) {
	var created, updated int
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i, req := range reqs {
			ident := model.NewItemIdentity(req.Division, req.ProductName, req.Specification)
			if ident.ProductName == "" {
				return apperror.Validation("row %d: product name is required", i)
			}

			existing, findErr := s.itemRepo.FindByIdentityForUpdate(txCtx, tenantID, ident)
			if findErr != nil {
				if !errors.Is(findErr, gorm.ErrRecordNotFound) {
					return fmt.Errorf("row %d: %w", i, findErr)
				}
				item := itemFromRequest(tenantID, req)
				if err := s.itemRepo.Create(txCtx, item); err != nil {
					return fmt.Errorf("row %d: failed to create inventory item: %w", i, err)
				}
				created++
				continue
			}

			existing.Category = req.Category
			if existing.Category == "" {
				existing.Category = ident.Division
			}
			existing.CarriedOver = req.CarriedOver
			existing.Incoming = req.Incoming
			existing.Outgoing = req.Outgoing
			existing.Usage = req.Usage
			existing.UnitPrice = req.UnitPrice
			existing.Recalculate()
			if err := s.itemRepo.Save(txCtx, existing); err != nil {
				return fmt.Errorf("row %d: failed to update inventory item: %w", i, err)
			}
			updated++
		}
		return s.audit(txCtx, tenantID, userID, model.ActionSyncInventory, "bulk", "",
			map[string]interface{}{"created": created, "updated": updated})
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

func (s *inventoryService) Clear(ctx context.Context, tenantID uuid.UUID, userID string) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.itemRepo.Clear(txCtx, tenantID); err != nil {
			return fmt.Errorf("failed to clear inventory: %w", err)
		}
		return s.audit(txCtx, tenantID, userID, model.ActionDeleteInventoryItem, "all", "", nil)
	})
}

// Audit compares every snapshot row against the summed ledgers inside one
// transaction, so the comparison sees a consistent point in time. Carried-over
// balances are excluded: only ledger-fed accumulators are checked.
func (s *inventoryService) Audit(ctx context.Context, tenantID uuid.UUID, userID string) (*AuditReport, error) {
	report := &AuditReport{Discrepancies: []ItemDiscrepancy{}}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		items, listErr := s.itemRepo.ListAll(txCtx, tenantID)
		if listErr != nil {
			return fmt.Errorf("failed to list inventory: %w", listErr)
		}
		report.ItemsChecked = len(items)

		for _, item := range items {
			ident := item.Identity()

			incomingSum, err := s.incomingRepo.SumMatching(txCtx, tenantID, item.ID, ident)
			if err != nil {
				return fmt.Errorf("failed to sum incoming for item %d: %w", item.ID, err)
			}
			outgoingSum, err := s.outgoingRepo.SumMatching(txCtx, tenantID, item.ID, ident)
			if err != nil {
				return fmt.Errorf("failed to sum outgoing for item %d: %w", item.ID, err)
			}
			usageSum, err := s.usageRepo.SumMatching(txCtx, tenantID, item.ID, ident)
			if err != nil {
				return fmt.Errorf("failed to sum usage for item %d: %w", item.ID, err)
			}

			if int64(item.Incoming) != incomingSum ||
				int64(item.Outgoing) != outgoingSum ||
				int64(item.Usage) != usageSum {
				report.Discrepancies = append(report.Discrepancies, ItemDiscrepancy{
					ItemID:           item.ID,
					ProductName:      item.ProductName,
					Specification:    item.Specification,
					Division:         item.Division,
					SnapshotIncoming: item.Incoming,
					LedgerIncoming:   incomingSum,
					SnapshotOutgoing: item.Outgoing,
					LedgerOutgoing:   outgoingSum,
					SnapshotUsage:    item.Usage,
					LedgerUsage:      usageSum,
				})
			}
		}

		return s.audit(txCtx, tenantID, userID, model.ActionAuditInventory, "all", "",
			map[string]interface{}{
				"items_checked": report.ItemsChecked,
				"discrepancies": len(report.Discrepancies),
			})
	})
	if err != nil {
		return nil, err
	}

	if len(report.Discrepancies) > 0 {
		metrics.ReconcileFailures.WithLabelValues("audit_discrepancy").Add(float64(len(report.Discrepancies)))
		logger.Warn().
			Str("tenant_id", tenantID.String()).
			Int("discrepancies", len(report.Discrepancies)).
			Msg("inventory audit found snapshot drift")
	}
	return report, nil
}
