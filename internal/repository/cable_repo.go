package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CableRepository interface {
	Create(ctx context.Context, cable *model.OpticalCable) error
	Save(ctx context.Context, cable *model.OpticalCable) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (int64, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.OpticalCable, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.OpticalCable, error)
	List(ctx context.Context, tenantID uuid.UUID, withLogs bool) ([]model.OpticalCable, error)
	CreateLog(ctx context.Context, log *model.OpticalCableLog) error
	ListLogs(ctx context.Context, tenantID, cableID uuid.UUID) ([]model.OpticalCableLog, error)
	ListAllLogs(ctx context.Context, tenantID uuid.UUID) ([]model.OpticalCableLog, error)
	BulkDeleteLogs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type cableRepository struct {
	db *gorm.DB
}

func NewCableRepository(db *gorm.DB) CableRepository {
	return &cableRepository{db: db}
}

func (r *cableRepository) Create(ctx context.Context, cable *model.OpticalCable) error {
	return GetDB(ctx, r.db).Create(cable).Error
}

func (r *cableRepository) Save(ctx context.Context, cable *model.OpticalCable) error {
	return GetDB(ctx, r.db).Save(cable).Error
}

func (r *cableRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.OpticalCable{})
	return res.RowsAffected > 0, res.Error
}

func (r *cableRepository) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := GetDB(ctx, r.db).Where("tenant_id = ? AND id IN ?", tenantID, ids).Delete(&model.OpticalCable{})
	return res.RowsAffected, res.Error
}

func (r *cableRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.OpticalCable, error) {
	var cable model.OpticalCable
	if err := GetDB(ctx, r.db).First(&cable, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &cable, nil
}

// FindByIDForUpdate locks the drum row so concurrent usage/waste transitions
// serialize instead of racing remaining_length.
func (r *cableRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.OpticalCable, error) {
	var cable model.OpticalCable
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).First(&cable).Error; err != nil {
		return nil, err
	}
	return &cable, nil
}

func (r *cableRepository) List(ctx context.Context, tenantID uuid.UUID, withLogs bool) ([]model.OpticalCable, error) {
	var cables []model.OpticalCable
	db := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Order("created_at desc")
	if withLogs {
		db = db.Preload("Logs", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at asc")
		})
	}
	if err := db.Find(&cables).Error; err != nil {
		return nil, err
	}
	return cables, nil
}

func (r *cableRepository) CreateLog(ctx context.Context, log *model.OpticalCableLog) error {
	return GetDB(ctx, r.db).Create(log).Error
}

func (r *cableRepository) ListLogs(ctx context.Context, tenantID, cableID uuid.UUID) ([]model.OpticalCableLog, error) {
	var logs []model.OpticalCableLog
	if err := GetDB(ctx, r.db).
		Where("tenant_id = ? AND cable_id = ?", tenantID, cableID).
		Order("created_at asc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *cableRepository) ListAllLogs(ctx context.Context, tenantID uuid.UUID) ([]model.OpticalCableLog, error) {
	var logs []model.OpticalCableLog
	if err := GetDB(ctx, r.db).
		Preload("Cable").
		Where("tenant_id = ?", tenantID).
		Order("created_at desc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *cableRepository) BulkDeleteLogs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := GetDB(ctx, r.db).Where("tenant_id = ? AND id IN ?", tenantID, ids).Delete(&model.OpticalCableLog{})
	return res.RowsAffected, res.Error
}
