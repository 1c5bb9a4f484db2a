package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IncomingRepository interface {
	Create(ctx context.Context, record *model.IncomingRecord) error
	Save(ctx context.Context, record *model.IncomingRecord) error
	Delete(ctx context.Context, tenantID uuid.UUID, id uint) (bool, error)
	BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uint) (int64, error)
	FindByID(ctx context.Context, tenantID uuid.UUID, id uint) (*model.IncomingRecord, error)
	List(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.IncomingRecord, int64, error)
	SumMatching(ctx context.Context, tenantID uuid.UUID, itemID uint, ident model.ItemIdentity) (int64, error)
}

type incomingRepository struct {
	db *gorm.DB
}

func NewIncomingRepository(db *gorm.DB) IncomingRepository {
	return &incomingRepository{db: db}
}

func (r *incomingRepository) Create(ctx context.Context, record *model.IncomingRecord) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *incomingRepository) Save(ctx context.Context, record *model.IncomingRecord) error {
	return GetDB(ctx, r.db).Save(record).Error
}

func (r *incomingRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uint) (bool, error) {
	res := GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.IncomingRecord{})
	return res.RowsAffected > 0, res.Error
}

func (r *incomingRepository) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := GetDB(ctx, r.db).Where("tenant_id = ? AND id IN ?", tenantID, ids).Delete(&model.IncomingRecord{})
	return res.RowsAffected, res.Error
}

func (r *incomingRepository) FindByID(ctx context.Context, tenantID uuid.UUID, id uint) (*model.IncomingRecord, error) {
	var record model.IncomingRecord
	if err := GetDB(ctx, r.db).First(&record, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *incomingRepository) List(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.IncomingRecord, int64, error) {
	var records []model.IncomingRecord
	var total int64

	db := GetDB(ctx, r.db).Model(&model.IncomingRecord{}).Where("tenant_id = ?", tenantID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("date desc, id desc").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// SumMatching totals quantities attributed to an inventory item: rows carrying
// the item id, plus legacy rows matched by the identity tuple.
func (r *incomingRepository) SumMatching(ctx context.Context, tenantID uuid.UUID, itemID uint, ident model.ItemIdentity) (int64, error) {
	var sum int64
	err := GetDB(ctx, r.db).Model(&model.IncomingRecord{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("tenant_id = ?", tenantID).
		Where("inventory_item_id = ? OR (inventory_item_id IS NULL AND product_name = ? AND specification = ? AND division = ?)",
			itemID, ident.ProductName, ident.Specification, ident.Division).
		Scan(&sum).Error
	return sum, err
}
