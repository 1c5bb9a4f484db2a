package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	CreateBatch(ctx context.Context, items []model.InventoryItem) ([]model.InventoryItem, error)
	Save(ctx context.Context, item *model.InventoryItem) error
	Delete(ctx context.Context, tenantID uuid.UUID, id uint) (bool, error)
	BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uint) (int64, error)
	Clear(ctx context.Context, tenantID uuid.UUID) error
	FindByID(ctx context.Context, tenantID uuid.UUID, id uint) (*model.InventoryItem, error)
	FindByIDForUpdate(ctx context.Context, tenantID uuid.UUID, id uint) (*model.InventoryItem, error)
	FindByIdentity(ctx context.Context, tenantID uuid.UUID, ident model.ItemIdentity) (*model.InventoryItem, error)
	FindByIdentityForUpdate(ctx context.Context, tenantID uuid.UUID, ident model.ItemIdentity) (*model.InventoryItem, error)
	List(ctx context.Context, tenantID uuid.UUID, page, limit int, search string) ([]model.InventoryItem, int64, error)
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.InventoryItem, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *inventoryRepository) CreateBatch(ctx context.Context, items []model.InventoryItem) ([]model.InventoryItem, error) {
	if len(items) == 0 {
		return items, nil
	}
	if err := GetDB(ctx, r.db).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inventoryRepository) Save(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *inventoryRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uint) (bool, error) {
	res := GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.InventoryItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *inventoryRepository) BulkDelete(ctx context.Context, tenantID uuid.UUID, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := GetDB(ctx, r.db).Where("tenant_id = ? AND id IN ?", tenantID, ids).Delete(&model.InventoryItem{})
	return res.RowsAffected, res.Error
}

func (r *inventoryRepository) Clear(ctx context.Context, tenantID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Delete(&model.InventoryItem{}).Error
}

func (r *inventoryRepository) FindByID(ctx context.Context, tenantID uuid.UUID, id uint) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).First(&item, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) FindByIDForUpdate(ctx context.Context, tenantID uuid.UUID, id uint) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func identityScope(db *gorm.DB, tenantID uuid.UUID, ident model.ItemIdentity) *gorm.DB {
	return db.Where("tenant_id = ? AND product_name = ? AND specification = ? AND division = ?",
		tenantID, ident.ProductName, ident.Specification, ident.Division)
}

func (r *inventoryRepository) FindByIdentity(ctx context.Context, tenantID uuid.UUID, ident model.ItemIdentity) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := identityScope(GetDB(ctx, r.db), tenantID, ident).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) FindByIdentityForUpdate(ctx context.Context, tenantID uuid.UUID, ident model.ItemIdentity) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := identityScope(GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, ident).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) List(ctx context.Context, tenantID uuid.UUID, page, limit int, search string) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryItem{}).Where("tenant_id = ?", tenantID)
	if search != "" {
		db = db.Where("product_name ILIKE ?", "%"+search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("product_name asc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *inventoryRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if err := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
