package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DivisionRepository interface {
	Create(ctx context.Context, division *model.Division) error
	Save(ctx context.Context, division *model.Division) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Division, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]model.Division, error)
}

type divisionRepository struct {
	db *gorm.DB
}

func NewDivisionRepository(db *gorm.DB) DivisionRepository {
	return &divisionRepository{db: db}
}

func (r *divisionRepository) Create(ctx context.Context, division *model.Division) error {
	return GetDB(ctx, r.db).Create(division).Error
}

func (r *divisionRepository) Save(ctx context.Context, division *model.Division) error {
	return GetDB(ctx, r.db).Save(division).Error
}

func (r *divisionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Division{})
	return res.RowsAffected > 0, res.Error
}

func (r *divisionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Division, error) {
	var division model.Division
	if err := GetDB(ctx, r.db).First(&division, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &division, nil
}

func (r *divisionRepository) List(ctx context.Context, tenantID uuid.UUID) ([]model.Division, error) {
	var divisions []model.Division
	if err := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Order("name asc").Find(&divisions).Error; err != nil {
		return nil, err
	}
	return divisions, nil
}
