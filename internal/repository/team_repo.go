package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	Save(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Team, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]model.Team, error)
	ListByDivision(ctx context.Context, tenantID, divisionID uuid.UUID) ([]model.Team, error)
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *model.Team) error {
	return GetDB(ctx, r.db).Create(team).Error
}

func (r *teamRepository) Save(ctx context.Context, team *model.Team) error {
	return GetDB(ctx, r.db).Save(team).Error
}

func (r *teamRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Team{})
	return res.RowsAffected > 0, res.Error
}

func (r *teamRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := GetDB(ctx, r.db).First(&team, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context, tenantID uuid.UUID) ([]model.Team, error) {
	var teams []model.Team
	if err := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Order("name asc").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) ListByDivision(ctx context.Context, tenantID, divisionID uuid.UUID) ([]model.Team, error) {
	var teams []model.Team
	if err := GetDB(ctx, r.db).
		Where("tenant_id = ? AND division_id = ?", tenantID, divisionID).
		Order("name asc").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}
