package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	Save(ctx context.Context, tenant *model.Tenant) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	AddMember(ctx context.Context, member *model.TenantMember) error
	RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) (bool, error)
	FindMember(ctx context.Context, tenantID, userID uuid.UUID) (*model.TenantMember, error)
	ListMembers(ctx context.Context, tenantID uuid.UUID) ([]model.TenantMember, error)
	ListMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]model.TenantMember, error)
}

type tenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	return GetDB(ctx, r.db).Create(tenant).Error
}

func (r *tenantRepository) Save(ctx context.Context, tenant *model.Tenant) error {
	return GetDB(ctx, r.db).Save(tenant).Error
}

func (r *tenantRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Tenant{})
	return res.RowsAffected > 0, res.Error
}

func (r *tenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := GetDB(ctx, r.db).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) List(ctx context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant
	if err := GetDB(ctx, r.db).Order("created_at asc").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *tenantRepository) AddMember(ctx context.Context, member *model.TenantMember) error {
	return GetDB(ctx, r.db).Create(member).Error
}

func (r *tenantRepository) RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("tenant_id = ? AND user_id = ?", tenantID, userID).Delete(&model.TenantMember{})
	return res.RowsAffected > 0, res.Error
}

func (r *tenantRepository) FindMember(ctx context.Context, tenantID, userID uuid.UUID) (*model.TenantMember, error) {
	var member model.TenantMember
	if err := GetDB(ctx, r.db).First(&member, "tenant_id = ? AND user_id = ?", tenantID, userID).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *tenantRepository) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]model.TenantMember, error) {
	var members []model.TenantMember
	if err := GetDB(ctx, r.db).Preload("User").Where("tenant_id = ?", tenantID).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *tenantRepository) ListMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]model.TenantMember, error) {
	var members []model.TenantMember
	if err := GetDB(ctx, r.db).Preload("Tenant").Where("user_id = ?", userID).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
