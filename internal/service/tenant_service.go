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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateTenantRequest struct {
	Name    string `json:"name" binding:"required"`
	Plan    string `json:"plan"`
	AdminID string `json:"admin_id"` // existing user to seat as tenant admin
}

type AddMemberRequest struct {
	UserID uuid.UUID  `json:"user_id" binding:"required"`
	Role   string     `json:"role" binding:"required"`
	TeamID *uuid.UUID `json:"team_id"`
}

// TenantService covers super-admin provisioning and per-tenant membership
// management. All tenant data rows hang off the tenant id, so deactivation is
// a soft switch and deletion cascades through the schema.
type TenantService interface {
	Provision(ctx context.Context, userID string, req CreateTenantRequest) (*model.Tenant, error)
	Deactivate(ctx context.Context, tenantID uuid.UUID, userID string) (*model.Tenant, error)
	Delete(ctx context.Context, tenantID uuid.UUID, userID string) error
	Get(ctx context.Context, tenantID uuid.UUID) (*model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	AddMember(ctx context.Context, tenantID uuid.UUID, userID string, req AddMemberRequest) (*model.TenantMember, error)
	RemoveMember(ctx context.Context, tenantID, memberUserID uuid.UUID, userID string) error
	ListMembers(ctx context.Context, tenantID uuid.UUID) ([]model.TenantMember, error)
}

type tenantService struct {
	tenantRepo repository.TenantRepository
	userRepo   repository.UserRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewTenantService(
	tenantRepo repository.TenantRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
	}
}

func validMemberRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleOffice || role == model.RoleField
}

func (s *tenantService) audit(ctx context.Context, tenantID *uuid.UUID, userID, action, entityID, entityName string, payload interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}
	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		TenantID:   tenantID,
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

// Provision creates a tenant and, when an admin user is named, seats them as
// the tenant's first admin in the same transaction.
func (s *tenantService) Provision(ctx context.Context, userID string, req CreateTenantRequest) (*model.Tenant, error) {
	plan := req.Plan
	if plan == "" {
		plan = "standard"
	}

	var tenant *model.Tenant
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		tenant = &model.Tenant{
			Name:     req.Name,
			Plan:     plan,
			IsActive: true,
		}
		if err := s.tenantRepo.Create(txCtx, tenant); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		if req.AdminID != "" {
			admin, findErr := s.userRepo.GetByID(txCtx, req.AdminID)
			if findErr != nil {
				return apperror.NotFound("admin user %s not found", req.AdminID)
			}
			member := &model.TenantMember{
				UserID:   admin.ID,
				TenantID: tenant.ID,
				Role:     model.RoleAdmin,
			}
			if err := s.tenantRepo.AddMember(txCtx, member); err != nil {
				return fmt.Errorf("failed to seat tenant admin: %w", err)
			}
		}

		return s.audit(txCtx, &tenant.ID, userID, model.ActionProvisionTenant,
			tenant.ID.String(), tenant.Name, req)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("tenant_id", tenant.ID.String()).
		Str("name", tenant.Name).
		Msg("tenant provisioned")
	return tenant, nil
}

func (s *tenantService) Deactivate(ctx context.Context, tenantID uuid.UUID, userID string) (*model.Tenant, error) {
	var tenant *model.Tenant
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.tenantRepo.FindByID(txCtx, tenantID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("tenant %s not found", tenantID)
			}
			return findErr
		}
		if !existing.IsActive {
			return apperror.StateConflict("tenant %s is already inactive", existing.Name)
		}
		existing.IsActive = false
		if err := s.tenantRepo.Save(txCtx, existing); err != nil {
			return fmt.Errorf("failed to deactivate tenant: %w", err)
		}
		tenant = existing
		return s.audit(txCtx, &tenantID, userID, model.ActionDeactivateTenant,
			tenantID.String(), existing.Name, nil)
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) Delete(ctx context.Context, tenantID uuid.UUID, userID string) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.tenantRepo.FindByID(txCtx, tenantID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("tenant %s not found", tenantID)
			}
			return findErr
		}
		if _, err := s.tenantRepo.Delete(txCtx, tenantID); err != nil {
			return fmt.Errorf("failed to delete tenant: %w", err)
		}
		// tenant id is nil on the audit row: the tenant no longer exists
		return s.audit(txCtx, nil, userID, model.ActionDeleteTenant,
			tenantID.String(), existing.Name, nil)
	})
}

func (s *tenantService) Get(ctx context.Context, tenantID uuid.UUID) (*model.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("tenant %s not found", tenantID)
		}
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) List(ctx context.Context) ([]model.Tenant, error) {
	return s.tenantRepo.List(ctx)
}

func (s *tenantService) AddMember(ctx context.Context, tenantID uuid.UUID, userID string, req AddMemberRequest) (*model.TenantMember, error) {
	if !validMemberRole(req.Role) {
		return nil, apperror.Validation("invalid role %q: must be admin, office, or field", req.Role)
	}

	var member *model.TenantMember
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.tenantRepo.FindByID(txCtx, tenantID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("tenant %s not found", tenantID)
			}
			return findErr
		}
		if _, findErr := s.userRepo.GetByID(txCtx, req.UserID.String()); findErr != nil {
			return apperror.NotFound("user %s not found", req.UserID)
		}
		if _, findErr := s.tenantRepo.FindMember(txCtx, tenantID, req.UserID); findErr == nil {
			return apperror.StateConflict("user %s is already a member of this tenant", req.UserID)
		}

		member = &model.TenantMember{
			UserID:   req.UserID,
			TenantID: tenantID,
			Role:     req.Role,
			TeamID:   req.TeamID,
		}
		if err := s.tenantRepo.AddMember(txCtx, member); err != nil {
			return fmt.Errorf("failed to add tenant member: %w", err)
		}
		return s.audit(txCtx, &tenantID, userID, model.ActionAddTenantMember,
			req.UserID.String(), "", req)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *tenantService) RemoveMember(ctx context.Context, tenantID, memberUserID uuid.UUID, userID string) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		removed, err := s.tenantRepo.RemoveMember(txCtx, tenantID, memberUserID)
		if err != nil {
			return fmt.Errorf("failed to remove tenant member: %w", err)
		}
		if !removed {
			return apperror.NotFound("user %s is not a member of this tenant", memberUserID)
		}
		return s.audit(txCtx, &tenantID, userID, model.ActionRemoveTenantMember,
			memberUserID.String(), "", nil)
	})
}

func (s *tenantService) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]model.TenantMember, error) {
	return s.tenantRepo.ListMembers(ctx, tenantID)
}
