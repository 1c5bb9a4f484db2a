package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DivisionRequest struct {
	Name string `json:"name" binding:"required"`
}

type TeamRequest struct {
	Name       string     `json:"name" binding:"required"`
	DivisionID *uuid.UUID `json:"division_id"`
	IsActive   *bool      `json:"is_active"`
}

// OrgService manages the per-tenant org structure: divisions and field teams.
type OrgService interface {
	CreateDivision(ctx context.Context, tenantID uuid.UUID, req DivisionRequest) (*model.Division, error)
	UpdateDivision(ctx context.Context, tenantID, id uuid.UUID, req DivisionRequest) (*model.Division, error)
	DeleteDivision(ctx context.Context, tenantID, id uuid.UUID) error
	ListDivisions(ctx context.Context, tenantID uuid.UUID) ([]model.Division, error)

	CreateTeam(ctx context.Context, tenantID uuid.UUID, req TeamRequest) (*model.Team, error)
	UpdateTeam(ctx context.Context, tenantID, id uuid.UUID, req TeamRequest) (*model.Team, error)
	DeleteTeam(ctx context.Context, tenantID, id uuid.UUID) error
	GetTeam(ctx context.Context, tenantID, id uuid.UUID) (*model.Team, error)
	ListTeams(ctx context.Context, tenantID uuid.UUID, divisionID *uuid.UUID) ([]model.Team, error)
}

type orgService struct {
	divisionRepo repository.DivisionRepository
	teamRepo     repository.TeamRepository
}

func NewOrgService(divisionRepo repository.DivisionRepository, teamRepo repository.TeamRepository) OrgService {
	return &orgService{divisionRepo: divisionRepo, teamRepo: teamRepo}
}

func (s *orgService) CreateDivision(ctx context.Context, tenantID uuid.UUID, req DivisionRequest) (*model.Division, error) {
	division := &model.Division{TenantID: tenantID, Name: req.Name}
	if err := s.divisionRepo.Create(ctx, division); err != nil {
		return nil, fmt.Errorf("failed to create division: %w", err)
	}
	return division, nil
}

func (s *orgService) UpdateDivision(ctx context.Context, tenantID, id uuid.UUID, req DivisionRequest) (*model.Division, error) {
	division, err := s.divisionRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("division %s not found", id)
		}
		return nil, err
	}
	division.Name = req.Name
	if err := s.divisionRepo.Save(ctx, division); err != nil {
		return nil, fmt.Errorf("failed to update division: %w", err)
	}
	return division, nil
}

func (s *orgService) DeleteDivision(ctx context.Context, tenantID, id uuid.UUID) error {
	deleted, err := s.divisionRepo.Delete(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete division: %w", err)
	}
	if !deleted {
		return apperror.NotFound("division %s not found", id)
	}
	return nil
}

func (s *orgService) ListDivisions(ctx context.Context, tenantID uuid.UUID) ([]model.Division, error) {
	return s.divisionRepo.List(ctx, tenantID)
}

func (s *orgService) CreateTeam(ctx context.Context, tenantID uuid.UUID, req TeamRequest) (*model.Team, error) {
	if req.DivisionID != nil {
		if _, err := s.divisionRepo.FindByID(ctx, tenantID, *req.DivisionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("division %s not found", *req.DivisionID)
			}
			return nil, err
		}
	}
	team := &model.Team{
		TenantID:   tenantID,
		Name:       req.Name,
		DivisionID: req.DivisionID,
		IsActive:   true,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *orgService) UpdateTeam(ctx context.Context, tenantID, id uuid.UUID, req TeamRequest) (*model.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("team %s not found", id)
		}
		return nil, err
	}

	if req.Name != "" {
		team.Name = req.Name
	}
	if req.DivisionID != nil {
		if _, err := s.divisionRepo.FindByID(ctx, tenantID, *req.DivisionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("division %s not found", *req.DivisionID)
			}
			return nil, err
		}
		team.DivisionID = req.DivisionID
	}
	if req.IsActive != nil {
		team.IsActive = *req.IsActive
	}

	if err := s.teamRepo.Save(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

func (s *orgService) DeleteTeam(ctx context.Context, tenantID, id uuid.UUID) error {
	deleted, err := s.teamRepo.Delete(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if !deleted {
		return apperror.NotFound("team %s not found", id)
	}
	return nil
}

func (s *orgService) GetTeam(ctx context.Context, tenantID, id uuid.UUID) (*model.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("team %s not found", id)
		}
		return nil, err
	}
	return team, nil
}

func (s *orgService) ListTeams(ctx context.Context, tenantID uuid.UUID, divisionID *uuid.UUID) ([]model.Team, error) {
	if divisionID != nil {
		return s.teamRepo.ListByDivision(ctx, tenantID, *divisionID)
	}
	return s.teamRepo.List(ctx, tenantID)
}
