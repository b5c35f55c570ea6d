package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/clubstack/league-system/models"
	"github.com/clubstack/league-system/repositories"
	"github.com/clubstack/league-system/storage"
	"github.com/google/uuid"
)

type TenantService interface {
	CreateTenant(ctx context.Context, input CreateTenantInput) (*models.Tenant, error)
	GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	ListTenants(ctx context.Context, filter repositories.ListTenantsFilter) ([]models.Tenant, error)
	UpdateTenant(ctx context.Context, id uuid.UUID, input UpdateTenantInput) (*models.Tenant, error)
	// DeleteTenant soft-deletes the tenant and flags its players, teams and
	// events in the same transaction. Memberships carry no flag: their
	// visibility follows the tenant.
	DeleteTenant(ctx context.Context, id uuid.UUID) error
	UploadLogo(ctx context.Context, tenantID uuid.UUID, contentType string, file io.Reader) (*models.Tenant, error)
}

type CreateTenantInput struct {
	Name          string                  `json:"name" validate:"required,min=2,max=128"`
	Description   *string                 `json:"description,omitempty" validate:"omitempty,max=1024"`
	ActivityID    uuid.UUID               `json:"activity_id" validate:"required"`
	Visibility    models.TenantVisibility `json:"visibility" validate:"required,oneof=public link_only private"`
	Type          models.TenantType       `json:"type" validate:"required,oneof=league tournament club community other"`
	DefaultRoleID uuid.UUID               `json:"default_role_id" validate:"required"`
	CreatorID     *uuid.UUID
}

type UpdateTenantInput struct {
	Name          string                  `json:"name" validate:"required,min=2,max=128"`
	Description   *string                 `json:"description,omitempty" validate:"omitempty,max=1024"`
	Visibility    models.TenantVisibility `json:"visibility" validate:"required,oneof=public link_only private"`
	Type          models.TenantType       `json:"type" validate:"required,oneof=league tournament club community other"`
	IsActive      bool                    `json:"is_active"`
	DefaultRoleID uuid.UUID               `json:"default_role_id" validate:"required"`
	UpdaterID     *uuid.UUID
}

type tenantService struct {
	tx         repositories.TxRunner
	tenantRepo repositories.TenantRepository
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	eventRepo  repositories.EventRepository
	uploader   storage.FileUploader
}

func NewTenantService(
	tx repositories.TxRunner,
	tenantRepo repositories.TenantRepository,
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	eventRepo repositories.EventRepository,
	uploader storage.FileUploader,
) TenantService {
	return &tenantService{
		tx:         tx,
		tenantRepo: tenantRepo,
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		eventRepo:  eventRepo,
		uploader:   uploader,
	}
}

func (s *tenantService) CreateTenant(ctx context.Context, input CreateTenantInput) (*models.Tenant, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTenantNameRequired
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant id: %w", err)
	}

	tenant := &models.Tenant{
		ID:            id,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		ActivityID:    input.ActivityID,
		Visibility:    input.Visibility,
		Type:          input.Type,
		IsActive:      true,
		DefaultRoleID: input.DefaultRoleID,
		CreatedBy:     input.CreatorID,
	}

	if err := s.tenantRepo.Create(ctx, nil, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	s.populateLogoURL(tenant)
	return tenant, nil
}

func (s *tenantService) ListTenants(ctx context.Context, filter repositories.ListTenantsFilter) ([]models.Tenant, error) {
	tenants, err := s.tenantRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tenants {
		s.populateLogoURL(&tenants[i])
	}
	return tenants, nil
}

func (s *tenantService) UpdateTenant(ctx context.Context, id uuid.UUID, input UpdateTenantInput) (*models.Tenant, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tenant, err := s.GetTenantByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tenant.Name = strings.TrimSpace(input.Name)
	tenant.Description = input.Description
	tenant.Visibility = input.Visibility
	tenant.Type = input.Type
	tenant.IsActive = input.IsActive
	tenant.DefaultRoleID = input.DefaultRoleID
	tenant.UpdatedBy = input.UpdaterID

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		if errors.Is(err, repositories.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tenantRepo.Delete(ctx, exec, id); err != nil {
			return err
		}
		if err := s.playerRepo.DeleteByTenant(ctx, exec, id); err != nil {
			return err
		}
		if err := s.teamRepo.DeleteByTenant(ctx, exec, id); err != nil {
			return err
		}
		return s.eventRepo.DeleteByTenant(ctx, exec, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTenantNotFound) {
			return ErrTenantNotFound
		}
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	return nil
}

func (s *tenantService) UploadLogo(ctx context.Context, tenantID uuid.UUID, contentType string, file io.Reader) (*models.Tenant, error) {
	tenant, err := s.GetTenantByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tenants/%s/logo", tenantID)
	storedKey, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tenant logo: %w", err)
	}

	if err := s.tenantRepo.UpdateLogoKey(ctx, tenantID, &storedKey); err != nil {
		return nil, fmt.Errorf("failed to persist tenant logo key: %w", err)
	}
	tenant.LogoKey = &storedKey
	s.populateLogoURL(tenant)
	return tenant, nil
}

func (s *tenantService) populateLogoURL(tenant *models.Tenant) {
	if s.uploader == nil || tenant.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*tenant.LogoKey)
	tenant.LogoURL = &url
}
