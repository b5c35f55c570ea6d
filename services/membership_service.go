package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clubstack/league-system/models"
	"github.com/clubstack/league-system/repositories"
	"github.com/google/uuid"
)

type MembershipService interface {
	// Join enrolls a user into a tenant under the tenant's default role and
	// creates the player identity in the same transaction. Re-joining is
	// idempotent: the existing membership keeps its role and status and the
	// existing player row is reused. Role changes go through AssignRole only.
	Join(ctx context.Context, input JoinTenantInput) (*models.Membership, error)
	GetMembership(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Membership, error)
	// AssignRole points the membership at a different role, updating the
	// existing (user, tenant) row in place.
	AssignRole(ctx context.Context, userID, tenantID, roleID uuid.UUID) (*models.Membership, error)
	SetStatus(ctx context.Context, userID, tenantID uuid.UUID, status models.MembershipStatus) error
	// EffectivePermissions returns the permission codes the user holds in the
	// tenant. Any status other than active yields an empty set; a role with
	// no permissions yields an empty set without error.
	EffectivePermissions(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error)
}

type JoinTenantInput struct {
	UserID      uuid.UUID `validate:"required"`
	TenantID    uuid.UUID `validate:"required"`
	DisplayName string    `json:"display_name" validate:"required,min=1,max=64"`
}

type membershipService struct {
	tx             repositories.TxRunner
	membershipRepo repositories.MembershipRepository
	tenantRepo     repositories.TenantRepository
	roleRepo       repositories.RoleRepository
	playerRepo     repositories.PlayerRepository
}

func NewMembershipService(
	tx repositories.TxRunner,
	membershipRepo repositories.MembershipRepository,
	tenantRepo repositories.TenantRepository,
	roleRepo repositories.RoleRepository,
	playerRepo repositories.PlayerRepository,
) MembershipService {
	return &membershipService{
		tx:             tx,
		membershipRepo: membershipRepo,
		tenantRepo:     tenantRepo,
		roleRepo:       roleRepo,
		playerRepo:     playerRepo,
	}
}

func (s *membershipService) Join(ctx context.Context, input JoinTenantInput) (*models.Membership, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, input.TenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	membership := &models.Membership{
		AppUserID: input.UserID,
		TenantID:  input.TenantID,
		RoleID:    tenant.DefaultRoleID,
		Status:    models.MembershipActive,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.membershipRepo.Enroll(ctx, exec, membership); err != nil {
			return err
		}

		_, err := s.playerRepo.GetByTenantAndUser(ctx, input.TenantID, input.UserID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrPlayerNotFound) {
			return err
		}

		playerID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate player id: %w", err)
		}
		return s.playerRepo.Create(ctx, exec, &models.Player{
			ID:          playerID,
			TenantID:    input.TenantID,
			AppUserID:   input.UserID,
			DisplayName: strings.TrimSpace(input.DisplayName),
			CreatedBy:   &input.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *membershipService) GetMembership(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error) {
	m, err := s.membershipRepo.Get(ctx, userID, tenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

func (s *membershipService) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Membership, error) {
	return s.membershipRepo.ListByTenant(ctx, tenantID)
}

func (s *membershipService) AssignRole(ctx context.Context, userID, tenantID, roleID uuid.UUID) (*models.Membership, error) {
	existing, err := s.GetMembership(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}

	if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, repositories.ErrRoleNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	updated := &models.Membership{
		AppUserID: userID,
		TenantID:  tenantID,
		RoleID:    roleID,
		Status:    existing.Status,
	}
	if err := s.membershipRepo.Upsert(ctx, nil, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *membershipService) SetStatus(ctx context.Context, userID, tenantID uuid.UUID, status models.MembershipStatus) error {
	switch status {
	case models.MembershipActive, models.MembershipInactive, models.MembershipPending, models.MembershipBanned:
	default:
		return fmt.Errorf("%w: unknown membership status %q", ErrValidationFailed, status)
	}

	err := s.membershipRepo.UpdateStatus(ctx, nil, userID, tenantID, status)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to update membership status: %w", err)
	}
	return nil
}

func (s *membershipService) EffectivePermissions(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	m, err := s.membershipRepo.Get(ctx, userID, tenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if m.Status != models.MembershipActive {
		return []string{}, nil
	}
	codes, err := s.roleRepo.ListPermissionCodes(ctx, m.RoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}
	return codes, nil
}
