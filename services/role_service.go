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

type RoleService interface {
	CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error)
	GetRoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	// DeleteRole fails with a ConstraintViolation while the role is held by
	// any visible membership or set as a tenant's default role.
	DeleteRole(ctx context.Context, id uuid.UUID) error

	CreatePermission(ctx context.Context, input CreatePermissionInput) (*models.Permission, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	GrantPermission(ctx context.Context, roleID, permissionID uuid.UUID) error
	RevokePermission(ctx context.Context, roleID, permissionID uuid.UUID) error
}

type CreateRoleInput struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	Description string `json:"description" validate:"max=255"`
	IsDefault   bool   `json:"is_default"`
	CreatorID   *uuid.UUID
}

type CreatePermissionInput struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	Code        string `json:"code" validate:"required,min=2,max=64"`
	Description string `json:"description" validate:"max=255"`
	CreatorID   *uuid.UUID
}

type roleService struct {
	roleRepo       repositories.RoleRepository
	permissionRepo repositories.PermissionRepository
}

func NewRoleService(roleRepo repositories.RoleRepository, permissionRepo repositories.PermissionRepository) RoleService {
	return &roleService{
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
	}
}

func (s *roleService) CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate role id: %w", err)
	}

	role := &models.Role{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		IsDefault:   input.IsDefault,
		CreatedBy:   input.CreatorID,
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

func (s *roleService) GetRoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRoleNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	permissions, err := s.roleRepo.ListPermissions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}
	role.Permissions = permissions
	return role, nil
}

func (s *roleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.roleRepo.List(ctx)
}

func (s *roleService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	if err := s.roleRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrRoleNotFound) {
			return ErrRoleNotFound
		}
		// ConstraintViolation — это бизнес-ошибка, отдаём как есть.
		return err
	}
	return nil
}

func (s *roleService) CreatePermission(ctx context.Context, input CreatePermissionInput) (*models.Permission, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate permission id: %w", err)
	}

	permission := &models.Permission{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Code:        strings.ToLower(strings.TrimSpace(input.Code)),
		Description: input.Description,
		CreatedBy:   input.CreatorID,
	}

	if err := s.permissionRepo.Create(ctx, permission); err != nil {
		return nil, err
	}
	return permission, nil
}

func (s *roleService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return s.permissionRepo.List(ctx)
}

func (s *roleService) GrantPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, repositories.ErrRoleNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("failed to check role: %w", err)
	}
	if _, err := s.permissionRepo.GetByID(ctx, permissionID); err != nil {
		if errors.Is(err, repositories.ErrPermissionNotFound) {
			return ErrPermissionNotFound
		}
		return fmt.Errorf("failed to check permission: %w", err)
	}
	return s.roleRepo.AddPermission(ctx, nil, roleID, permissionID)
}

func (s *roleService) RevokePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return s.roleRepo.RemovePermission(ctx, nil, roleID, permissionID)
}
