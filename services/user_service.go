package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/clubstack/league-system/repositories"
	"github.com/google/uuid"
)

type UserService interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.AppUser, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*models.AppUser, error)
	// DeleteUser soft-deletes the account and, in the same transaction, the
	// user's player identities in every tenant. Memberships need no flag:
	// their visibility follows the owning user.
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.Membership, error)
}

type UpdateProfileInput struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=64"`
}

type userService struct {
	tx             repositories.TxRunner
	userRepo       repositories.UserRepository
	playerRepo     repositories.PlayerRepository
	membershipRepo repositories.MembershipRepository
}

func NewUserService(
	tx repositories.TxRunner,
	userRepo repositories.UserRepository,
	playerRepo repositories.PlayerRepository,
	membershipRepo repositories.MembershipRepository,
) UserService {
	return &userService{
		tx:             tx,
		userRepo:       userRepo,
		playerRepo:     playerRepo,
		membershipRepo: membershipRepo,
	}
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.AppUser, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*models.AppUser, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.DisplayName = input.DisplayName
	user.UpdatedBy = &id
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.userRepo.Delete(ctx, exec, id); err != nil {
			return err
		}
		return s.playerRepo.DeleteByUser(ctx, exec, id)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *userService) ListMemberships(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	memberships, err := s.membershipRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}
