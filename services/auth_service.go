package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/clubstack/league-system/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12
const minPasswordLength = 8

// AuthService is the local stand-in for the delegated identity provider.
// It owns credentials only; everything downstream consumes the stable
// opaque Subject it mints per user.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.AppUser, error)
	Login(ctx context.Context, input LoginInput) (*models.AppUser, error)
	// ResolveSubject maps an authenticated subject identifier back to the
	// user row. This is the only identity entry point the core relies on.
	ResolveSubject(ctx context.Context, subject string) (*models.AppUser, error)
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=64"`
	Password    string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.AppUser, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id: %w", err)
	}

	user := &models.AppUser{
		ID:           id,
		Subject:      uuid.NewString(),
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		var cv *repositories.ConstraintViolationError
		if errors.As(err, &cv) && cv.Relationship == "app_users.email" {
			return nil, ErrAuthEmailTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.AppUser, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrAuthInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrForbiddenOperation
	}
	return user, nil
}

func (s *authService) ResolveSubject(ctx context.Context, subject string) (*models.AppUser, error) {
	user, err := s.userRepo.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve subject: %w", err)
	}
	return user, nil
}
