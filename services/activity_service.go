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

type ActivityService interface {
	CreateActivity(ctx context.Context, input CreateActivityInput) (*models.Activity, error)
	GetActivityByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	ListActivities(ctx context.Context) ([]models.Activity, error)
	UpdateActivity(ctx context.Context, id uuid.UUID, input UpdateActivityInput) (*models.Activity, error)
	DeleteActivity(ctx context.Context, id uuid.UUID) error
}

type CreateActivityInput struct {
	Name      string `json:"name" validate:"required,min=2,max=64"`
	Code      string `json:"code" validate:"required,min=2,max=32"`
	CreatorID *uuid.UUID
}

type UpdateActivityInput struct {
	Name string `json:"name" validate:"required,min=2,max=64"`
	Code string `json:"code" validate:"required,min=2,max=32"`
}

type activityService struct {
	activityRepo repositories.ActivityRepository
}

func NewActivityService(activityRepo repositories.ActivityRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

func (s *activityService) CreateActivity(ctx context.Context, input CreateActivityInput) (*models.Activity, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate activity id: %w", err)
	}

	activity := &models.Activity{
		ID:        id,
		Name:      strings.TrimSpace(input.Name),
		Code:      strings.ToLower(strings.TrimSpace(input.Code)),
		CreatedBy: input.CreatorID,
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		// ConstraintViolation проходит наверх без изменений
		return nil, err
	}
	return activity, nil
}

func (s *activityService) GetActivityByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrActivityNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return activity, nil
}

func (s *activityService) ListActivities(ctx context.Context) ([]models.Activity, error) {
	return s.activityRepo.List(ctx)
}

func (s *activityService) UpdateActivity(ctx context.Context, id uuid.UUID, input UpdateActivityInput) (*models.Activity, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	activity, err := s.GetActivityByID(ctx, id)
	if err != nil {
		return nil, err
	}

	activity.Name = strings.TrimSpace(input.Name)
	activity.Code = strings.ToLower(strings.TrimSpace(input.Code))
	if err := s.activityRepo.Update(ctx, activity); err != nil {
		if errors.Is(err, repositories.ErrActivityNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return activity, nil
}

// DeleteActivity fails with a ConstraintViolation while any live tenant
// still references the activity.
func (s *activityService) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	if err := s.activityRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrActivityNotFound) {
			return ErrActivityNotFound
		}
		return err
	}
	return nil
}
