package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var ErrActivityNotFound = errors.New("activity not found")

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	List(ctx context.Context) ([]models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
}

type postgresActivityRepository struct {
	db *sql.DB
}

func NewPostgresActivityRepository(db *sql.DB) ActivityRepository {
	return &postgresActivityRepository{db: db}
}

func (r *postgresActivityRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	query := `
		INSERT INTO activities (id, name, code, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, a.ID, a.Name, a.Code, a.CreatedBy).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if c := pqConstraint(err); c == "activities_code_key" {
			return constraintViolation("activities.code", c)
		}
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (r *postgresActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	query := `
		SELECT id, name, code, created_at, updated_at, created_by, updated_by
		FROM activities
		WHERE id = $1 AND is_deleted = FALSE`

	a := &models.Activity{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.Code, &a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity by id: %w", err)
	}
	return a, nil
}

func (r *postgresActivityRepository) List(ctx context.Context) ([]models.Activity, error) {
	query := `
		SELECT id, name, code, created_at, updated_at, created_by, updated_by
		FROM activities
		WHERE is_deleted = FALSE
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]models.Activity, 0)
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Name, &a.Code, &a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.UpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (r *postgresActivityRepository) Update(ctx context.Context, a *models.Activity) error {
	query := `
		UPDATE activities
		SET name = $1, code = $2, updated_at = now(), updated_by = $3
		WHERE id = $4 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, a.Name, a.Code, a.UpdatedBy, a.ID)
	if err != nil {
		if c := pqConstraint(err); c == "activities_code_key" {
			return constraintViolation("activities.code", c)
		}
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return checkAffectedRows(result, ErrActivityNotFound)
}

// Delete is restricted: an activity referenced by any live tenant cannot be
// removed. The guard runs against visible tenants only, so a soft-deleted
// tenant does not block.
func (r *postgresActivityRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	executor := r.getExecutor(exec)

	var inUse bool
	guard := `SELECT EXISTS (SELECT 1 FROM tenants WHERE activity_id = $1 AND is_deleted = FALSE)`
	if err := executor.QueryRowContext(ctx, guard, id).Scan(&inUse); err != nil {
		return fmt.Errorf("failed to check activity references: %w", err)
	}
	if inUse {
		return constraintViolation("tenants.activity_id", "tenants_activity_id_fkey")
	}

	query := `UPDATE activities SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete activity: %w", err)
	}
	return checkAffectedRows(result, ErrActivityNotFound)
}
