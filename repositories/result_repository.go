package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var ErrResultNotFound = errors.New("event result not found")

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.EventResult) error
	GetByEvent(ctx context.Context, eventID uuid.UUID) (*models.EventResult, error)
	Update(ctx context.Context, exec SQLExecutor, result *models.EventResult) error
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID uuid.UUID) error
	// ClearWinningGroupRefs nullifies the winner reference on results that
	// point at the group; used when the group is removed.
	ClearWinningGroupRefs(ctx context.Context, exec SQLExecutor, groupID uuid.UUID) error
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, res *models.EventResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO event_results (id, scheduled_event_id, winning_group_id, status, completed_at, notes, result_data, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		res.ID, res.ScheduledEventID, res.WinningGroupID, res.Status,
		res.CompletedAt, res.Notes, res.ResultData, res.CreatedBy,
	).Scan(&res.CreatedAt, &res.UpdatedAt)

	if err != nil {
		switch c := pqConstraint(err); c {
		case "event_results_scheduled_event_id_key":
			return constraintViolation("event_results.scheduled_event_id", c)
		case "event_results_scheduled_event_id_fkey":
			return constraintViolation("event_results.scheduled_event_id", c)
		case "event_results_winning_group_id_fkey":
			return constraintViolation("event_results.winning_group_id", c)
		}
		return fmt.Errorf("failed to create event result: %w", err)
	}
	return nil
}

func (r *postgresResultRepository) GetByEvent(ctx context.Context, eventID uuid.UUID) (*models.EventResult, error) {
	query := `
		SELECT r.id, r.scheduled_event_id, r.winning_group_id, r.status, r.completed_at, r.notes, r.result_data,
		       r.created_at, r.updated_at, r.created_by, r.updated_by
		FROM event_results r
		JOIN scheduled_events e ON e.id = r.scheduled_event_id AND e.is_deleted = FALSE
		WHERE r.scheduled_event_id = $1 AND r.is_deleted = FALSE`

	res := &models.EventResult{}
	err := r.db.QueryRowContext(ctx, query, eventID).Scan(
		&res.ID, &res.ScheduledEventID, &res.WinningGroupID, &res.Status,
		&res.CompletedAt, &res.Notes, &res.ResultData,
		&res.CreatedAt, &res.UpdatedAt, &res.CreatedBy, &res.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get event result: %w", err)
	}
	return res, nil
}

func (r *postgresResultRepository) Update(ctx context.Context, exec SQLExecutor, res *models.EventResult) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE event_results
		SET winning_group_id = $1, status = $2, completed_at = $3, notes = $4, result_data = $5,
		    updated_at = now(), updated_by = $6
		WHERE id = $7 AND is_deleted = FALSE`

	result, err := executor.ExecContext(ctx, query,
		res.WinningGroupID, res.Status, res.CompletedAt, res.Notes, res.ResultData,
		res.UpdatedBy, res.ID,
	)
	if err != nil {
		if c := pqConstraint(err); c == "event_results_winning_group_id_fkey" {
			return constraintViolation("event_results.winning_group_id", c)
		}
		return fmt.Errorf("failed to update event result: %w", err)
	}
	return checkAffectedRows(result, ErrResultNotFound)
}

func (r *postgresResultRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE event_results SET is_deleted = TRUE, updated_at = now() WHERE scheduled_event_id = $1 AND is_deleted = FALSE`
	if _, err := executor.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to soft-delete event result: %w", err)
	}
	return nil
}

func (r *postgresResultRepository) ClearWinningGroupRefs(ctx context.Context, exec SQLExecutor, groupID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE event_results SET winning_group_id = NULL, updated_at = now() WHERE winning_group_id = $1`
	if _, err := executor.ExecContext(ctx, query, groupID); err != nil {
		return fmt.Errorf("failed to clear winning group refs: %w", err)
	}
	return nil
}
