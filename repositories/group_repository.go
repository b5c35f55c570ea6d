package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var ErrGroupNotFound = errors.New("event participant group not found")

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.EventParticipantGroup) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EventParticipantGroup, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventParticipantGroup, error)
	// SetTeam binds or clears (teamID nil) the group's static-team reference.
	SetTeam(ctx context.Context, exec SQLExecutor, groupID uuid.UUID, teamID *uuid.UUID) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID uuid.UUID) error
	// ClearTeamRefs nullifies the reference on every group pointing at the
	// team; used when the team itself is deleted.
	ClearTeamRefs(ctx context.Context, exec SQLExecutor, teamID uuid.UUID) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const groupColumns = `g.id, g.scheduled_event_id, g.team_id, g.name, g.position, g.created_at, g.updated_at, g.created_by, g.updated_by`

func scanGroup(scanner interface{ Scan(dest ...interface{}) error }, g *models.EventParticipantGroup) error {
	return scanner.Scan(
		&g.ID, &g.ScheduledEventID, &g.TeamID, &g.Name, &g.Order,
		&g.CreatedAt, &g.UpdatedAt, &g.CreatedBy, &g.UpdatedBy,
	)
}

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, g *models.EventParticipantGroup) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO event_participant_groups (id, scheduled_event_id, team_id, name, position, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		g.ID, g.ScheduledEventID, g.TeamID, g.Name, g.Order, g.CreatedBy,
	).Scan(&g.CreatedAt, &g.UpdatedAt)

	if err != nil {
		switch c := pqConstraint(err); c {
		case "event_participant_groups_scheduled_event_id_fkey":
			return constraintViolation("event_participant_groups.scheduled_event_id", c)
		case "event_participant_groups_team_id_fkey":
			return constraintViolation("event_participant_groups.team_id", c)
		}
		return fmt.Errorf("failed to create event participant group: %w", err)
	}
	return nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EventParticipantGroup, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM event_participant_groups g
		JOIN scheduled_events e ON e.id = g.scheduled_event_id AND e.is_deleted = FALSE
		WHERE g.id = $1 AND g.is_deleted = FALSE`, groupColumns)

	g := &models.EventParticipantGroup{}
	if err := scanGroup(r.db.QueryRowContext(ctx, query, id), g); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group by id: %w", err)
	}
	return g, nil
}

func (r *postgresGroupRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.EventParticipantGroup, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM event_participant_groups g
		JOIN scheduled_events e ON e.id = g.scheduled_event_id AND e.is_deleted = FALSE
		WHERE g.scheduled_event_id = $1 AND g.is_deleted = FALSE
		ORDER BY g.position`, groupColumns)

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups by event: %w", err)
	}
	defer rows.Close()

	groups := make([]models.EventParticipantGroup, 0)
	for rows.Next() {
		var g models.EventParticipantGroup
		if err := scanGroup(rows, &g); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *postgresGroupRepository) SetTeam(ctx context.Context, exec SQLExecutor, groupID uuid.UUID, teamID *uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE event_participant_groups SET team_id = $1, updated_at = now() WHERE id = $2 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, teamID, groupID)
	if err != nil {
		if c := pqConstraint(err); c == "event_participant_groups_team_id_fkey" {
			return constraintViolation("event_participant_groups.team_id", c)
		}
		return fmt.Errorf("failed to set group team: %w", err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE event_participant_groups SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete group: %w", err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE event_participant_groups SET is_deleted = TRUE, updated_at = now() WHERE scheduled_event_id = $1 AND is_deleted = FALSE`
	if _, err := executor.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to soft-delete groups by event: %w", err)
	}
	return nil
}

func (r *postgresGroupRepository) ClearTeamRefs(ctx context.Context, exec SQLExecutor, teamID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE event_participant_groups SET team_id = NULL, updated_at = now() WHERE team_id = $1`
	if _, err := executor.ExecContext(ctx, query, teamID); err != nil {
		return fmt.Errorf("failed to clear team refs on groups: %w", err)
	}
	return nil
}
