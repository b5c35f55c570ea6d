package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

// ParticipantRepository owns the ephemeral path: direct player rows attached
// to one event group, no history.
type ParticipantRepository interface {
	Add(ctx context.Context, exec SQLExecutor, participant *models.EventParticipant) error
	Remove(ctx context.Context, exec SQLExecutor, groupID, playerID uuid.UUID) error
	ListPlayersByGroup(ctx context.Context, groupID uuid.UUID) ([]*models.Player, error)
	CountByGroup(ctx context.Context, groupID uuid.UUID) (int, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) Add(ctx context.Context, exec SQLExecutor, p *models.EventParticipant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO event_participants (group_id, player_id)
		VALUES ($1, $2)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query, p.GroupID, p.PlayerID).Scan(&p.CreatedAt)
	if err != nil {
		switch c := pqConstraint(err); c {
		case "event_participants_pkey":
			return constraintViolation("event_participants.(group_id, player_id)", c)
		case "event_participants_group_id_fkey":
			return constraintViolation("event_participants.group_id", c)
		case "event_participants_player_id_fkey":
			return constraintViolation("event_participants.player_id", c)
		}
		return fmt.Errorf("failed to add event participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) Remove(ctx context.Context, exec SQLExecutor, groupID, playerID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM event_participants WHERE group_id = $1 AND player_id = $2`
	if _, err := executor.ExecContext(ctx, query, groupID, playerID); err != nil {
		return fmt.Errorf("failed to remove event participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) ListPlayersByGroup(ctx context.Context, groupID uuid.UUID) ([]*models.Player, error) {
	query := `
		SELECT p.id, p.tenant_id, p.app_user_id, p.display_name, p.created_at, p.updated_at, p.created_by, p.updated_by
		FROM event_participants ep
		JOIN event_participant_groups g ON g.id = ep.group_id AND g.is_deleted = FALSE
		JOIN players p ON p.id = ep.player_id AND p.is_deleted = FALSE
		JOIN app_users u ON u.id = p.app_user_id AND u.is_deleted = FALSE
		WHERE ep.group_id = $1
		ORDER BY ep.created_at`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for group %s: %w", groupID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p := &models.Player{}
		if err := scanPlayer(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan participant player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresParticipantRepository) CountByGroup(ctx context.Context, groupID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM event_participants ep
		JOIN players p ON p.id = ep.player_id AND p.is_deleted = FALSE
		WHERE ep.group_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, groupID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants for group %s: %w", groupID, err)
	}
	return count, nil
}
