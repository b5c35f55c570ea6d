package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var (
	// ErrTenureAlreadyOpen maps the partial unique index uq_team_members_open:
	// a second open tenure for the same (team, player) pair.
	ErrTenureAlreadyOpen = errors.New("player already has an open tenure on this team")
	ErrTenureNotOpen     = errors.New("player has no open tenure on this team")
)

// RosterRepository owns the append-only tenure history of static teams.
// Rows are never deleted when a player leaves; leaving closes the tenure by
// setting left_at.
type RosterRepository interface {
	OpenTenure(ctx context.Context, exec SQLExecutor, member *models.TeamMember) error
	CloseTenure(ctx context.Context, exec SQLExecutor, teamID, playerID uuid.UUID, leftAt time.Time, reason *string) error
	ListOpenPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.Player, error)
	ListHistoryByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error)
	ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*models.TeamMember, error)
	CountOpenByTeam(ctx context.Context, teamID uuid.UUID) (int, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRosterRepository) OpenTenure(ctx context.Context, exec SQLExecutor, member *models.TeamMember) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO team_members (id, team_id, player_id, joined_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		member.ID, member.TeamID, member.PlayerID, member.JoinedAt,
	).Scan(&member.CreatedAt)

	if err != nil {
		switch c := pqConstraint(err); c {
		case "uq_team_members_open":
			// Две конкурентные попытки открыть tenure: вторая падает здесь,
			// а не дублирует строку.
			return ErrTenureAlreadyOpen
		case "team_members_team_id_fkey":
			return constraintViolation("team_members.team_id", c)
		case "team_members_player_id_fkey":
			return constraintViolation("team_members.player_id", c)
		}
		return fmt.Errorf("failed to open tenure: %w", err)
	}
	return nil
}

func (r *postgresRosterRepository) CloseTenure(ctx context.Context, exec SQLExecutor, teamID, playerID uuid.UUID, leftAt time.Time, reason *string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE team_members
		SET left_at = $1, leave_reason = $2
		WHERE team_id = $3 AND player_id = $4 AND left_at IS NULL`

	result, err := executor.ExecContext(ctx, query, leftAt, reason, teamID, playerID)
	if err != nil {
		return fmt.Errorf("failed to close tenure: %w", err)
	}
	return checkAffectedRows(result, ErrTenureNotOpen)
}

// ListOpenPlayersByTeam returns the roster as of now: players behind tenure
// rows with left_at still null. Soft-deleted players and teams drop out via
// the joins.
func (r *postgresRosterRepository) ListOpenPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.Player, error) {
	query := `
		SELECT p.id, p.tenant_id, p.app_user_id, p.display_name, p.created_at, p.updated_at, p.created_by, p.updated_by
		FROM team_members tm
		JOIN teams t ON t.id = tm.team_id AND t.is_deleted = FALSE
		JOIN players p ON p.id = tm.player_id AND p.is_deleted = FALSE
		JOIN app_users u ON u.id = p.app_user_id AND u.is_deleted = FALSE
		WHERE tm.team_id = $1 AND tm.left_at IS NULL
		ORDER BY tm.joined_at`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open roster for team %s: %w", teamID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p := &models.Player{}
		if err := scanPlayer(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan roster player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresRosterRepository) scanMembers(rows *sql.Rows) ([]*models.TeamMember, error) {
	members := make([]*models.TeamMember, 0)
	for rows.Next() {
		m := &models.TeamMember{}
		if err := rows.Scan(
			&m.ID, &m.TeamID, &m.PlayerID, &m.JoinedAt, &m.LeftAt, &m.LeaveReason, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *postgresRosterRepository) ListHistoryByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error) {
	query := `
		SELECT tm.id, tm.team_id, tm.player_id, tm.joined_at, tm.left_at, tm.leave_reason, tm.created_at
		FROM team_members tm
		JOIN teams t ON t.id = tm.team_id AND t.is_deleted = FALSE
		WHERE tm.team_id = $1
		ORDER BY tm.joined_at`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster history for team %s: %w", teamID, err)
	}
	defer rows.Close()
	return r.scanMembers(rows)
}

func (r *postgresRosterRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]*models.TeamMember, error) {
	query := `
		SELECT tm.id, tm.team_id, tm.player_id, tm.joined_at, tm.left_at, tm.leave_reason, tm.created_at
		FROM team_members tm
		JOIN teams t ON t.id = tm.team_id AND t.is_deleted = FALSE
		WHERE tm.player_id = $1
		ORDER BY tm.joined_at`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenures for player %s: %w", playerID, err)
	}
	defer rows.Close()
	return r.scanMembers(rows)
}

// CountOpenByTeam answers the roster size without materializing players.
func (r *postgresRosterRepository) CountOpenByTeam(ctx context.Context, teamID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM team_members tm
		JOIN teams t ON t.id = tm.team_id AND t.is_deleted = FALSE
		JOIN players p ON p.id = tm.player_id AND p.is_deleted = FALSE
		WHERE tm.team_id = $1 AND tm.left_at IS NULL`

	var count int
	if err := r.db.QueryRowContext(ctx, query, teamID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open roster for team %s: %w", teamID, err)
	}
	return count, nil
}
