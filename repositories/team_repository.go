package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, kind *models.TeamKind) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateLogoKey(ctx context.Context, teamID uuid.UUID, logoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	DeleteByTenant(ctx context.Context, exec SQLExecutor, tenantID uuid.UUID) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamColumns = `t.id, t.tenant_id, t.name, t.description, t.kind, t.is_active, t.season_start, t.season_end, t.logo_key, t.created_at, t.updated_at, t.created_by, t.updated_by`

func scanTeam(scanner interface{ Scan(dest ...interface{}) error }, t *models.Team) error {
	return scanner.Scan(
		&t.ID, &t.TenantID, &t.Name, &t.Description, &t.Kind, &t.IsActive,
		&t.SeasonStart, &t.SeasonEnd, &t.LogoKey,
		&t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy,
	)
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (id, tenant_id, name, description, kind, is_active, season_start, season_end, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		t.ID, t.TenantID, t.Name, t.Description, t.Kind, t.IsActive,
		t.SeasonStart, t.SeasonEnd, t.CreatedBy,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if c := pqConstraint(err); c == "teams_tenant_id_fkey" {
			return constraintViolation("teams.tenant_id", c)
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM teams t
		JOIN tenants tn ON tn.id = t.tenant_id AND tn.is_deleted = FALSE
		WHERE t.id = $1 AND t.is_deleted = FALSE`, teamColumns)

	t := &models.Team{}
	if err := scanTeam(r.db.QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by id: %w", err)
	}
	return t, nil
}

func (r *postgresTeamRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, kind *models.TeamKind) ([]models.Team, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM teams t
		JOIN tenants tn ON tn.id = t.tenant_id AND tn.is_deleted = FALSE
		WHERE t.tenant_id = $1 AND t.is_deleted = FALSE`, teamColumns)
	args := []interface{}{tenantID}

	if kind != nil {
		query += " AND t.kind = $2"
		args = append(args, *kind)
	}
	query += " ORDER BY t.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by tenant: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := scanTeam(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) Update(ctx context.Context, t *models.Team) error {
	query := `
		UPDATE teams
		SET name = $1, description = $2, is_active = $3, season_start = $4, season_end = $5,
		    updated_at = now(), updated_by = $6
		WHERE id = $7 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Description, t.IsActive, t.SeasonStart, t.SeasonEnd, t.UpdatedBy, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID uuid.UUID, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1, updated_at = now() WHERE id = $2 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, logoKey, teamID)
	if err != nil {
		return fmt.Errorf("failed to update team logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// Delete flags the team. Nullifying group references and closing the roster
// view happen in the service transaction around this call.
func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE teams SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) DeleteByTenant(ctx context.Context, exec SQLExecutor, tenantID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE teams SET is_deleted = TRUE, updated_at = now() WHERE tenant_id = $1 AND is_deleted = FALSE`
	if _, err := executor.ExecContext(ctx, query, tenantID); err != nil {
		return fmt.Errorf("failed to soft-delete teams by tenant: %w", err)
	}
	return nil
}
