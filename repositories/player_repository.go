package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	GetByTenantAndUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.Player, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	DeleteByTenant(ctx context.Context, exec SQLExecutor, tenantID uuid.UUID) error
	DeleteByUser(ctx context.Context, exec SQLExecutor, userID uuid.UUID) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `p.id, p.tenant_id, p.app_user_id, p.display_name, p.created_at, p.updated_at, p.created_by, p.updated_by`

// Player reads traverse the owner chain: rows vanish when the owning user
// or tenant is soft-deleted.
const playerVisibleJoin = `
	JOIN app_users u ON u.id = p.app_user_id AND u.is_deleted = FALSE
	JOIN tenants t ON t.id = p.tenant_id AND t.is_deleted = FALSE`

func scanPlayer(scanner interface{ Scan(dest ...interface{}) error }, p *models.Player) error {
	return scanner.Scan(
		&p.ID, &p.TenantID, &p.AppUserID, &p.DisplayName,
		&p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players (id, tenant_id, app_user_id, display_name, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		p.ID, p.TenantID, p.AppUserID, p.DisplayName, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		switch c := pqConstraint(err); c {
		case "players_tenant_id_app_user_id_key":
			return constraintViolation("players.(tenant_id, app_user_id)", c)
		case "players_tenant_id_fkey":
			return constraintViolation("players.tenant_id", c)
		case "players_app_user_id_fkey":
			return constraintViolation("players.app_user_id", c)
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Player, error) {
	p := &models.Player{}
	if err := scanPlayer(r.db.QueryRowContext(ctx, query, args...), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM players p %s
		WHERE p.id = $1 AND p.is_deleted = FALSE`, playerColumns, playerVisibleJoin)
	return r.findOne(ctx, query, id)
}

func (r *postgresPlayerRepository) GetByTenantAndUser(ctx context.Context, tenantID, userID uuid.UUID) (*models.Player, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM players p %s
		WHERE p.tenant_id = $1 AND p.app_user_id = $2 AND p.is_deleted = FALSE`, playerColumns, playerVisibleJoin)
	return r.findOne(ctx, query, tenantID, userID)
}

func (r *postgresPlayerRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Player, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM players p %s
		WHERE p.tenant_id = $1 AND p.is_deleted = FALSE
		ORDER BY p.display_name`, playerColumns, playerVisibleJoin)

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players by tenant: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players SET display_name = $1, updated_at = now(), updated_by = $2
		WHERE id = $3 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query, p.DisplayName, p.UpdatedBy, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE players SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete player: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) DeleteByTenant(ctx context.Context, exec SQLExecutor, tenantID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE players SET is_deleted = TRUE, updated_at = now() WHERE tenant_id = $1 AND is_deleted = FALSE`
	if _, err := executor.ExecContext(ctx, query, tenantID); err != nil {
		return fmt.Errorf("failed to soft-delete players by tenant: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) DeleteByUser(ctx context.Context, exec SQLExecutor, userID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE players SET is_deleted = TRUE, updated_at = now() WHERE app_user_id = $1 AND is_deleted = FALSE`
	if _, err := executor.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to soft-delete players by user: %w", err)
	}
	return nil
}
