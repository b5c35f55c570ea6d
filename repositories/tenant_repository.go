package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var ErrTenantNotFound = errors.New("tenant not found")

type ListTenantsFilter struct {
	ActivityID *uuid.UUID
	Type       *models.TenantType
	Visibility *models.TenantVisibility
	Limit      int
	Offset     int
}

type TenantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, filter ListTenantsFilter) ([]models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	UpdateLogoKey(ctx context.Context, tenantID uuid.UUID, logoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
}

type postgresTenantRepository struct {
	db *sql.DB
}

func NewPostgresTenantRepository(db *sql.DB) TenantRepository {
	return &postgresTenantRepository{db: db}
}

func (r *postgresTenantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tenantColumns = `id, name, description, activity_id, visibility, type, is_active, default_role_id, logo_key, created_at, updated_at, created_by, updated_by`

func scanTenant(scanner interface{ Scan(dest ...interface{}) error }, t *models.Tenant) error {
	return scanner.Scan(
		&t.ID, &t.Name, &t.Description, &t.ActivityID, &t.Visibility, &t.Type,
		&t.IsActive, &t.DefaultRoleID, &t.LogoKey,
		&t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy,
	)
}

func (r *postgresTenantRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tenant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tenants (id, name, description, activity_id, visibility, type, is_active, default_role_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		t.ID, t.Name, t.Description, t.ActivityID, t.Visibility, t.Type,
		t.IsActive, t.DefaultRoleID, t.CreatedBy,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		switch c := pqConstraint(err); c {
		case "tenants_activity_id_fkey":
			return constraintViolation("tenants.activity_id", c)
		case "tenants_default_role_id_fkey":
			return constraintViolation("tenants.default_role_id", c)
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

func (r *postgresTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE id = $1 AND is_deleted = FALSE`, tenantColumns)

	t := &models.Tenant{}
	if err := scanTenant(r.db.QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by id: %w", err)
	}
	return t, nil
}

func (r *postgresTenantRepository) List(ctx context.Context, filter ListTenantsFilter) ([]models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE is_deleted = FALSE`, tenantColumns)
	args := make([]interface{}, 0, 4)
	argIdx := 1

	if filter.ActivityID != nil {
		query += fmt.Sprintf(" AND activity_id = $%d", argIdx)
		args = append(args, *filter.ActivityID)
		argIdx++
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.Visibility != nil {
		query += fmt.Sprintf(" AND visibility = $%d", argIdx)
		args = append(args, *filter.Visibility)
		argIdx++
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
		argIdx++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]models.Tenant, 0)
	for rows.Next() {
		var t models.Tenant
		if err := scanTenant(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *postgresTenantRepository) Update(ctx context.Context, t *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, description = $2, visibility = $3, type = $4, is_active = $5,
		    default_role_id = $6, updated_at = now(), updated_by = $7
		WHERE id = $8 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Description, t.Visibility, t.Type, t.IsActive,
		t.DefaultRoleID, t.UpdatedBy, t.ID,
	)
	if err != nil {
		if c := pqConstraint(err); c == "tenants_default_role_id_fkey" {
			return constraintViolation("tenants.default_role_id", c)
		}
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	return checkAffectedRows(result, ErrTenantNotFound)
}

func (r *postgresTenantRepository) UpdateLogoKey(ctx context.Context, tenantID uuid.UUID, logoKey *string) error {
	query := `UPDATE tenants SET logo_key = $1, updated_at = now() WHERE id = $2 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, logoKey, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update tenant logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTenantNotFound)
}

// Delete flags the tenant row only. The service layer owns the cascade
// (memberships, players, teams, events) inside one transaction.
func (r *postgresTenantRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tenants SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete tenant: %w", err)
	}
	return checkAffectedRows(result, ErrTenantNotFound)
}
