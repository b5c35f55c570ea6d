package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var ErrRoleNotFound = errors.New("role not found")

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	AddPermission(ctx context.Context, exec SQLExecutor, roleID, permissionID uuid.UUID) error
	RemovePermission(ctx context.Context, exec SQLExecutor, roleID, permissionID uuid.UUID) error
	ListPermissions(ctx context.Context, roleID uuid.UUID) ([]models.Permission, error)
	ListPermissionCodes(ctx context.Context, roleID uuid.UUID) ([]string, error)
}

type postgresRoleRepository struct {
	db *sql.DB
}

func NewPostgresRoleRepository(db *sql.DB) RoleRepository {
	return &postgresRoleRepository{db: db}
}

func (r *postgresRoleRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoleRepository) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, name, description, is_default, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		role.ID, role.Name, role.Description, role.IsDefault, role.CreatedBy,
	).Scan(&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

func (r *postgresRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	query := `
		SELECT id, name, description, is_default, created_at, updated_at, created_by, updated_by
		FROM roles
		WHERE id = $1 AND is_deleted = FALSE`

	role := &models.Role{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&role.ID, &role.Name, &role.Description, &role.IsDefault,
		&role.CreatedAt, &role.UpdatedAt, &role.CreatedBy, &role.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role by id: %w", err)
	}
	return role, nil
}

func (r *postgresRoleRepository) List(ctx context.Context) ([]models.Role, error) {
	query := `
		SELECT id, name, description, is_default, created_at, updated_at, created_by, updated_by
		FROM roles
		WHERE is_deleted = FALSE
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]models.Role, 0)
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(
			&role.ID, &role.Name, &role.Description, &role.IsDefault,
			&role.CreatedAt, &role.UpdatedAt, &role.CreatedBy, &role.UpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *postgresRoleRepository) Update(ctx context.Context, role *models.Role) error {
	query := `
		UPDATE roles
		SET name = $1, description = $2, is_default = $3, updated_at = now(), updated_by = $4
		WHERE id = $5 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query,
		role.Name, role.Description, role.IsDefault, role.UpdatedBy, role.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return checkAffectedRows(result, ErrRoleNotFound)
}

// Delete is restricted two ways: a role held by any visible membership, or
// set as any visible tenant's default role, cannot be removed.
func (r *postgresRoleRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	executor := r.getExecutor(exec)

	var inUse bool
	guard := `
		SELECT EXISTS (
			SELECT 1 FROM memberships m
			JOIN app_users u ON u.id = m.app_user_id AND u.is_deleted = FALSE
			JOIN tenants t ON t.id = m.tenant_id AND t.is_deleted = FALSE
			WHERE m.role_id = $1
		)`
	if err := executor.QueryRowContext(ctx, guard, id).Scan(&inUse); err != nil {
		return fmt.Errorf("failed to check role membership references: %w", err)
	}
	if inUse {
		return constraintViolation("memberships.role_id", "memberships_role_id_fkey")
	}

	guard = `SELECT EXISTS (SELECT 1 FROM tenants WHERE default_role_id = $1 AND is_deleted = FALSE)`
	if err := executor.QueryRowContext(ctx, guard, id).Scan(&inUse); err != nil {
		return fmt.Errorf("failed to check role default references: %w", err)
	}
	if inUse {
		return constraintViolation("tenants.default_role_id", "tenants_default_role_id_fkey")
	}

	query := `UPDATE roles SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete role: %w", err)
	}
	return checkAffectedRows(result, ErrRoleNotFound)
}

func (r *postgresRoleRepository) AddPermission(ctx context.Context, exec SQLExecutor, roleID, permissionID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT role_permissions_pkey DO NOTHING`

	_, err := executor.ExecContext(ctx, query, roleID, permissionID)
	if err != nil {
		switch c := pqConstraint(err); c {
		case "role_permissions_role_id_fkey":
			return constraintViolation("role_permissions.role_id", c)
		case "role_permissions_permission_id_fkey":
			return constraintViolation("role_permissions.permission_id", c)
		}
		return fmt.Errorf("failed to add permission to role: %w", err)
	}
	return nil
}

func (r *postgresRoleRepository) RemovePermission(ctx context.Context, exec SQLExecutor, roleID, permissionID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`
	_, err := executor.ExecContext(ctx, query, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("failed to remove permission from role: %w", err)
	}
	return nil
}

func (r *postgresRoleRepository) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]models.Permission, error) {
	query := `
		SELECT p.id, p.name, p.code, p.description, p.created_at, p.updated_at, p.created_by, p.updated_by
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1 AND p.is_deleted = FALSE
		ORDER BY p.code`

	rows, err := r.db.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}
	defer rows.Close()

	permissions := make([]models.Permission, 0)
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Code, &p.Description,
			&p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		permissions = append(permissions, p)
	}
	return permissions, rows.Err()
}

func (r *postgresRoleRepository) ListPermissionCodes(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	query := `
		SELECT p.code
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1 AND p.is_deleted = FALSE
		ORDER BY p.code`

	rows, err := r.db.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permission codes: %w", err)
	}
	defer rows.Close()

	codes := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan permission code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
