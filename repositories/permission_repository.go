package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var ErrPermissionNotFound = errors.New("permission not found")

type PermissionRepository interface {
	Create(ctx context.Context, permission *models.Permission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Permission, error)
	GetByCode(ctx context.Context, code string) (*models.Permission, error)
	List(ctx context.Context) ([]models.Permission, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresPermissionRepository struct {
	db *sql.DB
}

func NewPostgresPermissionRepository(db *sql.DB) PermissionRepository {
	return &postgresPermissionRepository{db: db}
}

func (r *postgresPermissionRepository) Create(ctx context.Context, p *models.Permission) error {
	query := `
		INSERT INTO permissions (id, name, code, description, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Code, p.Description, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if c := pqConstraint(err); c == "permissions_code_key" {
			return constraintViolation("permissions.code", c)
		}
		return fmt.Errorf("failed to create permission: %w", err)
	}
	return nil
}

func (r *postgresPermissionRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Permission, error) {
	p := &models.Permission{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Code, &p.Description,
		&p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("failed to find permission: %w", err)
	}
	return p, nil
}

func (r *postgresPermissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Permission, error) {
	query := `
		SELECT id, name, code, description, created_at, updated_at, created_by, updated_by
		FROM permissions WHERE id = $1 AND is_deleted = FALSE`
	return r.findOne(ctx, query, id)
}

func (r *postgresPermissionRepository) GetByCode(ctx context.Context, code string) (*models.Permission, error) {
	query := `
		SELECT id, name, code, description, created_at, updated_at, created_by, updated_by
		FROM permissions WHERE code = $1 AND is_deleted = FALSE`
	return r.findOne(ctx, query, code)
}

func (r *postgresPermissionRepository) List(ctx context.Context) ([]models.Permission, error) {
	query := `
		SELECT id, name, code, description, created_at, updated_at, created_by, updated_by
		FROM permissions
		WHERE is_deleted = FALSE
		ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
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

func (r *postgresPermissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE permissions SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete permission: %w", err)
	}
	return checkAffectedRows(result, ErrPermissionNotFound)
}
