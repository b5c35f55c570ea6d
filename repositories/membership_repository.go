package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var ErrMembershipNotFound = errors.New("membership not found")

type MembershipRepository interface {
	// Enroll creates the (user, tenant) membership row if absent. On
	// conflict the existing row wins: role_id and status stay untouched
	// and are reflected back into m.
	Enroll(ctx context.Context, exec SQLExecutor, m *models.Membership) error
	// Upsert creates the membership row or repoints its role in place.
	// Membership identity is the pair itself, never time-versioned.
	Upsert(ctx context.Context, exec SQLExecutor, m *models.Membership) error
	Get(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, userID, tenantID uuid.UUID, status models.MembershipStatus) error
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

func (r *postgresMembershipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMembershipRepository) Enroll(ctx context.Context, exec SQLExecutor, m *models.Membership) error {
	executor := r.getExecutor(exec)
	// DO UPDATE с пустым эффектом нужен ради RETURNING существующей строки.
	query := `
		INSERT INTO memberships (app_user_id, tenant_id, role_id, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT memberships_pkey
		DO UPDATE SET updated_at = memberships.updated_at
		RETURNING role_id, status, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		m.AppUserID, m.TenantID, m.RoleID, m.Status,
	).Scan(&m.RoleID, &m.Status, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		return r.mapConstraint(err, "failed to enroll membership")
	}
	return nil
}

func (r *postgresMembershipRepository) Upsert(ctx context.Context, exec SQLExecutor, m *models.Membership) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO memberships (app_user_id, tenant_id, role_id, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT memberships_pkey
		DO UPDATE SET role_id = EXCLUDED.role_id, updated_at = now()
		RETURNING status, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		m.AppUserID, m.TenantID, m.RoleID, m.Status,
	).Scan(&m.Status, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		return r.mapConstraint(err, "failed to upsert membership")
	}
	return nil
}

func (r *postgresMembershipRepository) mapConstraint(err error, msg string) error {
	switch c := pqConstraint(err); c {
	case "memberships_app_user_id_fkey":
		return constraintViolation("memberships.app_user_id", c)
	case "memberships_tenant_id_fkey":
		return constraintViolation("memberships.tenant_id", c)
	case "memberships_role_id_fkey":
		return constraintViolation("memberships.role_id", c)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Visibility is relationship-derived: a membership row is hidden when its
// owning user or tenant is soft-deleted, even though the row itself carries
// no flag.
const membershipVisibleJoin = `
	JOIN app_users u ON u.id = m.app_user_id AND u.is_deleted = FALSE
	JOIN tenants t ON t.id = m.tenant_id AND t.is_deleted = FALSE`

func (r *postgresMembershipRepository) Get(ctx context.Context, userID, tenantID uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT m.app_user_id, m.tenant_id, m.role_id, m.status, m.created_at, m.updated_at
		FROM memberships m` + membershipVisibleJoin + `
		WHERE m.app_user_id = $1 AND m.tenant_id = $2`

	m := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, userID, tenantID).Scan(
		&m.AppUserID, &m.TenantID, &m.RoleID, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

func (r *postgresMembershipRepository) list(ctx context.Context, query string, arg interface{}) ([]models.Membership, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]models.Membership, 0)
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(
			&m.AppUserID, &m.TenantID, &m.RoleID, &m.Status, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *postgresMembershipRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Membership, error) {
	query := `
		SELECT m.app_user_id, m.tenant_id, m.role_id, m.status, m.created_at, m.updated_at
		FROM memberships m` + membershipVisibleJoin + `
		WHERE m.tenant_id = $1
		ORDER BY m.created_at`
	return r.list(ctx, query, tenantID)
}

func (r *postgresMembershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Membership, error) {
	query := `
		SELECT m.app_user_id, m.tenant_id, m.role_id, m.status, m.created_at, m.updated_at
		FROM memberships m` + membershipVisibleJoin + `
		WHERE m.app_user_id = $1
		ORDER BY m.created_at`
	return r.list(ctx, query, userID)
}

func (r *postgresMembershipRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, userID, tenantID uuid.UUID, status models.MembershipStatus) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE memberships SET status = $1, updated_at = now()
		WHERE app_user_id = $2 AND tenant_id = $3`

	result, err := executor.ExecContext(ctx, query, status, userID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update membership status: %w", err)
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}
