package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.AppUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AppUser, error)
	GetByEmail(ctx context.Context, email string) (*models.AppUser, error)
	GetBySubject(ctx context.Context, subject string) (*models.AppUser, error)
	Update(ctx context.Context, user *models.AppUser) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const userColumns = `id, subject, email, display_name, password_hash, is_active, created_at, updated_at, created_by, updated_by`

func (r *postgresUserRepository) scanUser(row *sql.Row, u *models.AppUser) error {
	return row.Scan(
		&u.ID,
		&u.Subject,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.CreatedBy,
		&u.UpdatedBy,
	)
}

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.AppUser) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO app_users (id, subject, email, display_name, password_hash, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		user.ID,
		user.Subject,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.IsActive,
		user.CreatedBy,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		switch pqConstraint(err) {
		case "app_users_subject_key":
			return constraintViolation("app_users.subject", "app_users_subject_key")
		case "app_users_email_key":
			return constraintViolation("app_users.email", "app_users_email_key")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.AppUser, error) {
	u := &models.AppUser{}
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := r.scanUser(row, u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AppUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM app_users WHERE id = $1 AND is_deleted = FALSE`, userColumns)
	return r.findOne(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.AppUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM app_users WHERE email = $1 AND is_deleted = FALSE`, userColumns)
	return r.findOne(ctx, query, email)
}

func (r *postgresUserRepository) GetBySubject(ctx context.Context, subject string) (*models.AppUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM app_users WHERE subject = $1 AND is_deleted = FALSE`, userColumns)
	return r.findOne(ctx, query, subject)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.AppUser) error {
	query := `
		UPDATE app_users
		SET email = $1, display_name = $2, password_hash = $3, is_active = $4,
		    updated_at = now(), updated_by = $5
		WHERE id = $6 AND is_deleted = FALSE`

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.IsActive,
		user.UpdatedBy,
		user.ID,
	)
	if err != nil {
		if c := pqConstraint(err); c == "app_users_email_key" {
			return constraintViolation("app_users.email", c)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// Delete переводит запись в is_deleted = TRUE; физическое удаление не
// выполняется. Каскады по профилям игроков выполняет сервисный слой в той
// же транзакции.
func (r *postgresUserRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE app_users SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete user: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
