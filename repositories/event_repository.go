package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubstack/league-system/models"
	"github.com/google/uuid"
)

var (
	ErrEventNotFound = errors.New("scheduled event not found")
	// ErrEventVersionConflict signals the optimistic-concurrency check
	// failed: the row changed since the caller read it.
	ErrEventVersionConflict = errors.New("scheduled event version conflict")
)

type ListEventsFilter struct {
	Status *models.EventStatus
	Type   *models.EventType
	Limit  int
	Offset int
}

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.ScheduledEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduledEvent, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, filter ListEventsFilter) ([]models.ScheduledEvent, error)
	// Update applies a compare-and-swap on Version: the stored row must
	// still carry event.Version, and on success the counter becomes
	// event.Version+1 (reflected back into the struct).
	Update(ctx context.Context, exec SQLExecutor, event *models.ScheduledEvent) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	DeleteByTenant(ctx context.Context, exec SQLExecutor, tenantID uuid.UUID) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const eventColumns = `e.id, e.tenant_id, e.start_time, e.end_time, e.status, e.type, e.is_projected, e.version, e.created_at, e.updated_at, e.created_by, e.updated_by`

func scanEvent(scanner interface{ Scan(dest ...interface{}) error }, e *models.ScheduledEvent) error {
	return scanner.Scan(
		&e.ID, &e.TenantID, &e.StartTime, &e.EndTime, &e.Status, &e.Type,
		&e.IsProjected, &e.Version,
		&e.CreatedAt, &e.UpdatedAt, &e.CreatedBy, &e.UpdatedBy,
	)
}

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, e *models.ScheduledEvent) error {
	executor := r.getExecutor(exec)
	// version идёт в INSERT явно: первое значение счётчика задаёт сервис,
	// и именно его увидит первый Update.
	query := `
		INSERT INTO scheduled_events (id, tenant_id, start_time, end_time, status, type, is_projected, version, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		e.ID, e.TenantID, e.StartTime, e.EndTime, e.Status, e.Type, e.IsProjected, e.Version, e.CreatedBy,
	).Scan(&e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		if c := pqConstraint(err); c == "scheduled_events_tenant_id_fkey" {
			return constraintViolation("scheduled_events.tenant_id", c)
		}
		return fmt.Errorf("failed to create scheduled event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduledEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM scheduled_events e
		JOIN tenants t ON t.id = e.tenant_id AND t.is_deleted = FALSE
		WHERE e.id = $1 AND e.is_deleted = FALSE`, eventColumns)

	e := &models.ScheduledEvent{}
	if err := scanEvent(r.db.QueryRowContext(ctx, query, id), e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get scheduled event by id: %w", err)
	}
	return e, nil
}

func (r *postgresEventRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter ListEventsFilter) ([]models.ScheduledEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM scheduled_events e
		JOIN tenants t ON t.id = e.tenant_id AND t.is_deleted = FALSE
		WHERE e.tenant_id = $1 AND e.is_deleted = FALSE`, eventColumns)
	args := []interface{}{tenantID}
	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND e.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Type != nil {
		query += fmt.Sprintf(" AND e.type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}

	query += " ORDER BY e.start_time"
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
		return nil, fmt.Errorf("failed to list scheduled events: %w", err)
	}
	defer rows.Close()

	events := make([]models.ScheduledEvent, 0)
	for rows.Next() {
		var e models.ScheduledEvent
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresEventRepository) Update(ctx context.Context, exec SQLExecutor, e *models.ScheduledEvent) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE scheduled_events
		SET start_time = $1, end_time = $2, status = $3, type = $4, is_projected = $5,
		    version = version + 1, updated_at = now(), updated_by = $6
		WHERE id = $7 AND version = $8 AND is_deleted = FALSE
		RETURNING version, updated_at`

	err := executor.QueryRowContext(ctx, query,
		e.StartTime, e.EndTime, e.Status, e.Type, e.IsProjected, e.UpdatedBy,
		e.ID, e.Version,
	).Scan(&e.Version, &e.UpdatedAt)

	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update scheduled event: %w", err)
	}

	// Zero rows: distinguish a stale version from a missing event.
	var exists bool
	check := `SELECT EXISTS (SELECT 1 FROM scheduled_events WHERE id = $1 AND is_deleted = FALSE)`
	if checkErr := executor.QueryRowContext(ctx, check, e.ID).Scan(&exists); checkErr != nil {
		return fmt.Errorf("failed to recheck scheduled event after version miss: %w", checkErr)
	}
	if exists {
		return ErrEventVersionConflict
	}
	return ErrEventNotFound
}

func (r *postgresEventRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE scheduled_events SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete scheduled event: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) DeleteByTenant(ctx context.Context, exec SQLExecutor, tenantID uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := `UPDATE scheduled_events SET is_deleted = TRUE, updated_at = now() WHERE tenant_id = $1 AND is_deleted = FALSE`
	if _, err := executor.ExecContext(ctx, query, tenantID); err != nil {
		return fmt.Errorf("failed to soft-delete scheduled events by tenant: %w", err)
	}
	return nil
}
