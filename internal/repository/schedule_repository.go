package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rosterd/rosterd-api/internal/models"
)

const scheduleColumns = "id, workplace_name, generated_at, days, workers, created_at, updated_at"

// ScheduleRepository manages persistence for schedule snapshots.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedule snapshots for a workplace, newest first.
func (r *ScheduleRepository) List(ctx context.Context, workplaceName string, page, pageSize int) ([]models.Schedule, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT %s FROM schedules WHERE workplace_name = $1 ORDER BY generated_at DESC LIMIT %d OFFSET %d", scheduleColumns, pageSize, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, workplaceName); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM schedules WHERE workplace_name = $1", workplaceName); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return schedules, total, nil
}

// ListAll returns every snapshot, used by the backup dump.
func (r *ScheduleRepository) ListAll(ctx context.Context) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules ORDER BY workplace_name ASC, generated_at DESC", scheduleColumns)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("list all schedules: %w", err)
	}
	return schedules, nil
}

// FindByID fetches a schedule snapshot by ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// FindLatest fetches the most recently generated snapshot for a workplace.
func (r *ScheduleRepository) FindLatest(ctx context.Context, workplaceName string) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE workplace_name = $1 ORDER BY generated_at DESC LIMIT 1", scheduleColumns)
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, workplaceName); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Create inserts a new schedule snapshot.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.GeneratedAt.IsZero() {
		schedule.GeneratedAt = now
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (id, workplace_name, generated_at, days, workers, created_at, updated_at)
		VALUES (:id, :workplace_name, :generated_at, :days, :workers, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update rewrites the day grid and worker summaries of a stored snapshot.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET days = :days, workers = :workers, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule snapshot.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete schedule result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
