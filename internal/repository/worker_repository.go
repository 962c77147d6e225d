package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rosterd/rosterd-api/internal/models"
)

const workerColumns = "id, workplace_name, first_name, last_name, email, work_study, availability, unavailable, weekly_hours, created_at, updated_at"

// WorkerRepository manages persistence for workers.
type WorkerRepository struct {
	db *sqlx.DB
}

// NewWorkerRepository constructs a WorkerRepository.
func NewWorkerRepository(db *sqlx.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

// List returns workers matching filters along with total count.
func (r *WorkerRepository) List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, int, error) {
	base := "FROM workers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.WorkplaceName != "" {
		conditions = append(conditions, fmt.Sprintf("workplace_name = $%d", len(args)+1))
		args = append(args, filter.WorkplaceName)
	}
	if filter.WorkStudy != nil {
		conditions = append(conditions, fmt.Sprintf("work_study = $%d", len(args)+1))
		args = append(args, *filter.WorkStudy)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(COALESCE(email, '')) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"first_name":   "first_name",
		"last_name":    "last_name",
		"weekly_hours": "weekly_hours",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", workerColumns, base, column, order, size, offset)
	var workers []models.Worker
	if err := r.db.SelectContext(ctx, &workers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list workers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count workers: %w", err)
	}

	return workers, total, nil
}

// ListByWorkplace returns the full pool for a workplace in registration order.
// The stable ordering keeps scheduling runs deterministic.
func (r *WorkerRepository) ListByWorkplace(ctx context.Context, workplaceName string) ([]models.Worker, error) {
	query := fmt.Sprintf("SELECT %s FROM workers WHERE workplace_name = $1 ORDER BY created_at ASC, id ASC", workerColumns)
	var workers []models.Worker
	if err := r.db.SelectContext(ctx, &workers, query, workplaceName); err != nil {
		return nil, fmt.Errorf("list workers by workplace: %w", err)
	}
	return workers, nil
}

// ListAll returns every worker, used by the backup dump.
func (r *WorkerRepository) ListAll(ctx context.Context) ([]models.Worker, error) {
	query := fmt.Sprintf("SELECT %s FROM workers ORDER BY workplace_name ASC, created_at ASC, id ASC", workerColumns)
	var workers []models.Worker
	if err := r.db.SelectContext(ctx, &workers, query); err != nil {
		return nil, fmt.Errorf("list all workers: %w", err)
	}
	return workers, nil
}

// ListByIDs fetches workers by ID preserving registration order.
func (r *WorkerRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Worker, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM workers WHERE id IN (?) ORDER BY created_at ASC, id ASC", workerColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build workers query: %w", err)
	}
	query = r.db.Rebind(query)
	var workers []models.Worker
	if err := r.db.SelectContext(ctx, &workers, query, args...); err != nil {
		return nil, fmt.Errorf("list workers by ids: %w", err)
	}
	return workers, nil
}

// FindByID fetches a worker by ID.
func (r *WorkerRepository) FindByID(ctx context.Context, id string) (*models.Worker, error) {
	query := fmt.Sprintf("SELECT %s FROM workers WHERE id = $1", workerColumns)
	var worker models.Worker
	if err := r.db.GetContext(ctx, &worker, query, id); err != nil {
		return nil, err
	}
	return &worker, nil
}

// ExistsByID checks whether a worker ID is already taken.
func (r *WorkerRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM workers WHERE id = $1 LIMIT 1", id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check worker id: %w", err)
	}
	return true, nil
}

// Create inserts a new worker record.
func (r *WorkerRepository) Create(ctx context.Context, worker *models.Worker) error {
	now := time.Now().UTC()
	if worker.CreatedAt.IsZero() {
		worker.CreatedAt = now
	}
	worker.UpdatedAt = now

	const query = `INSERT INTO workers (id, workplace_name, first_name, last_name, email, work_study, availability, unavailable, weekly_hours, created_at, updated_at)
		VALUES (:id, :workplace_name, :first_name, :last_name, :email, :work_study, :availability, :unavailable, :weekly_hours, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, worker); err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	return nil
}

// Update modifies an existing worker record.
func (r *WorkerRepository) Update(ctx context.Context, worker *models.Worker) error {
	worker.UpdatedAt = time.Now().UTC()
	const query = `UPDATE workers SET first_name = :first_name, last_name = :last_name, email = :email, work_study = :work_study, availability = :availability, unavailable = :unavailable, weekly_hours = :weekly_hours, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, worker); err != nil {
		return fmt.Errorf("update worker: %w", err)
	}
	return nil
}

// UpdateWeeklyHours writes back the per-worker totals after a scheduling run.
func (r *WorkerRepository) UpdateWeeklyHours(ctx context.Context, hours map[string]float64) error {
	if len(hours) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin weekly hours update: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	const query = `UPDATE workers SET weekly_hours = $2, updated_at = $3 WHERE id = $1`
	for id, total := range hours {
		if _, err := tx.ExecContext(ctx, query, id, total, now); err != nil {
			return fmt.Errorf("update weekly hours for %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit weekly hours update: %w", err)
	}
	return nil
}

// Delete removes a worker record.
func (r *WorkerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete worker result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
