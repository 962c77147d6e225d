package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rosterd/rosterd-api/internal/models"
)

const workplaceColumns = "name, hours_of_operation, shift_times, created_at, updated_at"

// WorkplaceRepository manages persistence for workplace templates.
type WorkplaceRepository struct {
	db *sqlx.DB
}

// NewWorkplaceRepository constructs a WorkplaceRepository.
func NewWorkplaceRepository(db *sqlx.DB) *WorkplaceRepository {
	return &WorkplaceRepository{db: db}
}

// List returns all workplaces ordered by name.
func (r *WorkplaceRepository) List(ctx context.Context) ([]models.Workplace, error) {
	query := fmt.Sprintf("SELECT %s FROM workplaces ORDER BY name ASC", workplaceColumns)
	var workplaces []models.Workplace
	if err := r.db.SelectContext(ctx, &workplaces, query); err != nil {
		return nil, fmt.Errorf("list workplaces: %w", err)
	}
	return workplaces, nil
}

// FindByName fetches a workplace by its name.
func (r *WorkplaceRepository) FindByName(ctx context.Context, name string) (*models.Workplace, error) {
	query := fmt.Sprintf("SELECT %s FROM workplaces WHERE name = $1", workplaceColumns)
	var workplace models.Workplace
	if err := r.db.GetContext(ctx, &workplace, query, name); err != nil {
		return nil, err
	}
	return &workplace, nil
}

// Upsert inserts a workplace or replaces its weekly template.
func (r *WorkplaceRepository) Upsert(ctx context.Context, workplace *models.Workplace) error {
	now := time.Now().UTC()
	if workplace.CreatedAt.IsZero() {
		workplace.CreatedAt = now
	}
	workplace.UpdatedAt = now

	const query = `INSERT INTO workplaces (name, hours_of_operation, shift_times, created_at, updated_at)
		VALUES (:name, :hours_of_operation, :shift_times, :created_at, :updated_at)
		ON CONFLICT (name) DO UPDATE SET hours_of_operation = EXCLUDED.hours_of_operation, shift_times = EXCLUDED.shift_times, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, workplace); err != nil {
		return fmt.Errorf("upsert workplace: %w", err)
	}
	return nil
}

// Delete removes a workplace template.
func (r *WorkplaceRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM workplaces WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("delete workplace: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete workplace result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
