package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/models"
	"github.com/rosterd/rosterd-api/internal/timeparse"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
)

type workerRepository interface {
	List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, int, error)
	FindByID(ctx context.Context, id string) (*models.Worker, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, worker *models.Worker) error
	Update(ctx context.Context, worker *models.Worker) error
	Delete(ctx context.Context, id string) error
}

type workerWorkplaceReader interface {
	FindByName(ctx context.Context, name string) (*models.Workplace, error)
}

// WorkerService manages the worker pool of each workplace.
type WorkerService struct {
	repo       workerRepository
	workplaces workerWorkplaceReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewWorkerService wires worker dependencies.
func NewWorkerService(repo workerRepository, workplaces workerWorkplaceReader, validate *validator.Validate, logger *zap.Logger) *WorkerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerService{repo: repo, workplaces: workplaces, validator: validate, logger: logger}
}

// List returns workers matching the filter plus pagination metadata.
func (s *WorkerService) List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, *models.Pagination, error) {
	workers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list workers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return workers, models.NewPagination(page, size, total), nil
}

// Get fetches a worker by ID.
func (s *WorkerService) Get(ctx context.Context, id string) (*models.Worker, error) {
	worker, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "worker not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load worker")
	}
	return worker, nil
}

// Create registers a worker and assigns a stable name-slug ID.
func (s *WorkerService) Create(ctx context.Context, workplaceName string, req dto.CreateWorkerRequest) (*models.Worker, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid worker payload")
	}
	if _, err := s.workplaces.FindByName(ctx, workplaceName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workplace not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load workplace")
	}

	id, err := s.nextWorkerID(ctx, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}

	worker := &models.Worker{
		ID:            id,
		WorkplaceName: workplaceName,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         strings.TrimSpace(req.Email),
		WorkStudy:     req.WorkStudy,
		Availability:  canonicalWindows(req.Availability),
		Unavailable:   canonicalWindows(req.Unavailable),
	}
	if err := s.repo.Create(ctx, worker); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create worker")
	}
	s.logger.Info("worker created", zap.String("worker_id", worker.ID), zap.String("workplace", workplaceName))
	return worker, nil
}

// Update edits a worker's identity and windows.
func (s *WorkerService) Update(ctx context.Context, id string, req dto.UpdateWorkerRequest) (*models.Worker, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid worker payload")
	}
	worker, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	worker.FirstName = strings.TrimSpace(req.FirstName)
	worker.LastName = strings.TrimSpace(req.LastName)
	worker.Email = strings.TrimSpace(req.Email)
	worker.WorkStudy = req.WorkStudy
	worker.Availability = canonicalWindows(req.Availability)
	worker.Unavailable = canonicalWindows(req.Unavailable)

	if err := s.repo.Update(ctx, worker); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update worker")
	}
	return worker, nil
}

// Delete removes a worker from the pool.
func (s *WorkerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "worker not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete worker")
	}
	return nil
}

// BulkImport registers workers from raw availability-sheet rows. Rows always
// import; unreadable cell values degrade to "not available" and are reported
// as issues so the sheet can be fixed and re-imported.
func (s *WorkerService) BulkImport(ctx context.Context, workplaceName string, req dto.ImportWorkersRequest) (*dto.ImportWorkersResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import payload")
	}
	if _, err := s.workplaces.FindByName(ctx, workplaceName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workplace not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load workplace")
	}

	resp := &dto.ImportWorkersResponse{}
	for i, row := range req.Rows {
		availability, issues := parseAvailabilityCells(i, row.Days)
		resp.Issues = append(resp.Issues, issues...)

		unavailable := models.WindowMap{}
		for _, entry := range row.Unavailable {
			parsed := timeparse.ParseUnavailable(entry)
			if len(parsed) == 0 && strings.TrimSpace(entry) != "" && !strings.EqualFold(strings.TrimSpace(entry), "na") {
				resp.Issues = append(resp.Issues, dto.ImportIssue{
					Row: i, Field: "unavailable", Value: entry,
					Message: "unrecognized unavailable expression",
				})
				continue
			}
			for day, windows := range parsed {
				for _, w := range windows {
					unavailable[day] = append(unavailable[day], models.TimeWindow{Start: w.Start.String(), End: w.End.String()})
				}
			}
		}

		id, err := s.nextWorkerID(ctx, row.FirstName, row.LastName)
		if err != nil {
			return nil, err
		}
		worker := &models.Worker{
			ID:            id,
			WorkplaceName: workplaceName,
			FirstName:     strings.TrimSpace(row.FirstName),
			LastName:      strings.TrimSpace(row.LastName),
			Email:         strings.TrimSpace(row.Email),
			WorkStudy:     parseYes(row.WorkStudy),
			Availability:  availability,
			Unavailable:   unavailable,
		}
		if err := s.repo.Create(ctx, worker); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("import row %d", i))
		}
		resp.Workers = append(resp.Workers, *worker)
	}

	s.logger.Info("workers imported",
		zap.String("workplace", workplaceName),
		zap.Int("rows", len(req.Rows)),
		zap.Int("issues", len(resp.Issues)))
	return resp, nil
}

// nextWorkerID produces first_last_N slugs, taking the first free ordinal.
func (s *WorkerService) nextWorkerID(ctx context.Context, firstName, lastName string) (string, error) {
	base := slugPart(firstName) + "_" + slugPart(lastName)
	for n := 1; ; n++ {
		id := fmt.Sprintf("%s_%d", base, n)
		taken, err := s.repo.ExistsByID(ctx, id)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "allocate worker id")
		}
		if !taken {
			return id, nil
		}
	}
}

func slugPart(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}

func parseYes(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

// parseAvailabilityCells turns per-day free text into canonical windows. A
// cell may hold several comma-separated ranges.
func parseAvailabilityCells(row int, days map[string]string) (models.WindowMap, []dto.ImportIssue) {
	availability := models.WindowMap{}
	var issues []dto.ImportIssue

	for rawDay, cell := range days {
		day, ok := timeparse.NormalizeDay(rawDay)
		if !ok {
			issues = append(issues, dto.ImportIssue{
				Row: row, Field: "days", Value: rawDay,
				Message: "unknown day name",
			})
			continue
		}
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" || strings.EqualFold(trimmed, "na") {
			continue
		}
		for _, segment := range strings.Split(trimmed, ",") {
			window, ok := timeparse.ParseRange(strings.TrimSpace(segment))
			if !ok {
				issues = append(issues, dto.ImportIssue{
					Row: row, Field: day, Value: strings.TrimSpace(segment),
					Message: "unrecognized time range",
				})
				continue
			}
			availability[day] = append(availability[day], models.TimeWindow{Start: window.Start.String(), End: window.End.String()})
		}
	}
	return availability, issues
}

// canonicalWindows re-renders window strings through the parser so stored
// values are always 24-hour HH:MM. Unparseable windows are dropped.
func canonicalWindows(raw models.WindowMap) models.WindowMap {
	out := models.WindowMap{}
	for rawDay, windows := range raw {
		day, ok := timeparse.NormalizeDay(rawDay)
		if !ok {
			continue
		}
		for _, tw := range windows {
			start, ok := timeparse.Parse(tw.Start)
			if !ok {
				continue
			}
			end, ok := timeparse.Parse(tw.End)
			if !ok {
				continue
			}
			out[day] = append(out[day], models.TimeWindow{Start: start.String(), End: end.String()})
		}
	}
	return out
}
