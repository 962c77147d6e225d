package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/models"
	"github.com/rosterd/rosterd-api/internal/timeparse"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
)

type scheduleWorkerReader interface {
	ListByWorkplace(ctx context.Context, workplaceName string) ([]models.Worker, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Worker, error)
	FindByID(ctx context.Context, id string) (*models.Worker, error)
	UpdateWeeklyHours(ctx context.Context, hours map[string]float64) error
}

type scheduleWorkplaceReader interface {
	FindByName(ctx context.Context, name string) (*models.Workplace, error)
}

type scheduleStore interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	List(ctx context.Context, workplaceName string, page, pageSize int) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	FindLatest(ctx context.Context, workplaceName string) (*models.Schedule, error)
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ScheduleServiceConfig governs assignment behaviour.
type ScheduleServiceConfig struct {
	WorkStudyTargetHours float64
	LatestScheduleTTL    time.Duration
}

// ScheduleService generates, stores, and edits weekly assignment snapshots.
type ScheduleService struct {
	workers    scheduleWorkerReader
	workplaces scheduleWorkplaceReader
	schedules  scheduleStore
	cache      scheduleCache
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ScheduleServiceConfig
}

// NewScheduleService wires scheduling dependencies.
func NewScheduleService(
	workers scheduleWorkerReader,
	workplaces scheduleWorkplaceReader,
	schedules scheduleStore,
	cache scheduleCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleServiceConfig,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WorkStudyTargetHours <= 0 {
		cfg.WorkStudyTargetHours = 5.0
	}
	if cfg.LatestScheduleTTL <= 0 {
		cfg.LatestScheduleTTL = 5 * time.Minute
	}
	return &ScheduleService{
		workers:    workers,
		workplaces: workplaces,
		schedules:  schedules,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

func latestScheduleCacheKey(workplaceName string) string {
	return fmt.Sprintf("schedules:%s:latest", workplaceName)
}

// Generate runs the assignment engine over a workplace's weekly template and
// persists the result as a new snapshot. Days are processed Monday through
// Sunday; within a day, slots are filled in template order. Unfillable slots
// stay in the grid marked UNASSIGNED, and unparseable template entries are
// skipped and reported.
func (s *ScheduleService) Generate(ctx context.Context, workplaceName string, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	started := time.Now()

	workplace, err := s.workplaces.FindByName(ctx, workplaceName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workplace not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load workplace")
	}

	pool, err := s.loadPool(ctx, workplaceName, req.WorkerIDs)
	if err != nil {
		return nil, err
	}

	days := models.DayAssignments{}
	hours := make(map[string]float64, len(pool))
	for _, worker := range pool {
		hours[worker.ID] = 0
	}
	var skipped []models.SkippedSlot
	unassigned := 0

	for _, day := range timeparse.Weekdays {
		assignedToday := make(map[string]bool)
		var assignments []models.Assignment

		for _, entry := range workplace.ShiftTimes[day] {
			shift, ok := timeparse.ParseRange(entry)
			if !ok {
				skipped = append(skipped, models.SkippedSlot{Day: day, Entry: entry})
				s.logger.Warn("skipping unparseable shift entry",
					zap.String("workplace", workplaceName),
					zap.String("day", day),
					zap.String("entry", entry))
				continue
			}

			duration := timeparse.DurationHours(shift.Start, shift.End)
			assignment := models.Assignment{
				StartTime:     shift.Start.String(),
				EndTime:       shift.End.String(),
				WorkerName:    models.UnassignedWorkerName,
				DurationHours: duration,
			}

			candidates := make([]models.Worker, 0, len(pool))
			for _, worker := range pool {
				if assignedToday[worker.ID] {
					continue
				}
				if workerAvailable(worker, day, shift) {
					candidates = append(candidates, worker)
				}
			}

			if ranked := rankWorkers(candidates, hours, s.cfg.WorkStudyTargetHours); len(ranked) > 0 {
				chosen := ranked[0]
				id := chosen.ID
				assignment.WorkerID = &id
				assignment.WorkerName = chosen.FullName()
				hours[id] += duration
				assignedToday[id] = true
			} else {
				unassigned++
			}

			assignments = append(assignments, assignment)
		}

		if len(assignments) > 0 {
			days[day] = assignments
		}
	}

	summaries := make(models.WorkerSummaries, 0, len(pool))
	for _, worker := range pool {
		summaries = append(summaries, models.WorkerSummary{
			ID:          worker.ID,
			Name:        worker.FullName(),
			Email:       worker.Email,
			WorkStudy:   worker.WorkStudy,
			WeeklyHours: hours[worker.ID],
		})
	}

	schedule := &models.Schedule{
		WorkplaceName: workplaceName,
		Days:          days,
		Workers:       summaries,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist schedule")
	}

	if err := s.workers.UpdateWeeklyHours(ctx, hours); err != nil {
		s.logger.Error("weekly hours write-back failed", zap.String("schedule_id", schedule.ID), zap.Error(err))
	}
	s.invalidateCaches(ctx, workplaceName)

	s.metrics.ObserveScheduleRun(time.Since(started), unassigned, len(skipped))
	s.logger.Info("schedule generated",
		zap.String("workplace", workplaceName),
		zap.String("schedule_id", schedule.ID),
		zap.Int("pool_size", len(pool)),
		zap.Int("unassigned_slots", unassigned),
		zap.Int("skipped_slots", len(skipped)))

	return &dto.GenerateScheduleResponse{Schedule: schedule, Skipped: skipped}, nil
}

func (s *ScheduleService) loadPool(ctx context.Context, workplaceName string, workerIDs []string) ([]models.Worker, error) {
	if len(workerIDs) == 0 {
		pool, err := s.workers.ListByWorkplace(ctx, workplaceName)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load worker pool")
		}
		return pool, nil
	}

	pool, err := s.workers.ListByIDs(ctx, workerIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load worker pool")
	}

	found := make(map[string]bool, len(pool))
	for _, worker := range pool {
		if worker.WorkplaceName != workplaceName {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("worker %s belongs to another workplace", worker.ID))
		}
		found[worker.ID] = true
	}
	for _, id := range workerIDs {
		if !found[id] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown worker id %s", id))
		}
	}
	return pool, nil
}

func (s *ScheduleService) invalidateCaches(ctx context.Context, workplaceName string) {
	if s.cache == nil {
		return
	}
	for _, pattern := range []string{
		fmt.Sprintf("schedules:%s:*", workplaceName),
		fmt.Sprintf("replacements:%s:*", workplaceName),
	} {
		if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}

// List returns stored snapshots for a workplace, newest first.
func (s *ScheduleService) List(ctx context.Context, workplaceName string, page, pageSize int) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.schedules.List(ctx, workplaceName, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list schedules")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return schedules, models.NewPagination(page, pageSize, total), nil
}

// Get fetches a snapshot by ID.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load schedule")
	}
	return schedule, nil
}

// Latest returns the most recent snapshot for a workplace, cache-aside.
func (s *ScheduleService) Latest(ctx context.Context, workplaceName string) (*models.Schedule, error) {
	key := latestScheduleCacheKey(workplaceName)
	if s.cache != nil {
		var cached models.Schedule
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("latest schedule cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	schedule, err := s.schedules.FindLatest(ctx, workplaceName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule generated yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load latest schedule")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, schedule, s.cfg.LatestScheduleTTL); err != nil {
			s.logger.Warn("latest schedule cache write failed", zap.Error(err))
		}
	}
	return schedule, nil
}

// Delete removes a stored snapshot.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete schedule")
	}
	s.invalidateCaches(ctx, schedule.WorkplaceName)
	return nil
}

// Reassign swaps or clears the worker on one slot of a stored snapshot. The
// edited snapshot is validated first; violations block the write unless the
// caller forces it, and are returned either way.
func (s *ScheduleService) Reassign(ctx context.Context, scheduleID string, req dto.ReassignRequest) (*dto.ReassignResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassignment request")
	}

	day, ok := timeparse.NormalizeDay(req.Day)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", req.Day))
	}

	schedule, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if req.Index >= len(schedule.Days[day]) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s has no slot %d", day, req.Index))
	}

	assignment := schedule.Days[day][req.Index]
	if req.WorkerID != nil {
		worker, err := s.workers.FindByID(ctx, *req.WorkerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "worker not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load worker")
		}
		id := worker.ID
		assignment.WorkerID = &id
		assignment.WorkerName = worker.FullName()
	} else {
		assignment.WorkerID = nil
		assignment.WorkerName = models.UnassignedWorkerName
	}
	schedule.Days[day][req.Index] = assignment
	s.recomputeSummaries(ctx, schedule)

	workersByID, err := s.poolByID(ctx, schedule.WorkplaceName)
	if err != nil {
		return nil, err
	}
	violations := ValidateSchedule(schedule, workersByID)

	if len(violations) > 0 && !req.Force {
		return &dto.ReassignResponse{Schedule: schedule, Violations: violations, Applied: false}, nil
	}

	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist reassignment")
	}
	s.invalidateCaches(ctx, schedule.WorkplaceName)

	return &dto.ReassignResponse{Schedule: schedule, Violations: violations, Applied: true}, nil
}

// Validate re-checks a stored snapshot without modifying it.
func (s *ScheduleService) Validate(ctx context.Context, scheduleID string) ([]models.ScheduleViolation, error) {
	schedule, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	workersByID, err := s.poolByID(ctx, schedule.WorkplaceName)
	if err != nil {
		return nil, err
	}
	return ValidateSchedule(schedule, workersByID), nil
}

func (s *ScheduleService) poolByID(ctx context.Context, workplaceName string) (map[string]models.Worker, error) {
	pool, err := s.workers.ListByWorkplace(ctx, workplaceName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load worker pool")
	}
	byID := make(map[string]models.Worker, len(pool))
	for _, worker := range pool {
		byID[worker.ID] = worker
	}
	return byID, nil
}

// recomputeSummaries rebuilds the per-worker hour totals from the day grid
// after a manual edit. Summary rows keep pool identity fields from the
// original run; workers edited in after the fact get a minimal row.
func (s *ScheduleService) recomputeSummaries(ctx context.Context, schedule *models.Schedule) {
	totals := make(map[string]float64)
	names := make(map[string]string)
	for _, day := range timeparse.Weekdays {
		for _, assignment := range schedule.Days[day] {
			if !assignment.Assigned() {
				continue
			}
			totals[*assignment.WorkerID] += assignment.DurationHours
			names[*assignment.WorkerID] = assignment.WorkerName
		}
	}

	known := make(map[string]bool, len(schedule.Workers))
	for i := range schedule.Workers {
		id := schedule.Workers[i].ID
		schedule.Workers[i].WeeklyHours = totals[id]
		known[id] = true
	}
	for id, total := range totals {
		if known[id] {
			continue
		}
		summary := models.WorkerSummary{ID: id, Name: names[id], WeeklyHours: total}
		if worker, err := s.workers.FindByID(ctx, id); err == nil {
			summary.Email = worker.Email
			summary.WorkStudy = worker.WorkStudy
		}
		schedule.Workers = append(schedule.Workers, summary)
	}
}
