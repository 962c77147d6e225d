package service

import (
	"context"
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

type replacementWorkerReader interface {
	ListByWorkplace(ctx context.Context, workplaceName string) ([]models.Worker, error)
}

type replacementCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ReplacementServiceConfig governs lookup behaviour.
type ReplacementServiceConfig struct {
	CacheTTL             time.Duration
	WorkStudyTargetHours float64
}

// ReplacementService answers "who can cover this window" queries against the
// stored pool. Ranking uses the weekly hours written back by the last
// scheduling run, so the least-loaded eligible workers surface first.
type ReplacementService struct {
	workers   replacementWorkerReader
	cache     replacementCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReplacementServiceConfig
}

// NewReplacementService wires replacement lookup dependencies.
func NewReplacementService(
	workers replacementWorkerReader,
	cache replacementCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ReplacementServiceConfig,
) *ReplacementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	if cfg.WorkStudyTargetHours <= 0 {
		cfg.WorkStudyTargetHours = 5.0
	}
	return &ReplacementService{
		workers:   workers,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// FindCandidates returns workers able to cover the queried window, ranked the
// same way the assignment engine ranks slot candidates.
func (s *ReplacementService) FindCandidates(ctx context.Context, workplaceName string, query dto.ReplacementQuery) ([]dto.ReplacementCandidate, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid replacement query")
	}

	day, ok := timeparse.NormalizeDay(query.Day)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", query.Day))
	}
	start, ok := timeparse.Parse(query.Start)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unrecognized start time %q", query.Start))
	}
	end, ok := timeparse.Parse(query.End)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unrecognized end time %q", query.End))
	}
	shift := timeparse.Window{Start: start, End: end}

	s.metrics.RecordReplacementLookup()

	key := fmt.Sprintf("replacements:%s:%s:%s-%s", workplaceName, day, start, end)
	if s.cache != nil {
		var cached []dto.ReplacementCandidate
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("replacement cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	pool, err := s.workers.ListByWorkplace(ctx, workplaceName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load worker pool")
	}

	hours := make(map[string]float64, len(pool))
	eligible := make([]models.Worker, 0, len(pool))
	for _, worker := range pool {
		hours[worker.ID] = worker.WeeklyHours
		if workerAvailable(worker, day, shift) {
			eligible = append(eligible, worker)
		}
	}

	ranked := rankWorkers(eligible, hours, s.cfg.WorkStudyTargetHours)
	candidates := make([]dto.ReplacementCandidate, 0, len(ranked))
	for _, worker := range ranked {
		candidates = append(candidates, dto.ReplacementCandidate{
			ID:          worker.ID,
			FirstName:   worker.FirstName,
			LastName:    worker.LastName,
			Email:       worker.Email,
			WorkStudy:   worker.WorkStudy,
			WeeklyHours: worker.WeeklyHours,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, candidates, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("replacement cache write failed", zap.Error(err))
		}
	}
	return candidates, nil
}
