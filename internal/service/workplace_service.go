package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/models"
	"github.com/rosterd/rosterd-api/internal/timeparse"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
)

type workplaceRepository interface {
	List(ctx context.Context) ([]models.Workplace, error)
	FindByName(ctx context.Context, name string) (*models.Workplace, error)
	Upsert(ctx context.Context, workplace *models.Workplace) error
	Delete(ctx context.Context, name string) error
}

// WorkplaceService manages workplace templates. Template validation is
// lenient: malformed shift entries are stored and warned about rather than
// rejected, since the engine skips them safely at run time.
type WorkplaceService struct {
	repo      workplaceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkplaceService wires workplace dependencies.
func NewWorkplaceService(repo workplaceRepository, validate *validator.Validate, logger *zap.Logger) *WorkplaceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkplaceService{repo: repo, validator: validate, logger: logger}
}

// List returns all workplaces.
func (s *WorkplaceService) List(ctx context.Context) ([]models.Workplace, error) {
	workplaces, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list workplaces")
	}
	return workplaces, nil
}

// Get fetches a workplace by name.
func (s *WorkplaceService) Get(ctx context.Context, name string) (*models.Workplace, error) {
	workplace, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workplace not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load workplace")
	}
	return workplace, nil
}

// Upsert stores the workplace template and reports entries the scheduler
// will not be able to use.
func (s *WorkplaceService) Upsert(ctx context.Context, req dto.UpsertWorkplaceRequest) (*dto.WorkplaceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workplace payload")
	}

	var warnings []string
	shiftTimes := models.ShiftTimes{}
	for rawDay, entries := range req.ShiftTimes {
		day, ok := timeparse.NormalizeDay(rawDay)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown day %q ignored", rawDay))
			continue
		}
		shiftTimes[day] = entries
		for _, entry := range entries {
			if _, ok := timeparse.ParseRange(entry); !ok {
				warnings = append(warnings, fmt.Sprintf("%s entry %q will be skipped at scheduling time", day, entry))
			}
		}
	}

	workplace := &models.Workplace{
		Name:             req.Name,
		HoursOfOperation: req.HoursOfOperation,
		ShiftTimes:       shiftTimes,
	}
	if existing, err := s.repo.FindByName(ctx, req.Name); err == nil {
		workplace.CreatedAt = existing.CreatedAt
	}
	if err := s.repo.Upsert(ctx, workplace); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store workplace")
	}

	if len(warnings) > 0 {
		s.logger.Warn("workplace template stored with warnings",
			zap.String("workplace", req.Name),
			zap.Strings("warnings", warnings))
	}
	return &dto.WorkplaceResponse{Workplace: workplace, Warnings: warnings}, nil
}

// Delete removes a workplace template.
func (s *WorkplaceService) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "workplace not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "delete workplace")
	}
	return nil
}
