package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/models"
	"github.com/rosterd/rosterd-api/internal/timeparse"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
	"github.com/rosterd/rosterd-api/pkg/export"
	"github.com/rosterd/rosterd-api/pkg/jobs"
	"github.com/rosterd/rosterd-api/pkg/storage"
)

const gridStepMinutes = 30

type exportScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type exportSettingsReader interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
}

// ExportServiceConfig governs the async export pipeline.
type ExportServiceConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	ResultTTL         time.Duration
}

type exportJobPayload struct {
	JobID      string
	ScheduleID string
	Format     string
}

// ExportService renders stored schedules to CSV or PDF files asynchronously.
// Rendered files land in local storage and expire after the configured TTL.
type ExportService struct {
	schedules exportScheduleReader
	settings  exportSettingsReader
	store     *storage.LocalStorage
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	cfg       ExportServiceConfig

	queue *jobs.Queue

	mu     sync.RWMutex
	status map[string]*dto.JobStatus
}

// NewExportService wires the export pipeline.
func NewExportService(
	schedules exportScheduleReader,
	settings exportSettingsReader,
	store *storage.LocalStorage,
	logger *zap.Logger,
	cfg ExportServiceConfig,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 2
	}
	if cfg.WorkerRetries <= 0 {
		cfg.WorkerRetries = 3
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}

	s := &ExportService{
		schedules: schedules,
		settings:  settings,
		store:     store,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		cfg:       cfg,
		status:    make(map[string]*dto.JobStatus),
	}
	s.queue = jobs.NewQueue("exports", s.handle, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches export workers and the expiry sweeper.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.sweep(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules an export job and returns its initial status.
func (s *ExportService) Enqueue(ctx context.Context, scheduleID string, req dto.ExportScheduleRequest) (*dto.JobStatus, error) {
	format := strings.ToLower(req.Format)
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", req.Format))
	}
	if _, err := s.schedules.FindByID(ctx, scheduleID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
	}

	status := &dto.JobStatus{
		ID:         uuid.NewString(),
		Type:       "export_" + format,
		Status:     dto.JobStatusPending,
		EnqueuedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.status[status.ID] = status
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Job{
		ID:      status.ID,
		Type:    status.Type,
		Payload: exportJobPayload{JobID: status.ID, ScheduleID: scheduleID, Format: format},
	})
	if err != nil {
		s.markFailed(status.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "enqueue export")
	}
	return s.Status(status.ID)
}

// Status reports the current state of an export job.
func (s *ExportService) Status(jobID string) (*dto.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.status[jobID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	copied := *status
	return &copied, nil
}

// ListFiles returns rendered export files, newest first.
func (s *ExportService) ListFiles() ([]storage.FileInfo, error) {
	files, err := s.store.List()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list export files")
	}
	return files, nil
}

// Open returns a read handle on a rendered export file.
func (s *ExportService) Open(filename string) (*os.File, error) {
	file, err := s.store.Open(filename)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	return file, nil
}

func (s *ExportService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportJobPayload)
	if !ok {
		return fmt.Errorf("unexpected export payload %T", job.Payload)
	}
	s.setStatus(payload.JobID, dto.JobStatusRunning, "", nil)

	schedule, err := s.schedules.FindByID(ctx, payload.ScheduleID)
	if err != nil {
		s.markFailed(payload.JobID, err)
		return fmt.Errorf("load schedule %s: %w", payload.ScheduleID, err)
	}

	doc := s.buildDocument(ctx, schedule)
	var data []byte
	switch payload.Format {
	case "pdf":
		data, err = s.pdf.Render(doc)
	default:
		data, err = s.csv.Render(doc)
	}
	if err != nil {
		s.markFailed(payload.JobID, err)
		return fmt.Errorf("render %s export: %w", payload.Format, err)
	}

	filename := fmt.Sprintf("schedule_%s_%s.%s", schedule.ID, time.Now().UTC().Format("20060102T150405"), payload.Format)
	if _, err := s.store.Save(filename, data); err != nil {
		s.markFailed(payload.JobID, err)
		return fmt.Errorf("store export: %w", err)
	}

	s.setStatus(payload.JobID, dto.JobStatusCompleted, filename, nil)
	s.logger.Info("export rendered",
		zap.String("schedule_id", schedule.ID),
		zap.String("format", payload.Format),
		zap.String("file", filename))
	return nil
}

// buildDocument lays the snapshot out as two tables: a half-hour weekly grid
// and the per-worker summary.
func (s *ExportService) buildDocument(ctx context.Context, schedule *models.Schedule) export.Document {
	title := fmt.Sprintf("Weekly Schedule - %s", schedule.WorkplaceName)
	if s.settings != nil {
		if setting, err := s.settings.Get(ctx, models.SettingContactEmail); err == nil && setting.Value != "" {
			title += fmt.Sprintf(" (contact %s)", setting.Value)
		}
	}

	grid := export.Table{
		Name:    "Weekly Grid",
		Headers: append([]string{"Time"}, timeparse.Weekdays...),
	}
	for _, slot := range gridSlots(schedule) {
		row := map[string]string{"Time": timeparse.FromMinutes(slot).Format12Hour()}
		for _, day := range timeparse.Weekdays {
			row[day] = occupantAt(schedule.Days[day], slot)
		}
		grid.Rows = append(grid.Rows, row)
	}

	summary := export.Table{
		Name:    "Worker Summary",
		Headers: []string{"Worker", "Email", "Work Study", "Weekly Hours"},
	}
	for _, worker := range schedule.Workers {
		workStudy := "No"
		if worker.WorkStudy {
			workStudy = "Yes"
		}
		summary.Rows = append(summary.Rows, map[string]string{
			"Worker":       worker.Name,
			"Email":        worker.Email,
			"Work Study":   workStudy,
			"Weekly Hours": fmt.Sprintf("%.1f", worker.WeeklyHours),
		})
	}

	return export.Document{Title: title, Tables: []export.Table{grid, summary}}
}

// gridSlots returns the half-hour row offsets spanning the earliest start to
// the latest end across the whole week.
func gridSlots(schedule *models.Schedule) []int {
	first, last := -1, -1
	for _, day := range timeparse.Weekdays {
		for _, assignment := range schedule.Days[day] {
			start, ok := timeparse.Parse(assignment.StartTime)
			if !ok {
				continue
			}
			end, ok := timeparse.Parse(assignment.EndTime)
			if !ok {
				continue
			}
			if first == -1 || start.Minutes() < first {
				first = start.Minutes()
			}
			if end.Minutes() > last {
				last = end.Minutes()
			}
		}
	}
	if first == -1 || last <= first {
		return nil
	}

	var slots []int
	for at := first; at <= last; at += gridStepMinutes {
		slots = append(slots, at)
	}
	return slots
}

func occupantAt(assignments []models.Assignment, minute int) string {
	for _, assignment := range assignments {
		start, ok := timeparse.Parse(assignment.StartTime)
		if !ok {
			continue
		}
		end, ok := timeparse.Parse(assignment.EndTime)
		if !ok {
			continue
		}
		if start.Minutes() <= minute && minute < end.Minutes() {
			return assignment.WorkerName
		}
	}
	return ""
}

func (s *ExportService) setStatus(jobID, state, filename string, failure error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.status[jobID]
	if !ok {
		return
	}
	status.Status = state
	if filename != "" {
		status.FileName = filename
	}
	if failure != nil {
		status.Error = failure.Error()
	}
	if state == dto.JobStatusCompleted || state == dto.JobStatusFailed {
		now := time.Now().UTC()
		status.FinishedAt = &now
	}
}

func (s *ExportService) markFailed(jobID string, err error) {
	s.setStatus(jobID, dto.JobStatusFailed, "", err)
}

func (s *ExportService) sweep(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.store.CleanupOlderThan(s.cfg.ResultTTL)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
			}
		}
	}
}
