package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rosterd/rosterd-api/internal/models"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
	"github.com/rosterd/rosterd-api/pkg/storage"
)

type backupWorkerReader interface {
	ListAll(ctx context.Context) ([]models.Worker, error)
}

type backupWorkplaceReader interface {
	List(ctx context.Context) ([]models.Workplace, error)
}

type backupScheduleReader interface {
	ListAll(ctx context.Context) ([]models.Schedule, error)
}

type backupSettingsReader interface {
	List(ctx context.Context) ([]models.Setting, error)
}

// BackupService dumps the full dataset as JSON files inside a zip archive.
// Archives are created and listed over the API; restore is a deliberate
// operator action driven from the archive file, not an HTTP endpoint.
type BackupService struct {
	workers    backupWorkerReader
	workplaces backupWorkplaceReader
	schedules  backupScheduleReader
	settings   backupSettingsReader
	store      *storage.LocalStorage
	logger     *zap.Logger
}

// BackupArchive describes the JSON files inside one backup zip.
type BackupArchive struct {
	Workers    []models.Worker    `json:"workers"`
	Workplaces []models.Workplace `json:"workplaces"`
	Schedules  []models.Schedule  `json:"schedules"`
	Settings   []models.Setting   `json:"settings"`
}

// NewBackupService wires backup dependencies.
func NewBackupService(
	workers backupWorkerReader,
	workplaces backupWorkplaceReader,
	schedules backupScheduleReader,
	settings backupSettingsReader,
	store *storage.LocalStorage,
	logger *zap.Logger,
) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{
		workers:    workers,
		workplaces: workplaces,
		schedules:  schedules,
		settings:   settings,
		store:      store,
		logger:     logger,
	}
}

// Create dumps all tables into a timestamped zip and returns its file info.
func (s *BackupService) Create(ctx context.Context) (*storage.FileInfo, error) {
	archive, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	entries := map[string]interface{}{
		"workers.json":    archive.Workers,
		"workplaces.json": archive.Workplaces,
		"schedules.json":  archive.Schedules,
		"settings.json":   archive.Settings,
	}
	for name, payload := range entries {
		writer, err := zw.Create(name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create backup entry")
		}
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(payload); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode backup entry")
		}
	}
	if err := zw.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "finalize backup archive")
	}

	filename := fmt.Sprintf("backup_%s.zip", time.Now().UTC().Format("20060102T150405"))
	if _, err := s.store.Save(filename, buf.Bytes()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store backup archive")
	}

	s.logger.Info("backup created",
		zap.String("file", filename),
		zap.Int("workers", len(archive.Workers)),
		zap.Int("workplaces", len(archive.Workplaces)),
		zap.Int("schedules", len(archive.Schedules)))
	return &storage.FileInfo{Name: filename, SizeBytes: int64(buf.Len()), ModifiedAt: time.Now().UTC()}, nil
}

// List returns stored backup archives, newest first.
func (s *BackupService) List() ([]storage.FileInfo, error) {
	files, err := s.store.List()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list backups")
	}
	return files, nil
}

// Open returns a read handle on a stored backup archive.
func (s *BackupService) Open(filename string) (*os.File, error) {
	file, err := s.store.Open(filename)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "backup not found")
	}
	return file, nil
}

// ReadArchive parses a stored backup zip back into typed records. Restore
// tooling consumes this; the HTTP surface never writes from it.
func (s *BackupService) ReadArchive(filename string) (*BackupArchive, error) {
	zr, err := zip.OpenReader(s.store.Path(filename))
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "backup not found")
	}
	defer zr.Close()

	archive := &BackupArchive{}
	targets := map[string]interface{}{
		"workers.json":    &archive.Workers,
		"workplaces.json": &archive.Workplaces,
		"schedules.json":  &archive.Schedules,
		"settings.json":   &archive.Settings,
	}
	for _, entry := range zr.File {
		target, ok := targets[entry.Name]
		if !ok {
			continue
		}
		reader, err := entry.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "open backup entry")
		}
		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read backup entry")
		}
		if err := json.Unmarshal(data, target); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode backup entry")
		}
	}
	return archive, nil
}

func (s *BackupService) collect(ctx context.Context) (*BackupArchive, error) {
	workers, err := s.workers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "dump workers")
	}
	workplaces, err := s.workplaces.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "dump workplaces")
	}
	schedules, err := s.schedules.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "dump schedules")
	}
	settings, err := s.settings.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "dump settings")
	}
	return &BackupArchive{Workers: workers, Workplaces: workplaces, Schedules: schedules, Settings: settings}, nil
}
