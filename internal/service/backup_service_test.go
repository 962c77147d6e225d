package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rosterd/rosterd-api/internal/models"
	"github.com/rosterd/rosterd-api/pkg/storage"
)

type mockBackupWorkers struct{ items []models.Worker }

func (m *mockBackupWorkers) ListAll(ctx context.Context) ([]models.Worker, error) {
	return m.items, nil
}

type mockBackupWorkplaces struct{ items []models.Workplace }

func (m *mockBackupWorkplaces) List(ctx context.Context) ([]models.Workplace, error) {
	return m.items, nil
}

type mockBackupSchedules struct{ items []models.Schedule }

func (m *mockBackupSchedules) ListAll(ctx context.Context) ([]models.Schedule, error) {
	return m.items, nil
}

type mockBackupSettings struct{ items []models.Setting }

func (m *mockBackupSettings) List(ctx context.Context) ([]models.Setting, error) {
	return m.items, nil
}

func TestBackupServiceCreateAndReadArchive(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	service := NewBackupService(
		&mockBackupWorkers{items: []models.Worker{{ID: "alice_smith_1", FirstName: "Alice", LastName: "Smith"}}},
		&mockBackupWorkplaces{items: []models.Workplace{{Name: "front-desk"}}},
		&mockBackupSchedules{items: []models.Schedule{{ID: "s1", WorkplaceName: "front-desk"}}},
		&mockBackupSettings{items: []models.Setting{{Key: models.SettingContactEmail, Value: "manager@example.com"}}},
		store,
		zap.NewNop(),
	)

	info, err := service.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, info.Name)
	assert.Greater(t, info.SizeBytes, int64(0))

	files, err := service.List()
	require.NoError(t, err)
	require.Len(t, files, 1)

	archive, err := service.ReadArchive(info.Name)
	require.NoError(t, err)
	require.Len(t, archive.Workers, 1)
	assert.Equal(t, "alice_smith_1", archive.Workers[0].ID)
	require.Len(t, archive.Workplaces, 1)
	require.Len(t, archive.Schedules, 1)
	require.Len(t, archive.Settings, 1)
	assert.Equal(t, "manager@example.com", archive.Settings[0].Value)
}

func TestBackupServiceReadMissingArchive(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	service := NewBackupService(&mockBackupWorkers{}, &mockBackupWorkplaces{}, &mockBackupSchedules{}, &mockBackupSettings{}, store, zap.NewNop())

	_, err = service.ReadArchive("nope.zip")
	require.Error(t, err)
}
