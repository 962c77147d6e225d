package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rosterd/rosterd-api/internal/models"
)

type mockSettingsRepo struct {
	items map[string]*models.Setting
}

func (m *mockSettingsRepo) List(ctx context.Context) ([]models.Setting, error) {
	var out []models.Setting
	for _, s := range m.items {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSettingsRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	if s, ok := m.items[key]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, setting *models.Setting) error {
	if m.items == nil {
		m.items = make(map[string]*models.Setting)
	}
	cp := *setting
	m.items[setting.Key] = &cp
	return nil
}

func TestSettingsServiceSetContactEmail(t *testing.T) {
	repo := &mockSettingsRepo{}
	service := NewSettingsService(repo, validator.New(), zap.NewNop())

	setting, err := service.Set(context.Background(), models.SettingContactEmail, "manager@example.com")
	require.NoError(t, err)
	assert.Equal(t, "manager@example.com", setting.Value)

	_, err = service.Set(context.Background(), models.SettingContactEmail, "not-an-email")
	require.Error(t, err)
}

func TestSettingsServiceSetRequiresKey(t *testing.T) {
	service := NewSettingsService(&mockSettingsRepo{}, validator.New(), zap.NewNop())
	_, err := service.Set(context.Background(), "  ", "value")
	require.Error(t, err)
}

func TestSettingsServiceGetMissing(t *testing.T) {
	service := NewSettingsService(&mockSettingsRepo{}, validator.New(), zap.NewNop())
	_, err := service.Get(context.Background(), "unknown")
	require.Error(t, err)
}
