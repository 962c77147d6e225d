package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/models"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
)

type mockReplacementWorkers struct {
	pool []models.Worker
}

func (m *mockReplacementWorkers) ListByWorkplace(ctx context.Context, workplaceName string) ([]models.Worker, error) {
	return m.pool, nil
}

func newReplacementServiceForTest(pool []models.Worker) *ReplacementService {
	return NewReplacementService(&mockReplacementWorkers{pool: pool}, nil, nil, validator.New(), zap.NewNop(), ReplacementServiceConfig{
		WorkStudyTargetHours: 5.0,
	})
}

func TestReplacementServiceRanksByStoredHours(t *testing.T) {
	avail := models.WindowMap{"Monday": {{Start: "09:00", End: "18:00"}}}
	pool := []models.Worker{
		{ID: "a", FirstName: "Amy", LastName: "Able", WorkStudy: true, WeeklyHours: 2, Availability: avail},
		{ID: "b", FirstName: "Ben", LastName: "Best", WorkStudy: true, WeeklyHours: 6, Availability: avail},
		{ID: "c", FirstName: "Cal", LastName: "Cole", WeeklyHours: 0, Availability: avail},
	}
	service := newReplacementServiceForTest(pool)

	candidates, err := service.FindCandidates(context.Background(), "front-desk", dto.ReplacementQuery{
		Day:   "monday",
		Start: "1pm",
		End:   "3:00 PM",
	})
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "a", candidates[0].ID)
	assert.Equal(t, "c", candidates[1].ID)
	assert.Equal(t, "b", candidates[2].ID)
	assert.InDelta(t, 6.0, candidates[2].WeeklyHours, 0.001)
}

func TestReplacementServiceFiltersUnavailable(t *testing.T) {
	pool := []models.Worker{
		{ID: "a", Availability: models.WindowMap{"Monday": {{Start: "09:00", End: "12:00"}}}},
		{ID: "b", Availability: models.WindowMap{"Monday": {{Start: "09:00", End: "18:00"}}}},
	}
	service := newReplacementServiceForTest(pool)

	candidates, err := service.FindCandidates(context.Background(), "front-desk", dto.ReplacementQuery{
		Day:   "M",
		Start: "13:00",
		End:   "15:00",
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "b", candidates[0].ID)
}

func TestReplacementServiceRejectsBadInput(t *testing.T) {
	service := newReplacementServiceForTest(nil)

	cases := []dto.ReplacementQuery{
		{Day: "Funday", Start: "13:00", End: "15:00"},
		{Day: "Monday", Start: "25:00", End: "15:00"},
		{Day: "Monday", Start: "13:00", End: "na"},
	}
	for _, query := range cases {
		_, err := service.FindCandidates(context.Background(), "front-desk", query)
		require.Error(t, err, "%+v", query)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}
