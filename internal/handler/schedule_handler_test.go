package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/models"
	"github.com/rosterd/rosterd-api/internal/service"
	"github.com/rosterd/rosterd-api/pkg/response"
)

type workerReaderMock struct {
	pool []models.Worker
}

func (m *workerReaderMock) ListByWorkplace(ctx context.Context, workplaceName string) ([]models.Worker, error) {
	return m.pool, nil
}

func (m *workerReaderMock) ListByIDs(ctx context.Context, ids []string) ([]models.Worker, error) {
	return m.pool, nil
}

func (m *workerReaderMock) FindByID(ctx context.Context, id string) (*models.Worker, error) {
	for _, w := range m.pool {
		if w.ID == id {
			cp := w
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *workerReaderMock) UpdateWeeklyHours(ctx context.Context, hours map[string]float64) error {
	return nil
}

type workplaceReaderMock struct {
	items map[string]*models.Workplace
}

func (m *workplaceReaderMock) FindByName(ctx context.Context, name string) (*models.Workplace, error) {
	if wp, ok := m.items[name]; ok {
		return wp, nil
	}
	return nil, sql.ErrNoRows
}

type scheduleStoreMock struct {
	items map[string]*models.Schedule
}

func (m *scheduleStoreMock) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = "s1"
	}
	if schedule.GeneratedAt.IsZero() {
		schedule.GeneratedAt = time.Now().UTC()
	}
	if m.items == nil {
		m.items = make(map[string]*models.Schedule)
	}
	m.items[schedule.ID] = schedule
	return nil
}

func (m *scheduleStoreMock) List(ctx context.Context, workplaceName string, page, pageSize int) ([]models.Schedule, int, error) {
	var out []models.Schedule
	for _, s := range m.items {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *scheduleStoreMock) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *scheduleStoreMock) FindLatest(ctx context.Context, workplaceName string) (*models.Schedule, error) {
	for _, s := range m.items {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *scheduleStoreMock) Update(ctx context.Context, schedule *models.Schedule) error {
	m.items[schedule.ID] = schedule
	return nil
}

func (m *scheduleStoreMock) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func newScheduleRouter(workers *workerReaderMock, workplaces *workplaceReaderMock, store *scheduleStoreMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewScheduleService(workers, workplaces, store, nil, nil, validator.New(), zap.NewNop(), service.ScheduleServiceConfig{})
	handler := NewScheduleHandler(svc)

	router := gin.New()
	router.POST("/workplaces/:name/schedules", handler.Generate)
	router.GET("/workplaces/:name/schedules/latest", handler.Latest)
	router.GET("/schedules/:id", handler.Get)
	router.POST("/schedules/:id/reassign", handler.Reassign)
	return router
}

func TestScheduleHandlerGenerate(t *testing.T) {
	workers := &workerReaderMock{pool: []models.Worker{{
		ID:            "alice_smith_1",
		WorkplaceName: "front-desk",
		FirstName:     "Alice",
		LastName:      "Smith",
		Availability:  models.WindowMap{"Monday": {{Start: "09:00", End: "18:00"}}},
	}}}
	workplaces := &workplaceReaderMock{items: map[string]*models.Workplace{
		"front-desk": {
			Name:       "front-desk",
			ShiftTimes: models.ShiftTimes{"Monday": {"9:00 AM - 12:00 PM", "bad entry"}},
		},
	}}
	router := newScheduleRouter(workers, workplaces, &scheduleStoreMock{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/workplaces/front-desk/schedules", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data dto.GenerateScheduleResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data.Schedule)
	require.Len(t, envelope.Data.Schedule.Days["Monday"], 1)
	assert.Equal(t, "Alice Smith", envelope.Data.Schedule.Days["Monday"][0].WorkerName)
	require.Len(t, envelope.Data.Skipped, 1)
	assert.Equal(t, "bad entry", envelope.Data.Skipped[0].Entry)
}

func TestScheduleHandlerGenerateUnknownWorkplace(t *testing.T) {
	router := newScheduleRouter(&workerReaderMock{}, &workplaceReaderMock{}, &scheduleStoreMock{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/workplaces/nowhere/schedules", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestScheduleHandlerLatestMissing(t *testing.T) {
	router := newScheduleRouter(&workerReaderMock{}, &workplaceReaderMock{}, &scheduleStoreMock{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/workplaces/front-desk/schedules/latest", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleHandlerReassignConflict(t *testing.T) {
	workers := &workerReaderMock{pool: []models.Worker{{
		ID:            "bob_jones_1",
		WorkplaceName: "front-desk",
		FirstName:     "Bob",
		LastName:      "Jones",
		Availability:  models.WindowMap{"Tuesday": {{Start: "09:00", End: "18:00"}}},
	}}}
	id := "alice_smith_1"
	store := &scheduleStoreMock{items: map[string]*models.Schedule{
		"s1": {
			ID:            "s1",
			WorkplaceName: "front-desk",
			Days: models.DayAssignments{
				"Monday": {{StartTime: "09:00", EndTime: "12:00", WorkerID: &id, WorkerName: "Alice Smith", DurationHours: 3}},
			},
		},
	}}
	router := newScheduleRouter(workers, &workplaceReaderMock{}, store)

	target := "bob_jones_1"
	body, _ := json.Marshal(dto.ReassignRequest{Day: "Monday", Index: 0, WorkerID: &target})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/schedules/s1/reassign", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var envelope struct {
		Data dto.ReassignResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Applied)
	assert.NotEmpty(t, envelope.Data.Violations)
}
