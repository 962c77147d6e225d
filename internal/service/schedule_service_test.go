package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rosterd/rosterd-api/internal/dto"
	"github.com/rosterd/rosterd-api/internal/models"
	appErrors "github.com/rosterd/rosterd-api/pkg/errors"
)

type mockScheduleWorkers struct {
	pool         []models.Worker
	writtenHours map[string]float64
}

func (m *mockScheduleWorkers) ListByWorkplace(ctx context.Context, workplaceName string) ([]models.Worker, error) {
	var out []models.Worker
	for _, w := range m.pool {
		if w.WorkplaceName == workplaceName {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockScheduleWorkers) ListByIDs(ctx context.Context, ids []string) ([]models.Worker, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []models.Worker
	for _, w := range m.pool {
		if wanted[w.ID] {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockScheduleWorkers) FindByID(ctx context.Context, id string) (*models.Worker, error) {
	for _, w := range m.pool {
		if w.ID == id {
			cp := w
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleWorkers) UpdateWeeklyHours(ctx context.Context, hours map[string]float64) error {
	m.writtenHours = hours
	return nil
}

type mockWorkplaces struct {
	items map[string]*models.Workplace
}

func (m *mockWorkplaces) FindByName(ctx context.Context, name string) (*models.Workplace, error) {
	if wp, ok := m.items[name]; ok {
		cp := *wp
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockScheduleStore struct {
	items   map[string]*models.Schedule
	created []*models.Schedule
	updated []*models.Schedule
}

func (m *mockScheduleStore) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = "generated"
	}
	if schedule.GeneratedAt.IsZero() {
		schedule.GeneratedAt = time.Now().UTC()
	}
	if m.items == nil {
		m.items = make(map[string]*models.Schedule)
	}
	cp := *schedule
	m.items[schedule.ID] = &cp
	m.created = append(m.created, &cp)
	return nil
}

func (m *mockScheduleStore) List(ctx context.Context, workplaceName string, page, pageSize int) ([]models.Schedule, int, error) {
	var out []models.Schedule
	for _, s := range m.items {
		if s.WorkplaceName == workplaceName {
			out = append(out, *s)
		}
	}
	return out, len(out), nil
}

func (m *mockScheduleStore) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleStore) FindLatest(ctx context.Context, workplaceName string) (*models.Schedule, error) {
	var latest *models.Schedule
	for _, s := range m.items {
		if s.WorkplaceName != workplaceName {
			continue
		}
		if latest == nil || s.GeneratedAt.After(latest.GeneratedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	cp := *latest
	return &cp, nil
}

func (m *mockScheduleStore) Update(ctx context.Context, schedule *models.Schedule) error {
	cp := *schedule
	m.items[schedule.ID] = &cp
	m.updated = append(m.updated, &cp)
	return nil
}

func (m *mockScheduleStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type mockCache struct {
	values  map[string][]byte
	gets    int
	sets    int
	deletes []string
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	return appErrors.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	return nil
}

func (m *mockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deletes = append(m.deletes, pattern)
	return nil
}

func fullDayWorker(id, first, last string, workStudy bool) models.Worker {
	return models.Worker{
		ID:            id,
		WorkplaceName: "front-desk",
		FirstName:     first,
		LastName:      last,
		WorkStudy:     workStudy,
		Availability: models.WindowMap{
			"Monday": {{Start: "12:00", End: "18:00"}},
		},
	}
}

func newScheduleServiceForTest(workers *mockScheduleWorkers, workplaces *mockWorkplaces, store *mockScheduleStore, cache *mockCache) *ScheduleService {
	return NewScheduleService(workers, workplaces, store, cache, nil, validator.New(), zap.NewNop(), ScheduleServiceConfig{
		WorkStudyTargetHours: 5.0,
	})
}

func TestScheduleServiceGenerateAssignsSlots(t *testing.T) {
	workers := &mockScheduleWorkers{pool: []models.Worker{
		fullDayWorker("w1_a_1", "Wanda", "Adams", true),
		fullDayWorker("w2_b_1", "Walt", "Burns", false),
	}}
	workplaces := &mockWorkplaces{items: map[string]*models.Workplace{
		"front-desk": {
			Name: "front-desk",
			ShiftTimes: models.ShiftTimes{
				"Monday": {"12:00 PM - 3:00 PM", "3:00 PM - 6:00 PM"},
			},
		},
	}}
	store := &mockScheduleStore{}
	cache := &mockCache{}
	service := newScheduleServiceForTest(workers, workplaces, store, cache)

	resp, err := service.Generate(context.Background(), "front-desk", dto.GenerateScheduleRequest{})
	require.NoError(t, err)
	require.NotNil(t, resp.Schedule)
	assert.Empty(t, resp.Skipped)

	monday := resp.Schedule.Days["Monday"]
	require.Len(t, monday, 2)

	// Work-study priority wins the first slot; the per-day exclusivity rule
	// hands the second slot to the other worker.
	require.NotNil(t, monday[0].WorkerID)
	assert.Equal(t, "w1_a_1", *monday[0].WorkerID)
	assert.Equal(t, "Wanda Adams", monday[0].WorkerName)
	require.NotNil(t, monday[1].WorkerID)
	assert.Equal(t, "w2_b_1", *monday[1].WorkerID)
	assert.InDelta(t, 3.0, monday[0].DurationHours, 0.001)

	assert.InDelta(t, 3.0, workers.writtenHours["w1_a_1"], 0.001)
	assert.InDelta(t, 3.0, workers.writtenHours["w2_b_1"], 0.001)

	require.Len(t, resp.Schedule.Workers, 2)
	assert.InDelta(t, 3.0, resp.Schedule.Workers[0].WeeklyHours, 0.001)
	assert.Contains(t, cache.deletes, "schedules:front-desk:*")
	assert.Contains(t, cache.deletes, "replacements:front-desk:*")
}

func TestScheduleServiceGenerateNoDoubleBookingAcrossWeek(t *testing.T) {
	worker := fullDayWorker("w1_a_1", "Wanda", "Adams", true)
	worker.Availability["Tuesday"] = []models.TimeWindow{{Start: "09:00", End: "18:00"}}
	workers := &mockScheduleWorkers{pool: []models.Worker{worker}}
	workplaces := &mockWorkplaces{items: map[string]*models.Workplace{
		"front-desk": {
			Name: "front-desk",
			ShiftTimes: models.ShiftTimes{
				"Monday":  {"12:00 PM - 3:00 PM", "3:00 PM - 6:00 PM"},
				"Tuesday": {"9:00 AM - 11:00 AM"},
			},
		},
	}}
	service := newScheduleServiceForTest(workers, workplaces, &mockScheduleStore{}, &mockCache{})

	resp, err := service.Generate(context.Background(), "front-desk", dto.GenerateScheduleRequest{})
	require.NoError(t, err)

	monday := resp.Schedule.Days["Monday"]
	require.Len(t, monday, 2)
	assert.True(t, monday[0].Assigned())
	assert.False(t, monday[1].Assigned(), "one slot per worker per day")
	assert.Equal(t, models.UnassignedWorkerName, monday[1].WorkerName)

	tuesday := resp.Schedule.Days["Tuesday"]
	require.Len(t, tuesday, 1)
	assert.True(t, tuesday[0].Assigned(), "a new day resets slot exclusivity")

	assert.InDelta(t, 5.0, workers.writtenHours["w1_a_1"], 0.001)
}

func TestScheduleServiceGenerateResetsHoursForUnassignedWorkers(t *testing.T) {
	benched := fullDayWorker("w2_b_1", "Walt", "Burns", false)
	benched.WeeklyHours = 9
	workers := &mockScheduleWorkers{pool: []models.Worker{
		fullDayWorker("w1_a_1", "Wanda", "Adams", true),
		benched,
	}}
	workplaces := &mockWorkplaces{items: map[string]*models.Workplace{
		"front-desk": {
			Name: "front-desk",
			ShiftTimes: models.ShiftTimes{
				"Monday": {"12:00 PM - 3:00 PM"},
			},
		},
	}}
	service := newScheduleServiceForTest(workers, workplaces, &mockScheduleStore{}, &mockCache{})

	resp, err := service.Generate(context.Background(), "front-desk", dto.GenerateScheduleRequest{})
	require.NoError(t, err)

	monday := resp.Schedule.Days["Monday"]
	require.Len(t, monday, 1)
	require.NotNil(t, monday[0].WorkerID)
	assert.Equal(t, "w1_a_1", *monday[0].WorkerID)

	// A run covers the whole pool: workers left without a slot are written
	// back at zero rather than keeping totals from an earlier run.
	stored, ok := workers.writtenHours["w2_b_1"]
	require.True(t, ok, "unassigned worker missing from weekly-hours write-back")
	assert.Zero(t, stored)
	assert.InDelta(t, 3.0, workers.writtenHours["w1_a_1"], 0.001)

	require.Len(t, resp.Schedule.Workers, 2)
	assert.Zero(t, resp.Schedule.Workers[1].WeeklyHours)
}

func TestScheduleServiceGenerateSkipsMalformedEntries(t *testing.T) {
	workers := &mockScheduleWorkers{pool: []models.Worker{fullDayWorker("w1_a_1", "Wanda", "Adams", false)}}
	workplaces := &mockWorkplaces{items: map[string]*models.Workplace{
		"front-desk": {
			Name: "front-desk",
			ShiftTimes: models.ShiftTimes{
				"Monday": {"nonsense", "12:00 PM - 3:00 PM", "25:00 - 26:00"},
			},
		},
	}}
	service := newScheduleServiceForTest(workers, workplaces, &mockScheduleStore{}, &mockCache{})

	resp, err := service.Generate(context.Background(), "front-desk", dto.GenerateScheduleRequest{})
	require.NoError(t, err)

	require.Len(t, resp.Schedule.Days["Monday"], 1, "skipped entries leave no slot behind")
	require.Len(t, resp.Skipped, 2)
	assert.Equal(t, models.SkippedSlot{Day: "Monday", Entry: "nonsense"}, resp.Skipped[0])
	assert.Equal(t, models.SkippedSlot{Day: "Monday", Entry: "25:00 - 26:00"}, resp.Skipped[1])
}

func TestScheduleServiceGenerateUnknownWorkerID(t *testing.T) {
	workers := &mockScheduleWorkers{pool: []models.Worker{fullDayWorker("w1_a_1", "Wanda", "Adams", false)}}
	workplaces := &mockWorkplaces{items: map[string]*models.Workplace{
		"front-desk": {Name: "front-desk", ShiftTimes: models.ShiftTimes{}},
	}}
	service := newScheduleServiceForTest(workers, workplaces, &mockScheduleStore{}, &mockCache{})

	_, err := service.Generate(context.Background(), "front-desk", dto.GenerateScheduleRequest{WorkerIDs: []string{"ghost_1"}})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleServiceGenerateMissingWorkplace(t *testing.T) {
	service := newScheduleServiceForTest(&mockScheduleWorkers{}, &mockWorkplaces{}, &mockScheduleStore{}, &mockCache{})

	_, err := service.Generate(context.Background(), "nowhere", dto.GenerateScheduleRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestScheduleServiceLatestCachesResult(t *testing.T) {
	store := &mockScheduleStore{items: map[string]*models.Schedule{
		"s1": {ID: "s1", WorkplaceName: "front-desk", GeneratedAt: time.Now()},
	}}
	cache := &mockCache{}
	service := newScheduleServiceForTest(&mockScheduleWorkers{}, &mockWorkplaces{}, store, cache)

	schedule, err := service.Latest(context.Background(), "front-desk")
	require.NoError(t, err)
	assert.Equal(t, "s1", schedule.ID)
	assert.Equal(t, 1, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestScheduleServiceReassignBlockedWithoutForce(t *testing.T) {
	workers := &mockScheduleWorkers{pool: []models.Worker{
		fullDayWorker("w1_a_1", "Wanda", "Adams", true),
		{
			ID:            "w2_b_1",
			WorkplaceName: "front-desk",
			FirstName:     "Walt",
			LastName:      "Burns",
			Availability: models.WindowMap{
				"Tuesday": {{Start: "09:00", End: "18:00"}},
			},
		},
	}}
	id := "w1_a_1"
	store := &mockScheduleStore{items: map[string]*models.Schedule{
		"s1": {
			ID:            "s1",
			WorkplaceName: "front-desk",
			Days: models.DayAssignments{
				"Monday": {{StartTime: "12:00", EndTime: "15:00", WorkerID: &id, WorkerName: "Wanda Adams", DurationHours: 3}},
			},
			Workers: models.WorkerSummaries{{ID: "w1_a_1", Name: "Wanda Adams", WorkStudy: true, WeeklyHours: 3}},
		},
	}}
	service := newScheduleServiceForTest(workers, &mockWorkplaces{}, store, &mockCache{})

	// w2 is only available Tuesdays, so putting them on a Monday slot must
	// surface a violation and leave the snapshot untouched.
	target := "w2_b_1"
	resp, err := service.Reassign(context.Background(), "s1", dto.ReassignRequest{Day: "Monday", Index: 0, WorkerID: &target})
	require.NoError(t, err)
	assert.False(t, resp.Applied)
	require.NotEmpty(t, resp.Violations)
	assert.Equal(t, models.ViolationOutsideAvailability, resp.Violations[0].Type)
	assert.Empty(t, store.updated)

	forced, err := service.Reassign(context.Background(), "s1", dto.ReassignRequest{Day: "Monday", Index: 0, WorkerID: &target, Force: true})
	require.NoError(t, err)
	assert.True(t, forced.Applied)
	require.Len(t, store.updated, 1)
	assert.Equal(t, "Walt Burns", store.updated[0].Days["Monday"][0].WorkerName)
}

func TestScheduleServiceReassignClearSlot(t *testing.T) {
	workers := &mockScheduleWorkers{pool: []models.Worker{fullDayWorker("w1_a_1", "Wanda", "Adams", true)}}
	id := "w1_a_1"
	store := &mockScheduleStore{items: map[string]*models.Schedule{
		"s1": {
			ID:            "s1",
			WorkplaceName: "front-desk",
			Days: models.DayAssignments{
				"Monday": {{StartTime: "12:00", EndTime: "15:00", WorkerID: &id, WorkerName: "Wanda Adams", DurationHours: 3}},
			},
			Workers: models.WorkerSummaries{{ID: "w1_a_1", Name: "Wanda Adams", WorkStudy: true, WeeklyHours: 3}},
		},
	}}
	service := newScheduleServiceForTest(workers, &mockWorkplaces{}, store, &mockCache{})

	resp, err := service.Reassign(context.Background(), "s1", dto.ReassignRequest{Day: "Monday", Index: 0})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Empty(t, resp.Violations)

	slot := resp.Schedule.Days["Monday"][0]
	assert.False(t, slot.Assigned())
	assert.Equal(t, models.UnassignedWorkerName, slot.WorkerName)
	assert.InDelta(t, 0.0, resp.Schedule.Workers[0].WeeklyHours, 0.001)
}

func TestScheduleServiceReassignIndexOutOfRange(t *testing.T) {
	store := &mockScheduleStore{items: map[string]*models.Schedule{
		"s1": {ID: "s1", WorkplaceName: "front-desk", Days: models.DayAssignments{}},
	}}
	service := newScheduleServiceForTest(&mockScheduleWorkers{}, &mockWorkplaces{}, store, &mockCache{})

	_, err := service.Reassign(context.Background(), "s1", dto.ReassignRequest{Day: "Monday", Index: 2})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
