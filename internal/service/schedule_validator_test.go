package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/rosterd-api/internal/models"
)

func validatorPool() map[string]models.Worker {
	return map[string]models.Worker{
		"alice_smith_1": {
			ID:        "alice_smith_1",
			FirstName: "Alice",
			LastName:  "Smith",
			Availability: models.WindowMap{
				"Monday": {{Start: "09:00", End: "18:00"}},
			},
		},
		"bob_jones_1": {
			ID:        "bob_jones_1",
			FirstName: "Bob",
			LastName:  "Jones",
			Availability: models.WindowMap{
				"Monday": {{Start: "09:00", End: "12:00"}},
			},
		},
	}
}

func assigned(id, name, start, end string, hours float64) models.Assignment {
	return models.Assignment{
		StartTime:     start,
		EndTime:       end,
		WorkerID:      &id,
		WorkerName:    name,
		DurationHours: hours,
	}
}

func TestValidateScheduleClean(t *testing.T) {
	schedule := &models.Schedule{
		Days: models.DayAssignments{
			"Monday": {assigned("alice_smith_1", "Alice Smith", "09:00", "12:00", 3)},
		},
		Workers: models.WorkerSummaries{
			{ID: "alice_smith_1", Name: "Alice Smith", WeeklyHours: 3},
			{ID: "bob_jones_1", Name: "Bob Jones", WeeklyHours: 0},
		},
	}

	assert.Empty(t, ValidateSchedule(schedule, validatorPool()))
}

func TestValidateScheduleDuplicateWorkerDay(t *testing.T) {
	schedule := &models.Schedule{
		Days: models.DayAssignments{
			"Monday": {
				assigned("alice_smith_1", "Alice Smith", "09:00", "12:00", 3),
				assigned("alice_smith_1", "Alice Smith", "12:00", "15:00", 3),
			},
		},
		Workers: models.WorkerSummaries{
			{ID: "alice_smith_1", Name: "Alice Smith", WeeklyHours: 6},
		},
	}

	violations := ValidateSchedule(schedule, validatorPool())
	require.NotEmpty(t, violations)
	types := make([]string, 0, len(violations))
	for _, v := range violations {
		types = append(types, v.Type)
	}
	assert.Contains(t, types, models.ViolationDuplicateWorkerDay)
}

func TestValidateScheduleOutsideAvailability(t *testing.T) {
	schedule := &models.Schedule{
		Days: models.DayAssignments{
			"Monday": {assigned("bob_jones_1", "Bob Jones", "13:00", "15:00", 2)},
		},
		Workers: models.WorkerSummaries{
			{ID: "bob_jones_1", Name: "Bob Jones", WeeklyHours: 2},
		},
	}

	violations := ValidateSchedule(schedule, validatorPool())
	require.Len(t, violations, 1)
	assert.Equal(t, models.ViolationOutsideAvailability, violations[0].Type)
	assert.Equal(t, "Monday", violations[0].Day)
	assert.Equal(t, "bob_jones_1", violations[0].WorkerID)
}

func TestValidateScheduleHoursMismatch(t *testing.T) {
	schedule := &models.Schedule{
		Days: models.DayAssignments{
			"Monday": {assigned("alice_smith_1", "Alice Smith", "09:00", "12:00", 3)},
		},
		Workers: models.WorkerSummaries{
			{ID: "alice_smith_1", Name: "Alice Smith", WeeklyHours: 5},
		},
	}

	violations := ValidateSchedule(schedule, validatorPool())
	require.Len(t, violations, 1)
	assert.Equal(t, models.ViolationHoursMismatch, violations[0].Type)
}

func TestValidateScheduleUnknownWorker(t *testing.T) {
	schedule := &models.Schedule{
		Days: models.DayAssignments{
			"Monday": {assigned("ghost_1", "Ghost", "09:00", "12:00", 3)},
		},
	}

	violations := ValidateSchedule(schedule, validatorPool())
	require.Len(t, violations, 1)
	assert.Equal(t, models.ViolationUnknownWorker, violations[0].Type)
}

func TestValidateScheduleIgnoresUnassignedSlots(t *testing.T) {
	schedule := &models.Schedule{
		Days: models.DayAssignments{
			"Monday": {{StartTime: "09:00", EndTime: "12:00", WorkerName: models.UnassignedWorkerName, DurationHours: 3}},
		},
	}

	assert.Empty(t, ValidateSchedule(schedule, validatorPool()))
}
