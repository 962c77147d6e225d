package service

import (
	"fmt"
	"math"

	"github.com/rosterd/rosterd-api/internal/models"
	"github.com/rosterd/rosterd-api/internal/timeparse"
)

const hoursEpsilon = 0.01

// ValidateSchedule checks a stored snapshot against the invariants the
// engine guarantees at generation time. Manual edits can break them, so the
// reassignment path re-runs this and reports what it finds:
//
//   - a worker holds at most one slot per day
//   - every assigned slot sits inside the worker's availability
//   - per-worker summary hours equal the sum of assigned slot durations
//   - every assigned worker appears in the summary list
func ValidateSchedule(schedule *models.Schedule, workersByID map[string]models.Worker) []models.ScheduleViolation {
	var violations []models.ScheduleViolation
	if schedule == nil {
		return violations
	}

	accumulated := make(map[string]float64)

	for _, day := range timeparse.Weekdays {
		seen := make(map[string]bool)
		for _, assignment := range schedule.Days[day] {
			if !assignment.Assigned() {
				continue
			}
			id := *assignment.WorkerID

			if seen[id] {
				violations = append(violations, models.ScheduleViolation{
					Type:     models.ViolationDuplicateWorkerDay,
					Day:      day,
					WorkerID: id,
					Message:  fmt.Sprintf("%s holds more than one %s slot", assignment.WorkerName, day),
				})
			}
			seen[id] = true
			accumulated[id] += assignment.DurationHours

			worker, known := workersByID[id]
			if !known {
				violations = append(violations, models.ScheduleViolation{
					Type:     models.ViolationUnknownWorker,
					Day:      day,
					WorkerID: id,
					Message:  fmt.Sprintf("worker %s is not in the pool", id),
				})
				continue
			}

			shift, ok := parseAssignmentWindow(assignment)
			if !ok || !workerAvailable(worker, day, shift) {
				violations = append(violations, models.ScheduleViolation{
					Type:     models.ViolationOutsideAvailability,
					Day:      day,
					WorkerID: id,
					Message:  fmt.Sprintf("%s is not available %s %s - %s", assignment.WorkerName, day, assignment.StartTime, assignment.EndTime),
				})
			}
		}
	}

	for _, summary := range schedule.Workers {
		if math.Abs(summary.WeeklyHours-accumulated[summary.ID]) > hoursEpsilon {
			violations = append(violations, models.ScheduleViolation{
				Type:     models.ViolationHoursMismatch,
				WorkerID: summary.ID,
				Message:  fmt.Sprintf("summary lists %.2f hours for %s but assignments total %.2f", summary.WeeklyHours, summary.Name, accumulated[summary.ID]),
			})
		}
	}

	return violations
}

func parseAssignmentWindow(a models.Assignment) (timeparse.Window, bool) {
	start, ok := timeparse.Parse(a.StartTime)
	if !ok {
		return timeparse.Window{}, false
	}
	end, ok := timeparse.Parse(a.EndTime)
	if !ok {
		return timeparse.Window{}, false
	}
	return timeparse.Window{Start: start, End: end}, true
}
