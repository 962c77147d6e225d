package service

import (
	"sort"

	"github.com/rosterd/rosterd-api/internal/models"
	"github.com/rosterd/rosterd-api/internal/timeparse"
)

// windowOf converts a canonical stored window to typed form. Stored windows
// are written by the import/entry paths and always parse; a corrupt record
// yields absence rather than a panic.
func windowOf(tw models.TimeWindow) (timeparse.Window, bool) {
	start, ok := timeparse.Parse(tw.Start)
	if !ok {
		return timeparse.Window{}, false
	}
	end, ok := timeparse.Parse(tw.End)
	if !ok {
		return timeparse.Window{}, false
	}
	return timeparse.Window{Start: start, End: end}, true
}

func contains(outer, inner timeparse.Window) bool {
	return outer.Start.Minutes() <= inner.Start.Minutes() && inner.End.Minutes() <= outer.End.Minutes()
}

func overlaps(a, b timeparse.Window) bool {
	return !(a.End.Minutes() <= b.Start.Minutes() || a.Start.Minutes() >= b.End.Minutes())
}

// workerAvailable reports whether a worker can cover the shift window on the
// given day. The shift must sit entirely inside one availability window, and
// that window is disqualified when the shift touches any blocked window for
// the day. Later availability windows are still considered after a
// disqualification.
func workerAvailable(worker models.Worker, day string, shift timeparse.Window) bool {
	for _, avail := range worker.Availability[day] {
		window, ok := windowOf(avail)
		if !ok {
			continue
		}
		if !contains(window, shift) {
			continue
		}
		blocked := false
		for _, unavail := range worker.Unavailable[day] {
			carveOut, ok := windowOf(unavail)
			if !ok {
				continue
			}
			if overlaps(shift, carveOut) {
				blocked = true
				break
			}
		}
		if !blocked {
			return true
		}
	}
	return false
}

// rankWorkers orders candidates for a slot: work-study workers still short of
// the target hours come first, then everyone else. Within each group, fewer
// accumulated hours wins; ties keep pool order.
func rankWorkers(candidates []models.Worker, hours map[string]float64, workStudyTarget float64) []models.Worker {
	ranked := make([]models.Worker, len(candidates))
	copy(ranked, candidates)

	priority := func(w models.Worker) int {
		if w.WorkStudy && hours[w.ID] < workStudyTarget {
			return 0
		}
		return 1
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := priority(ranked[i]), priority(ranked[j])
		if pi != pj {
			return pi < pj
		}
		return hours[ranked[i].ID] < hours[ranked[j].ID]
	})
	return ranked
}
