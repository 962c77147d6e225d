// Package timeparse is the single boundary where free-text time and day
// expressions become typed values. Worker-facing inputs arrive in many
// shapes ("2pm", "2:00 PM", "14:00", "na"); everything past this package
// only ever sees canonical values.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time. Hour is in [0,23], Minute in [0,59].
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Window is a start/end pair. End may precede Start in minute terms for
// overnight windows.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Weekdays lists day names in engine processing order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var dayCodes = map[byte]string{
	'U': "Sunday",
	'M': "Monday",
	'T': "Tuesday",
	'W': "Wednesday",
	'R': "Thursday",
	'F': "Friday",
	'S': "Saturday",
}

var (
	clockPattern       = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(?:([ap])\.?m\.?)?$`)
	unavailablePattern = regexp.MustCompile(`^([UMTWRFSumtwrfs]+)\s+(.+)$`)
)

// Parse converts a time expression to a TimeOfDay. The second return is
// false for the "na" marker, empty input, and anything unrecognized;
// absence is a domain state here, not an error.
func Parse(text string) (TimeOfDay, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.EqualFold(trimmed, "na") {
		return TimeOfDay{}, false
	}

	match := clockPattern.FindStringSubmatch(strings.ToLower(trimmed))
	if match == nil {
		return TimeOfDay{}, false
	}

	hour, err := strconv.Atoi(match[1])
	if err != nil {
		return TimeOfDay{}, false
	}
	minute := 0
	if match[2] != "" {
		minute, err = strconv.Atoi(match[2])
		if err != nil {
			return TimeOfDay{}, false
		}
	}
	if minute > 59 {
		return TimeOfDay{}, false
	}

	switch match[3] {
	case "a":
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, false
		}
		if hour == 12 {
			hour = 0
		}
	case "p":
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return TimeOfDay{}, false
		}
	}

	return TimeOfDay{Hour: hour, Minute: minute}, true
}

// ParseRange splits "start - end" on the literal " - " separator and parses
// both halves. Anything else yields absence.
func ParseRange(text string) (Window, bool) {
	parts := strings.Split(text, " - ")
	if len(parts) != 2 {
		return Window{}, false
	}
	start, ok := Parse(parts[0])
	if !ok {
		return Window{}, false
	}
	end, ok := Parse(parts[1])
	if !ok {
		return Window{}, false
	}
	return Window{Start: start, End: end}, true
}

// FromMinutes builds a TimeOfDay from a minutes-since-midnight offset.
func FromMinutes(minutes int) TimeOfDay {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return TimeOfDay{Hour: minutes / 60, Minute: minutes % 60}
}

// Minutes returns the offset since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// String renders the canonical 24-hour HH:MM form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Format12Hour renders "H:MM AM|PM"; hours 0 and 12 both display as 12.
func (t TimeOfDay) Format12Hour() string {
	period := "AM"
	if t.Hour >= 12 {
		period = "PM"
	}
	hour := t.Hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, period)
}

// DurationHours computes the span between start and end in decimal hours.
// An end earlier than the start is treated as crossing midnight, so the
// result is never negative.
func DurationHours(start, end TimeOfDay) float64 {
	startMins := start.Minutes()
	endMins := end.Minutes()
	if endMins < startMins {
		endMins += 24 * 60
	}
	return float64(endMins-startMins) / 60
}

// NormalizeDay maps a day expression (full name in any case, or a single
// U/M/T/W/R/F/S code) to its canonical weekday name.
func NormalizeDay(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 1 {
		return DayFromCode(trimmed[0])
	}
	for _, day := range Weekdays {
		if strings.EqualFold(day, trimmed) {
			return day, true
		}
	}
	return "", false
}

// DayFromCode resolves the single-letter day codes used on availability
// forms (R is Thursday, U is Sunday).
func DayFromCode(code byte) (string, bool) {
	if code >= 'a' && code <= 'z' {
		code -= 'a' - 'A'
	}
	day, ok := dayCodes[code]
	return day, ok
}

// ParseUnavailable interprets expressions like "MWF 1pm - 2pm" into a map
// of weekday name to blocked windows. Unrecognized input yields an empty
// map, matching the degrade-to-absence policy of Parse.
func ParseUnavailable(raw string) map[string][]Window {
	result := make(map[string][]Window)
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "na") {
		return result
	}

	match := unavailablePattern.FindStringSubmatch(trimmed)
	if match == nil {
		return result
	}
	window, ok := ParseRange(match[2])
	if !ok {
		return result
	}
	for i := 0; i < len(match[1]); i++ {
		day, ok := DayFromCode(match[1][i])
		if !ok {
			continue
		}
		result[day] = append(result[day], window)
	}
	return result
}
