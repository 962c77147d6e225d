package timeparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormats(t *testing.T) {
	cases := map[string]TimeOfDay{
		"2pm":       {Hour: 14},
		"2:00pm":    {Hour: 14},
		"2:00 PM":   {Hour: 14},
		"2:30 p.m":  {Hour: 14, Minute: 30},
		"2:30 p.m.": {Hour: 14, Minute: 30},
		"14:00":     {Hour: 14},
		"9":         {Hour: 9},
		"12am":      {Hour: 0},
		"12pm":      {Hour: 12},
		"12:15 AM":  {Hour: 0, Minute: 15},
		"00:00":     {},
		"23:59":     {Hour: 23, Minute: 59},
	}
	for input, expected := range cases {
		got, ok := Parse(input)
		require.True(t, ok, "expected %q to parse", input)
		assert.Equal(t, expected, got, "input %q", input)
	}
}

func TestParseAbsence(t *testing.T) {
	for _, input := range []string{"", "na", "NA", "Na", "noon", "25:00", "13pm", "0pm", "9:75", "whenever"} {
		_, ok := Parse(input)
		assert.False(t, ok, "expected %q to be absent", input)
	}
}

func TestParseRange(t *testing.T) {
	window, ok := ParseRange("12:00 PM - 3:00 PM")
	require.True(t, ok)
	assert.Equal(t, "12:00", window.Start.String())
	assert.Equal(t, "15:00", window.End.String())

	_, ok = ParseRange("12:00 PM")
	assert.False(t, ok)
	_, ok = ParseRange("na - 3:00 PM")
	assert.False(t, ok)
	_, ok = ParseRange("9am-5pm")
	assert.False(t, ok, "separator requires surrounding spaces")
}

func TestRoundTrip(t *testing.T) {
	parsed, ok := Parse("2:00 PM")
	require.True(t, ok)
	assert.Equal(t, "2:00 PM", parsed.Format12Hour())

	midnight, ok := Parse("00:30")
	require.True(t, ok)
	assert.Equal(t, "12:30 AM", midnight.Format12Hour())

	noon, ok := Parse("12:00")
	require.True(t, ok)
	assert.Equal(t, "12:00 PM", noon.Format12Hour())
}

func TestMinutesConversion(t *testing.T) {
	tod := TimeOfDay{Hour: 14, Minute: 30}
	assert.Equal(t, 870, tod.Minutes())
	assert.Equal(t, tod, FromMinutes(870))
	assert.Equal(t, TimeOfDay{Hour: 0, Minute: 30}, FromMinutes(1470))
}

func TestDurationHours(t *testing.T) {
	nine, _ := Parse("09:00")
	five, _ := Parse("17:00")
	assert.Equal(t, 8.0, DurationHours(nine, five))

	ten, _ := Parse("22:00")
	two, _ := Parse("02:00")
	assert.Equal(t, 4.0, DurationHours(ten, two), "overnight shifts cross midnight")

	assert.Equal(t, 0.0, DurationHours(nine, nine))
}

func TestNormalizeDay(t *testing.T) {
	day, ok := NormalizeDay("monday")
	require.True(t, ok)
	assert.Equal(t, "Monday", day)

	day, ok = NormalizeDay("R")
	require.True(t, ok)
	assert.Equal(t, "Thursday", day)

	day, ok = NormalizeDay("u")
	require.True(t, ok)
	assert.Equal(t, "Sunday", day)

	_, ok = NormalizeDay("Funday")
	assert.False(t, ok)
}

func TestParseUnavailable(t *testing.T) {
	result := ParseUnavailable("MWF 1pm - 2pm")
	require.Len(t, result, 3)
	for _, day := range []string{"Monday", "Wednesday", "Friday"} {
		require.Len(t, result[day], 1)
		assert.Equal(t, "13:00", result[day][0].Start.String())
		assert.Equal(t, "14:00", result[day][0].End.String())
	}

	assert.Empty(t, ParseUnavailable("na"))
	assert.Empty(t, ParseUnavailable(""))
	assert.Empty(t, ParseUnavailable("MWF"))
	assert.Empty(t, ParseUnavailable("MWF sometime"))
}
