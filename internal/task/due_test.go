package task

import (
	"testing"
	"time"

	"github.com/ayumu-dev/dekita/internal/model"
)

// 2026-08-24 is a Monday; the week runs through Sunday 2026-08-30.
func weekday(t *testing.T, day time.Weekday) time.Time {
	t.Helper()
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	offset := (int(day) - int(time.Monday) + 7) % 7
	return monday.AddDate(0, 0, offset)
}

func TestDateString(t *testing.T) {
	d := time.Date(2026, 8, 5, 15, 30, 0, 0, time.UTC)
	if got := DateString(d); got != "2026-08-05" {
		t.Errorf("DateString = %q, want %q", got, "2026-08-05")
	}
}

func TestDueOnEveryday(t *testing.T) {
	tmpl := model.TaskTemplate{RepeatType: model.RepeatEveryday}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if !DueOn(tmpl, weekday(t, d)) {
			t.Errorf("everyday template should be due on %v", d)
		}
	}
}

func TestDueOnWeekday(t *testing.T) {
	tmpl := model.TaskTemplate{RepeatType: model.RepeatWeekday}
	tests := []struct {
		day time.Weekday
		due bool
	}{
		{time.Monday, true},
		{time.Tuesday, true},
		{time.Wednesday, true},
		{time.Thursday, true},
		{time.Friday, true},
		{time.Saturday, false},
		{time.Sunday, false},
	}
	for _, tt := range tests {
		if got := DueOn(tmpl, weekday(t, tt.day)); got != tt.due {
			t.Errorf("weekday template on %v: due = %v, want %v", tt.day, got, tt.due)
		}
	}
}

func TestDueOnCustom(t *testing.T) {
	// 0 = Sunday, 2 = Tuesday, 4 = Thursday
	tmpl := model.TaskTemplate{RepeatType: model.RepeatCustom, RepeatDays: []int{0, 2, 4}}
	tests := []struct {
		day time.Weekday
		due bool
	}{
		{time.Sunday, true},
		{time.Monday, false},
		{time.Tuesday, true},
		{time.Wednesday, false},
		{time.Thursday, true},
		{time.Friday, false},
		{time.Saturday, false},
	}
	for _, tt := range tests {
		if got := DueOn(tmpl, weekday(t, tt.day)); got != tt.due {
			t.Errorf("custom template on %v: due = %v, want %v", tt.day, got, tt.due)
		}
	}
}

func TestDueOnCustomEmptyDays(t *testing.T) {
	tmpl := model.TaskTemplate{RepeatType: model.RepeatCustom}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if DueOn(tmpl, weekday(t, d)) {
			t.Errorf("custom template with no days should never be due, but was on %v", d)
		}
	}
}

func TestDueOnNone(t *testing.T) {
	tmpl := model.TaskTemplate{RepeatType: model.RepeatNone}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if DueOn(tmpl, weekday(t, d)) {
			t.Errorf("one-off template should never be due, but was on %v", d)
		}
	}
}
