package task

import (
	"time"

	"github.com/ayumu-dev/dekita/internal/model"
)

// DateString formats t as the yyyy-mm-dd calendar-day key used by tasks and
// achievements.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// DueOn reports whether a template is due on the given calendar day.
func DueOn(tmpl model.TaskTemplate, date time.Time) bool {
	switch tmpl.RepeatType {
	case model.RepeatEveryday:
		return true
	case model.RepeatWeekday:
		wd := date.Weekday()
		return wd >= time.Monday && wd <= time.Friday
	case model.RepeatCustom:
		// A custom template with no days selected is never due.
		wd := int(date.Weekday())
		for _, d := range tmpl.RepeatDays {
			if d == wd {
				return true
			}
		}
		return false
	default:
		// One-off ("none") templates are only ever added to a day manually.
		return false
	}
}
