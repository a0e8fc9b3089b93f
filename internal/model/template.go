package model

import "time"

const (
	RepeatNone     = "none"
	RepeatEveryday = "everyday"
	RepeatWeekday  = "weekday"
	RepeatCustom   = "custom"
)

// TaskTemplate is a recurrence rule plus a title. RepeatDays holds weekday
// indexes (0 = Sunday .. 6 = Saturday) and is only meaningful when
// RepeatType is "custom".
type TaskTemplate struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	CreatedBy  int64     `json:"created_by"`
	FamilyID   string    `json:"family_id"`
	RepeatType string    `json:"repeat_type"`
	RepeatDays []int     `json:"repeat_days,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidRepeatType reports whether s is one of the four repeat types.
func ValidRepeatType(s string) bool {
	switch s {
	case RepeatNone, RepeatEveryday, RepeatWeekday, RepeatCustom:
		return true
	}
	return false
}
