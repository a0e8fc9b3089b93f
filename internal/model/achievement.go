package model

import "time"

// Achievement counts one child's completed tasks on one calendar day.
// Keyed by (UserID, Date); CompletedCount never goes below zero.
type Achievement struct {
	UserID         int64     `json:"user_id"`
	Date           string    `json:"date"`
	CompletedCount int       `json:"completed_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}
