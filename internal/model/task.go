package model

import "time"

// ChildStatus is one child's completion state on one task. CompletedAt is
// set when the child completes the task and cleared when they un-complete it.
type ChildStatus struct {
	IsCompleted bool       `json:"is_completed"`
	Comment     string     `json:"comment"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Task is one dated occurrence of a household task. TemplateID links back to
// the template that materialized it; nil for ad-hoc tasks. Date is a
// calendar day in yyyy-mm-dd form with no time component.
type Task struct {
	ID             int64                 `json:"id"`
	Title          string                `json:"title"`
	Date           string                `json:"date"`
	TemplateID     *int64                `json:"template_id"`
	CreatedBy      int64                 `json:"created_by"`
	FamilyID       string                `json:"family_id"`
	ChildrenStatus map[int64]ChildStatus `json:"children_status"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}
