package task

import "github.com/ayumu-dev/dekita/internal/model"

// Progress returns how many assigned children have completed the task and
// how many are assigned in total.
func Progress(t model.Task) (completed, total int) {
	for _, status := range t.ChildrenStatus {
		total++
		if status.IsCompleted {
			completed++
		}
	}
	return completed, total
}

// FullyDone reports whether every assigned child completed the task. A task
// with no assigned children is never fully done.
func FullyDone(t model.Task) bool {
	completed, total := Progress(t)
	return total > 0 && completed == total
}

// StatusFor returns childID's entry on the task, or an incomplete zero
// status when the task is not assigned to that child.
func StatusFor(t model.Task, childID int64) model.ChildStatus {
	if status, ok := t.ChildrenStatus[childID]; ok {
		return status
	}
	return model.ChildStatus{}
}

// AssignedTo reports whether the task carries an entry for childID.
func AssignedTo(t model.Task, childID int64) bool {
	_, ok := t.ChildrenStatus[childID]
	return ok
}

// FilterForChild returns only the tasks assigned to childID. Tasks without
// the child's entry are excluded entirely from that child's lists.
func FilterForChild(tasks []model.Task, childID int64) []model.Task {
	var filtered []model.Task
	for _, t := range tasks {
		if AssignedTo(t, childID) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// DaySummary is one calendar cell: how many tasks count for the day and how
// many of them are completed under the viewer's rules.
type DaySummary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// SummarizeDaysParent buckets tasks by date for the parent calendar. A task
// counts as completed only when every assigned child has completed it.
func SummarizeDaysParent(tasks []model.Task) map[string]DaySummary {
	days := make(map[string]DaySummary)
	for _, t := range tasks {
		day := days[t.Date]
		day.Total++
		if FullyDone(t) {
			day.Completed++
		}
		days[t.Date] = day
	}
	return days
}

// SummarizeDaysChild buckets only the tasks assigned to childID, counting
// the child's own completion. A day with nothing assigned to the child has
// no map entry, which is how callers tell "nothing assigned" from "assigned
// but incomplete".
func SummarizeDaysChild(tasks []model.Task, childID int64) map[string]DaySummary {
	days := make(map[string]DaySummary)
	for _, t := range tasks {
		if !AssignedTo(t, childID) {
			continue
		}
		day := days[t.Date]
		day.Total++
		if t.ChildrenStatus[childID].IsCompleted {
			day.Completed++
		}
		days[t.Date] = day
	}
	return days
}
