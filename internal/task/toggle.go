package task

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ayumu-dev/dekita/internal/model"
	"github.com/ayumu-dev/dekita/internal/store"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrNotAssigned  = errors.New("task is not assigned to this child")
)

// Toggler applies one child's completion state to a task and keeps the
// per-day achievement counter in step.
type Toggler struct {
	tasks        *store.TaskStore
	achievements *store.AchievementStore
	logger       *slog.Logger
}

func NewToggler(tasks *store.TaskStore, achievements *store.AchievementStore, logger *slog.Logger) *Toggler {
	return &Toggler{tasks: tasks, achievements: achievements, logger: logger}
}

// SetStatus writes exactly one child's status entry on a task, then nudges
// the achievement counter on completion transitions: false→true increments,
// true→false decrements. CompletedAt is stamped with now on completion and
// cleared on un-completion. The status write and the counter write are two
// independent calls with no surrounding transaction; if the second fails the
// task state stands and the error is reported, with re-toggling as the
// recovery path.
func (tg *Toggler) SetStatus(taskID, childID int64, isCompleted bool, comment string, now time.Time) (*model.Task, error) {
	t, err := tg.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}

	prev, ok := t.ChildrenStatus[childID]
	if !ok {
		return nil, ErrNotAssigned
	}

	var completedAt *time.Time
	if isCompleted {
		at := now.UTC()
		completedAt = &at
	}
	if err := tg.tasks.UpsertStatus(taskID, childID, isCompleted, comment, completedAt); err != nil {
		return nil, err
	}

	switch {
	case isCompleted && !prev.IsCompleted:
		if err := tg.achievements.Increment(childID, t.Date); err != nil {
			tg.logger.Error("increment achievement", "task_id", taskID, "child_id", childID, "date", t.Date, "error", err)
			return nil, err
		}
	case !isCompleted && prev.IsCompleted:
		if err := tg.achievements.Decrement(childID, t.Date); err != nil {
			tg.logger.Error("decrement achievement", "task_id", taskID, "child_id", childID, "date", t.Date, "error", err)
			return nil, err
		}
	}

	return tg.tasks.GetByID(taskID)
}
