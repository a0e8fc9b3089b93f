package task

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ayumu-dev/dekita/internal/auth"
	"github.com/ayumu-dev/dekita/internal/model"
	"github.com/ayumu-dev/dekita/internal/store"
)

var (
	ErrEmptyTitle     = errors.New("title is required")
	ErrNoTargets      = errors.New("at least one child must be selected")
	ErrNotFamilyChild = errors.New("target is not a child of this family")
)

// Materializer turns templates that are due on a day into task instances,
// and creates manually-assigned tasks.
type Materializer struct {
	templates *store.TemplateStore
	tasks     *store.TaskStore
	users     *store.UserStore
	logger    *slog.Logger
}

func NewMaterializer(templates *store.TemplateStore, tasks *store.TaskStore, users *store.UserStore, logger *slog.Logger) *Materializer {
	return &Materializer{templates: templates, tasks: tasks, users: users, logger: logger}
}

// MaterializeDue ensures exactly one task instance exists for each of the
// caller's templates due on date, seeding every child in the family as
// incomplete. Templates whose instance already exists are skipped, so
// repeated invocations for the same day converge to the same state. Returns
// the number of newly created instances; on a mid-batch store failure the
// instances created so far remain and a re-invocation picks up the rest.
func (m *Materializer) MaterializeDue(p auth.Principal, date time.Time) (int, error) {
	dateStr := DateString(date)

	templates, err := m.templates.ListByCreator(p.UserID, p.FamilyID)
	if err != nil {
		return 0, err
	}

	children, err := m.users.ListChildren(p.FamilyID)
	if err != nil {
		return 0, err
	}
	childIDs := make([]int64, len(children))
	for i, c := range children {
		childIDs[i] = c.ID
	}

	existing, err := m.tasks.ListByFamilyAndDate(p.FamilyID, dateStr)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, tmpl := range templates {
		if !DueOn(tmpl, date) {
			continue
		}
		if hasInstance(existing, tmpl) {
			continue
		}

		tmplID := tmpl.ID
		t, err := m.tasks.Create(tmpl.Title, dateStr, &tmplID, p.UserID, p.FamilyID, childIDs)
		if err != nil {
			return created, fmt.Errorf("materialize %q: %w", tmpl.Title, err)
		}
		existing = append(existing, *t)
		created++
		m.logger.Info("materialized task", "template_id", tmpl.ID, "task_id", t.ID, "date", dateStr)
	}
	return created, nil
}

// hasInstance reports whether a task for the template already exists among
// the day's tasks. A task matches by template reference, or by title so that
// manually added same-titled tasks also suppress a duplicate.
func hasInstance(tasks []model.Task, tmpl model.TaskTemplate) bool {
	for _, t := range tasks {
		if t.TemplateID != nil && *t.TemplateID == tmpl.ID {
			return true
		}
		if t.Title == tmpl.Title {
			return true
		}
	}
	return false
}

// AssignManual creates an ad-hoc task on date targeted at an explicitly
// chosen set of children. Nothing is created when the title is empty, the
// target set is empty, or a target is not a child of the caller's family.
func (m *Materializer) AssignManual(p auth.Principal, title string, date time.Time, childIDs []int64) (*model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(childIDs) == 0 {
		return nil, ErrNoTargets
	}
	if err := m.verifyFamilyChildren(p.FamilyID, childIDs); err != nil {
		return nil, err
	}
	return m.tasks.Create(title, DateString(date), nil, p.UserID, p.FamilyID, childIDs)
}

// AssignTemplate adds a single template's task to a day. An empty child set
// means the whole family, mirroring the materialization fan-out; an explicit
// set targets just those children.
func (m *Materializer) AssignTemplate(p auth.Principal, tmpl model.TaskTemplate, date time.Time, childIDs []int64) (*model.Task, error) {
	if len(childIDs) == 0 {
		children, err := m.users.ListChildren(p.FamilyID)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			childIDs = append(childIDs, c.ID)
		}
	} else if err := m.verifyFamilyChildren(p.FamilyID, childIDs); err != nil {
		return nil, err
	}

	tmplID := tmpl.ID
	return m.tasks.Create(tmpl.Title, DateString(date), &tmplID, p.UserID, p.FamilyID, childIDs)
}

func (m *Materializer) verifyFamilyChildren(familyID string, childIDs []int64) error {
	children, err := m.users.ListChildren(familyID)
	if err != nil {
		return err
	}
	valid := make(map[int64]bool, len(children))
	for _, c := range children {
		valid[c.ID] = true
	}
	for _, id := range childIDs {
		if !valid[id] {
			return fmt.Errorf("child %d: %w", id, ErrNotFamilyChild)
		}
	}
	return nil
}
