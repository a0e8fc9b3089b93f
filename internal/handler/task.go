package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayumu-dev/dekita/internal/auth"
	"github.com/ayumu-dev/dekita/internal/model"
	"github.com/ayumu-dev/dekita/internal/store"
	"github.com/ayumu-dev/dekita/internal/task"
	"github.com/ayumu-dev/dekita/internal/websocket"
)

type TaskHandler struct {
	tasks        *store.TaskStore
	templates    *store.TemplateStore
	materializer *task.Materializer
	toggler      *task.Toggler
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, tmpls *store.TemplateStore, m *task.Materializer, tg *task.Toggler, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, templates: tmpls, materializer: m, toggler: tg, hub: hub, logger: logger}
}

func (h *TaskHandler) broadcast(familyID string, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(familyID, msg)
	}
}

// taskView is a task plus its aggregate progress, as shown on the parent
// dashboard.
type taskView struct {
	model.Task
	Completed int  `json:"completed"`
	Total     int  `json:"total"`
	FullyDone bool `json:"fully_done"`
}

func newTaskView(t model.Task) taskView {
	completed, total := task.Progress(t)
	return taskView{Task: t, Completed: completed, Total: total, FullyDone: task.FullyDone(t)}
}

// List returns one day's tasks. Parents see every family task with progress
// counts; children see only the tasks assigned to them.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be yyyy-mm-dd")
		return
	}

	p, _ := auth.FromContext(r.Context())
	tasks, err := h.tasks.ListByFamilyAndDate(p.FamilyID, task.DateString(date))
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	if p.Role == model.RoleChild {
		tasks = task.FilterForChild(tasks, p.UserID)
		if tasks == nil {
			tasks = []model.Task{}
		}
		writeJSON(w, http.StatusOK, tasks)
		return
	}

	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

type createTaskRequest struct {
	Title      string  `json:"title"`
	Date       string  `json:"date"`
	TemplateID *int64  `json:"template_id"`
	ChildIDs   []int64 `json:"child_ids"`
}

// Create adds a task to a day, either ad hoc by title or from a template.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be yyyy-mm-dd")
		return
	}

	p, _ := auth.FromContext(r.Context())

	var created *model.Task
	if req.TemplateID != nil {
		tmpl, err := h.templates.GetByID(*req.TemplateID)
		if err != nil {
			h.logger.Error("get template", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get template")
			return
		}
		if tmpl == nil || tmpl.FamilyID != p.FamilyID {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		created, err = h.materializer.AssignTemplate(p, *tmpl, date, req.ChildIDs)
		if err != nil {
			h.writeAssignError(w, err)
			return
		}
	} else {
		created, err = h.materializer.AssignManual(p, req.Title, date, req.ChildIDs)
		if err != nil {
			h.writeAssignError(w, err)
			return
		}
	}

	h.broadcast(p.FamilyID, websocket.NewMessage("task", "created", created.ID, map[string]any{"date": created.Date}))

	writeJSON(w, http.StatusCreated, newTaskView(*created))
}

func (h *TaskHandler) writeAssignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrEmptyTitle), errors.Is(err, task.ErrNoTargets), errors.Is(err, task.ErrNotFamilyChild):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
	}
}

// Materialize creates today's (or the given day's) task instances from the
// caller's recurring templates. Safe to call repeatedly.
func (h *TaskHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be yyyy-mm-dd")
		return
	}

	p, _ := auth.FromContext(r.Context())
	created, err := h.materializer.MaterializeDue(p, date)
	if err != nil {
		h.logger.Error("materialize tasks", "date", task.DateString(date), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to materialize tasks")
		return
	}

	if created > 0 {
		h.broadcast(p.FamilyID, websocket.NewMessage("task", "materialized", 0, map[string]any{
			"date":    task.DateString(date),
			"created": created,
		}))
	}

	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}

type updateTaskRequest struct {
	Title string `json:"title"`
}

// Update renames a task instance. Only the creator may rename.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	p, _ := auth.FromContext(r.Context())
	if existing == nil || existing.FamilyID != p.FamilyID {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if existing.CreatedBy != p.UserID {
		writeError(w, http.StatusForbidden, "only the creator can edit a task")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	updated, err := h.tasks.UpdateTitle(id, req.Title)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.broadcast(p.FamilyID, websocket.NewMessage("task", "updated", id, map[string]any{"date": updated.Date}))

	writeJSON(w, http.StatusOK, newTaskView(*updated))
}

type statusRequest struct {
	IsCompleted bool   `json:"is_completed"`
	Comment     string `json:"comment"`
}

// UpdateStatus sets one child's completion state on a task. A child may only
// write their own status; a parent may write for any child in the family.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	childID, err := strconv.ParseInt(r.PathValue("child_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}

	p, _ := auth.FromContext(r.Context())
	if p.Role == model.RoleChild && childID != p.UserID {
		writeError(w, http.StatusForbidden, "children can only update their own status")
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil || existing.FamilyID != p.FamilyID {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := h.toggler.SetStatus(id, childID, req.IsCompleted, req.Comment, time.Now())
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found")
		return
	case errors.Is(err, task.ErrNotAssigned):
		writeError(w, http.StatusBadRequest, "task is not assigned to this child")
		return
	case err != nil:
		h.logger.Error("update status", "task_id", id, "child_id", childID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	h.broadcast(p.FamilyID, websocket.NewMessage("task", "status_changed", id, map[string]any{
		"child_id":  childID,
		"completed": req.IsCompleted,
		"date":      updated.Date,
	}))

	writeJSON(w, http.StatusOK, newTaskView(*updated))
}

// Calendar returns per-day completion summaries over a date range. Parents
// count a task as done only when every assigned child finished it; children
// see only their own tasks and completions.
func (h *TaskHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if _, err := time.Parse("2006-01-02", start); err != nil {
		writeError(w, http.StatusBadRequest, "start must be yyyy-mm-dd")
		return
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		writeError(w, http.StatusBadRequest, "end must be yyyy-mm-dd")
		return
	}
	if start > end {
		writeError(w, http.StatusBadRequest, "start must not be after end")
		return
	}

	p, _ := auth.FromContext(r.Context())
	tasks, err := h.tasks.ListByFamilyAndDateRange(p.FamilyID, start, end)
	if err != nil {
		h.logger.Error("list tasks for calendar", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load calendar")
		return
	}

	var days map[string]task.DaySummary
	if p.Role == model.RoleChild {
		days = task.SummarizeDaysChild(tasks, p.UserID)
	} else {
		days = task.SummarizeDaysParent(tasks)
	}

	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}
