package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ayumu-dev/dekita/internal/auth"
	"github.com/ayumu-dev/dekita/internal/model"
	"github.com/ayumu-dev/dekita/internal/store"
	"github.com/ayumu-dev/dekita/internal/websocket"
)

type TemplateHandler struct {
	templates *store.TemplateStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewTemplateHandler(ts *store.TemplateStore, hub *websocket.Hub, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: ts, hub: hub, logger: logger}
}

func (h *TemplateHandler) broadcast(familyID string, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(familyID, msg)
	}
}

type templateRequest struct {
	Title      string `json:"title"`
	RepeatType string `json:"repeat_type"`
	RepeatDays []int  `json:"repeat_days"`
}

// validate checks and normalizes the request in place.
func (req *templateRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if !model.ValidRepeatType(req.RepeatType) {
		return "repeat_type must be one of none, everyday, weekday, custom"
	}
	if req.RepeatType != model.RepeatCustom {
		req.RepeatDays = nil
		return ""
	}
	if len(req.RepeatDays) == 0 {
		return "repeat_days is required for custom templates"
	}
	for _, d := range req.RepeatDays {
		if d < 0 || d > 6 {
			return "repeat_days values must be between 0 (Sunday) and 6 (Saturday)"
		}
	}
	return ""
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p, _ := auth.FromContext(r.Context())
	tmpl, err := h.templates.Create(req.Title, p.UserID, p.FamilyID, req.RepeatType, req.RepeatDays)
	if err != nil {
		h.logger.Error("create template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	h.broadcast(p.FamilyID, websocket.NewMessage("template", "created", tmpl.ID, nil))

	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.ListByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list templates", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []model.TaskTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	tmpl, err := h.templates.GetByID(id)
	if err != nil {
		h.logger.Error("get template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if tmpl == nil || tmpl.FamilyID != auth.FamilyID(r.Context()) {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.templates.GetByID(id)
	if err != nil {
		h.logger.Error("get template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	p, _ := auth.FromContext(r.Context())
	if existing == nil || existing.FamilyID != p.FamilyID {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	if existing.CreatedBy != p.UserID {
		writeError(w, http.StatusForbidden, "only the creator can edit a template")
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tmpl, err := h.templates.Update(id, req.Title, req.RepeatType, req.RepeatDays)
	if err != nil {
		h.logger.Error("update template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update template")
		return
	}

	h.broadcast(p.FamilyID, websocket.NewMessage("template", "updated", tmpl.ID, nil))

	writeJSON(w, http.StatusOK, tmpl)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.templates.GetByID(id)
	if err != nil {
		h.logger.Error("get template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	p, _ := auth.FromContext(r.Context())
	if existing == nil || existing.FamilyID != p.FamilyID {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	if existing.CreatedBy != p.UserID {
		writeError(w, http.StatusForbidden, "only the creator can delete a template")
		return
	}

	// Existing task instances keep their title; template_id is set NULL by
	// the schema so history survives template deletion.
	if err := h.templates.Delete(id); err != nil {
		h.logger.Error("delete template", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}

	h.broadcast(p.FamilyID, websocket.NewMessage("template", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}
