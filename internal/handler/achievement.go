package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ayumu-dev/dekita/internal/auth"
	"github.com/ayumu-dev/dekita/internal/model"
	"github.com/ayumu-dev/dekita/internal/store"
	"github.com/ayumu-dev/dekita/internal/task"
)

type AchievementHandler struct {
	achievements *store.AchievementStore
	users        *store.UserStore
	logger       *slog.Logger
}

func NewAchievementHandler(as *store.AchievementStore, us *store.UserStore, logger *slog.Logger) *AchievementHandler {
	return &AchievementHandler{achievements: as, users: us, logger: logger}
}

// Get returns a child's completed-task count. With start and end query
// parameters (both yyyy-mm-dd, required together) it returns every recorded
// day in the range; otherwise it returns the single day given by date
// (defaulting to today). Children can only view their own counts.
func (h *AchievementHandler) Get(w http.ResponseWriter, r *http.Request) {
	childID, err := strconv.ParseInt(r.PathValue("child_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid child id")
		return
	}

	p, _ := auth.FromContext(r.Context())
	if p.Role == model.RoleChild && childID != p.UserID {
		writeError(w, http.StatusForbidden, "children can only view their own achievements")
		return
	}

	child, err := h.users.GetByID(childID)
	if err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get achievements")
		return
	}
	if child == nil || child.FamilyID != p.FamilyID {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start != "" || end != "" {
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
		achievements, err := h.achievements.ListByUserAndDateRange(childID, start, end)
		if err != nil {
			h.logger.Error("list achievements", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get achievements")
			return
		}
		if achievements == nil {
			achievements = []model.Achievement{}
		}
		writeJSON(w, http.StatusOK, achievements)
		return
	}

	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be yyyy-mm-dd")
		return
	}
	dateStr := task.DateString(date)

	achievement, err := h.achievements.Get(childID, dateStr)
	if err != nil {
		h.logger.Error("get achievement", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get achievements")
		return
	}
	if achievement == nil {
		// No row yet means no completions that day
		achievement = &model.Achievement{UserID: childID, Date: dateStr, CompletedCount: 0}
	}
	writeJSON(w, http.StatusOK, achievement)
}
