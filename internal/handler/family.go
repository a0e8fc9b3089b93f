package handler

import (
	"log/slog"
	"net/http"

	"github.com/ayumu-dev/dekita/internal/auth"
	"github.com/ayumu-dev/dekita/internal/model"
	"github.com/ayumu-dev/dekita/internal/store"
)

type FamilyHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewFamilyHandler(us *store.UserStore, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{users: us, logger: logger}
}

// Children lists the child accounts in the caller's family, used to pick
// assignment targets and to render per-child progress.
func (h *FamilyHandler) Children(w http.ResponseWriter, r *http.Request) {
	children, err := h.users.ListChildren(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list children", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list children")
		return
	}
	if children == nil {
		children = []model.User{}
	}
	writeJSON(w, http.StatusOK, children)
}
