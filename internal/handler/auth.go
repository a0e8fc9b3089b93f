package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayumu-dev/dekita/internal/auth"
	"github.com/ayumu-dev/dekita/internal/middleware"
	"github.com/ayumu-dev/dekita/internal/model"
	"github.com/ayumu-dev/dekita/internal/store"
)

const sessionTTL = 30 * 24 * time.Hour

type AuthHandler struct {
	users    *store.UserStore
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(users *store.UserStore, sessions *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, logger: logger}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	FamilyID    string `json:"family_id"`
}

// Register creates an account. A parent claims a family code that must not
// be in use yet; a child joins by entering a code that already exists.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.FamilyID = strings.TrimSpace(req.FamilyID)

	if req.Email == "" || req.Password == "" || req.DisplayName == "" || req.FamilyID == "" {
		writeError(w, http.StatusBadRequest, "email, password, display name, and family code are required")
		return
	}
	if req.Role != model.RoleParent && req.Role != model.RoleChild {
		writeError(w, http.StatusBadRequest, "role must be parent or child")
		return
	}

	existing, err := h.users.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email is already registered")
		return
	}

	inUse, err := h.users.FamilyExists(req.FamilyID)
	if err != nil {
		h.logger.Error("register family check", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}
	if req.Role == model.RoleParent && inUse {
		writeError(w, http.StatusConflict, "family code is already in use")
		return
	}
	if req.Role == model.RoleChild && !inUse {
		writeError(w, http.StatusBadRequest, "family code does not exist")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	user, err := h.users.Create(req.Email, req.DisplayName, req.Role, req.FamilyID, string(hash))
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		h.logger.Error("start session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	hash, err := h.users.GetPasswordHash(req.Email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	// Same response for unknown email and wrong password
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil || user == nil {
		h.logger.Error("login user fetch", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		h.logger.Error("start session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.DeleteByToken(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateMeRequest struct {
	DisplayName string `json:"display_name"`
}

// UpdateMe changes the authenticated user's display name.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "display name is required")
		return
	}

	user, err := h.users.Update(auth.UserID(r.Context()), req.DisplayName)
	if err != nil {
		h.logger.Error("update user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID int64) error {
	sess, err := h.sessions.Create(userID, sessionTTL)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
