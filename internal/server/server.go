package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayumu-dev/dekita/internal/handler"
	"github.com/ayumu-dev/dekita/internal/middleware"
	"github.com/ayumu-dev/dekita/internal/store"
	"github.com/ayumu-dev/dekita/internal/task"
	ws "github.com/ayumu-dev/dekita/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	templateH    *handler.TemplateHandler
	taskH        *handler.TaskHandler
	achievementH *handler.AchievementHandler
	familyH      *handler.FamilyHandler
	sessionStore *store.SessionStore
	userStore    *store.UserStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	templateStore := store.NewTemplateStore(db)
	taskStore := store.NewTaskStore(db)
	achievementStore := store.NewAchievementStore(db)

	materializer := task.NewMaterializer(templateStore, taskStore, userStore, logger.With("component", "materializer"))
	toggler := task.NewToggler(taskStore, achievementStore, logger.With("component", "toggler"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		templateH:    handler.NewTemplateHandler(templateStore, hub, logger.With("component", "template")),
		taskH:        handler.NewTaskHandler(taskStore, templateStore, materializer, toggler, hub, logger.With("component", "task")),
		achievementH: handler.NewAchievementHandler(achievementStore, userStore, logger.With("component", "achievement")),
		familyH:      handler.NewFamilyHandler(userStore, logger.With("component", "family")),
		sessionStore: sessionStore,
		userStore:    userStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

// parentOnly guards mutating routes that only parent accounts may call.
func parentOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireParent(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("PUT /api/me", s.authH.UpdateMe)

	// Template API routes (parent-managed recurring tasks)
	mux.HandleFunc("GET /api/templates", s.templateH.List)
	mux.Handle("POST /api/templates", parentOnly(s.templateH.Create))
	mux.HandleFunc("GET /api/templates/{id}", s.templateH.Get)
	mux.Handle("PUT /api/templates/{id}", parentOnly(s.templateH.Update))
	mux.Handle("DELETE /api/templates/{id}", parentOnly(s.templateH.Delete))

	// Task API routes
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.Handle("POST /api/tasks", parentOnly(s.taskH.Create))
	mux.Handle("POST /api/tasks/materialize", parentOnly(s.taskH.Materialize))
	mux.Handle("PUT /api/tasks/{id}", parentOnly(s.taskH.Update))
	mux.HandleFunc("PUT /api/tasks/{id}/status/{child_id}", s.taskH.UpdateStatus)
	mux.HandleFunc("GET /api/calendar", s.taskH.Calendar)

	// Achievement counters
	mux.HandleFunc("GET /api/achievements/{child_id}", s.achievementH.Get)

	// Family
	mux.HandleFunc("GET /api/family/children", s.familyH.Children)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
