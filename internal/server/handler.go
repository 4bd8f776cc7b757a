// Package server provides the session-authenticated web dashboard and
// the device-facing ingestion API.
package server

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/mkrogh/homewatch/internal/ingest"
	"github.com/mkrogh/homewatch/internal/store"
	"github.com/mkrogh/homewatch/pkg/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// MaxInputLength bounds login form fields.
const MaxInputLength = 100

// SessionMaxAge bounds a login session.
const SessionMaxAge = 3600 // seconds

const sessionName = "homewatch"

// Handler carries the HTTP handlers and their collaborators. It is
// separate from Server so tests can drive the routes without a running
// listener.
type Handler struct {
	logger    *slog.Logger
	sessions  *sessions.CookieStore
	templates *template.Template
	users     *store.UserStore
	readings  *store.ReadingStore
	motion    *store.MotionStore
	door      *store.DoorStore
	ingest    *ingest.Service
	metrics   *metrics.ServerMetrics // Optional metrics
}

// HandlerConfig holds the configuration for the Handler.
type HandlerConfig struct {
	Logger        *slog.Logger
	SessionSecret string
	Users         *store.UserStore
	Readings      *store.ReadingStore
	Motion        *store.MotionStore
	Door          *store.DoorStore
	Ingest        *ingest.Service
	Metrics       *metrics.ServerMetrics
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("handler config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret cannot be empty")
	}

	if cfg.Users == nil {
		return nil, errors.New("user store cannot be nil")
	}

	if cfg.Readings == nil {
		return nil, errors.New("reading store cannot be nil")
	}

	if cfg.Motion == nil {
		return nil, errors.New("motion store cannot be nil")
	}

	if cfg.Door == nil {
		return nil, errors.New("door store cannot be nil")
	}

	if cfg.Ingest == nil {
		return nil, errors.New("ingest service cannot be nil")
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Handler{
		logger:    cfg.Logger,
		sessions:  sessionStore,
		templates: tmpl,
		users:     cfg.Users,
		readings:  cfg.Readings,
		motion:    cfg.Motion,
		door:      cfg.Door,
		ingest:    cfg.Ingest,
		metrics:   cfg.Metrics,
	}, nil
}

// Routes configures the HTTP routes.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	// Device-facing API
	mux.Handle("POST /api/temp_fugt", h.instrument("/api/temp_fugt", h.handleAPITempFugt))
	mux.Handle("POST /api/pir", h.instrument("/api/pir", h.handleAPIPIR))
	mux.Handle("POST /api/solenoid", h.instrument("/api/solenoid", h.handleAPISolenoid))
	mux.Handle("GET /api/solenoid/check", h.instrument("/api/solenoid/check", h.handleAPISolenoidCheck))
	mux.Handle("POST /api/door_log", h.instrument("/api/door_log", h.handleAPIDoorLog))

	// Authentication
	mux.Handle("GET /login", h.instrument("/login", h.handleLoginPage))
	mux.Handle("POST /login", h.instrument("/login", h.handleLogin))
	mux.Handle("GET /logout", h.instrument("/logout", h.handleLogout))

	// Dashboard views (session required)
	mux.Handle("GET /home", h.instrument("/home", h.requireAuth(h.handleHome)))
	mux.Handle("GET /bevægelse", h.instrument("/bevægelse", h.requireAuth(h.handleMotion)))
	mux.Handle("GET /bevaegelse", h.instrument("/bevægelse", h.requireAuth(h.handleMotion)))
	mux.Handle("GET /temperatur_fugt", h.instrument("/temperatur_fugt", h.requireAuth(h.handleEnvironment)))
	mux.Handle("GET /door_control", h.instrument("/door_control", h.requireAuth(h.handleDoorControl)))

	// Index (catch-all, must be last)
	mux.Handle("GET /{$}", h.instrument("/", h.handleIndex))

	return mux
}

// handleHealth serves the health check endpoint.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleIndex redirects to the dashboard or the login page.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(r); ok {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
