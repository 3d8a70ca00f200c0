package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/doraapp/dora/internal/chatbot"
	"github.com/doraapp/dora/internal/handler"
	"github.com/doraapp/dora/internal/middleware"
	"github.com/doraapp/dora/internal/store"
	ws "github.com/doraapp/dora/internal/websocket"
)

// Config holds everything the HTTP server needs beyond its stores.
type Config struct {
	JWTSecret []byte
	Images    handler.ImageLister
	Assistant *chatbot.Service
}

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	countryH     *handler.CountryHandler
	postH        *handler.PostHandler
	applicationH *handler.ApplicationHandler
	userH        *handler.UserHandler
	integrationH *handler.IntegrationHandler
	assistantH   *handler.AssistantHandler
	stepsH       *handler.StepsHandler
	rateLimiter  *middleware.RateLimiter
	secret       []byte
	logger       *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	assistant := cfg.Assistant
	if assistant == nil {
		assistant = chatbot.NewService(chatbot.Config{})
	}

	userStore := store.NewUserStore(db)
	countryStore := store.NewCountryStore(db)
	postStore := store.NewPostStore(db)
	appStore := store.NewApplicationStore(db)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, cfg.JWTSecret, logger.With("component", "auth")),
		countryH:     handler.NewCountryHandler(countryStore, cfg.Images, logger.With("component", "country")),
		postH:        handler.NewPostHandler(postStore, hub, logger.With("component", "post")),
		applicationH: handler.NewApplicationHandler(appStore, hub, logger.With("component", "application")),
		userH:        handler.NewUserHandler(userStore, logger.With("component", "user")),
		integrationH: handler.NewIntegrationHandler(),
		assistantH:   handler.NewAssistantHandler(assistant),
		stepsH:       handler.NewStepsHandler(),
		rateLimiter:  middleware.NewRateLimiter(),
		secret:       cfg.JWTSecret,
		logger:       logger,
	}
}

// Hub returns the broadcast hub, exposed for shutdown and tests.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the limiter for periodic cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /auth/register", s.rateLimited(s.authH.Register))
	outerMux.HandleFunc("POST /auth/login", s.rateLimited(s.authH.Login))
	outerMux.HandleFunc("GET /countries", s.countryH.List)
	outerMux.HandleFunc("GET /countries/{code}", s.countryH.Get)
	outerMux.HandleFunc("GET /countries/{code}/images", s.countryH.Images)
	outerMux.HandleFunc("GET /visa-steps", s.stepsH.Get)

	// Protected routes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.secret)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{"status": "ok"}})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Visa applications
	mux.HandleFunc("GET /applications", s.applicationH.List)
	mux.HandleFunc("POST /applications", s.applicationH.Create)
	mux.HandleFunc("GET /applications/{id}", s.applicationH.Get)
	mux.HandleFunc("PUT /applications/{id}", s.applicationH.Update)
	mux.HandleFunc("PATCH /applications/{id}", s.applicationH.Update)
	mux.HandleFunc("PATCH /applications/{id}/step", s.applicationH.UpdateStep)
	mux.HandleFunc("DELETE /applications/{id}", s.applicationH.Delete)

	// Community posts; moderation is admin-only
	mux.HandleFunc("GET /community-posts", s.postH.List)
	mux.HandleFunc("POST /community-posts", s.postH.Create)
	mux.HandleFunc("GET /community-posts/{id}", s.postH.Get)
	mux.Handle("PATCH /community-posts/{id}", middleware.RequireAdmin(http.HandlerFunc(s.postH.Moderate)))
	mux.HandleFunc("POST /community-posts/{id}/like", s.postH.Like)
	mux.HandleFunc("DELETE /community-posts/{id}", s.postH.Delete)

	// Users; the listing is for the admin panel
	mux.Handle("GET /users", middleware.RequireAdmin(http.HandlerFunc(s.userH.List)))
	mux.HandleFunc("GET /users/{id}/location", s.userH.GetLocation)
	mux.HandleFunc("PATCH /users/{id}/location", s.userH.SetLocation)

	// Nearby-services catalog
	mux.HandleFunc("GET /integration/services", s.integrationH.Services)

	// Travel assistant
	mux.HandleFunc("POST /assistant", s.assistantH.Ask)

	// Live events
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))
}
