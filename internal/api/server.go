// Package api exposes the tracker's HTTP surface: character and user reads,
// owner-scoped character CRUD, progression queries and the manual update
// trigger.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"maple-tracker/internal/auth"
	"maple-tracker/internal/progression"
	"maple-tracker/internal/store"
)

// Store is everything the API layer needs from the Character Store.
type Store interface {
	ListCharacters(ctx context.Context) ([]store.Character, error)
	ListCharactersByOwner(ctx context.Context, discordUserID string) ([]store.Character, error)
	GetCharacter(ctx context.Context, id string) (*store.Character, error)
	CreateCharacter(ctx context.Context, c *store.Character) (*store.Character, error)
	UpdateCharacter(ctx context.Context, id, name, job, world string, level int) (*store.Character, error)
	DeleteCharacter(ctx context.Context, id string) error

	ListDiscordUsers(ctx context.Context) ([]store.DiscordUser, error)
	GetDiscordUser(ctx context.Context, id string) (*store.DiscordUser, error)

	CreateUser(ctx context.Context, username, email, passwordHash string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// ProgressionQueries is the read side of the progression pipeline.
type ProgressionQueries interface {
	History(ctx context.Context, characterID string, days int) ([]store.ProgressionEntry, error)
	Stats(ctx context.Context, characterID string) (*progression.Stats, error)
}

// UpdateTrigger runs a reconciliation pass on demand.
type UpdateTrigger interface {
	TriggerNow(ctx context.Context) (progression.PassSummary, error)
}

// Server holds the handler dependencies and builds the router.
type Server struct {
	store       Store
	queries     ProgressionQueries
	trigger     UpdateTrigger
	authService *auth.Service
	logger      zerolog.Logger
	startTime   time.Time
}

// NewServer wires the API against its collaborators. authService may be nil,
// which disables the auth routes and leaves the protected routes rejecting
// every request.
func NewServer(st Store, queries ProgressionQueries, trigger UpdateTrigger, authService *auth.Service, logger zerolog.Logger) *Server {
	return &Server{
		store:       st,
		queries:     queries,
		trigger:     trigger,
		authService: authService,
		logger:      logger.With().Str("component", "api").Logger(),
		startTime:   time.Now(),
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
		})

		r.Route("/characters", func(r chi.Router) {
			r.Get("/", s.handleListCharacters)
			r.Get("/{id}", s.handleGetCharacter)
			r.Get("/{id}/progression", s.handleProgressionHistory)
			r.Get("/{id}/progression/stats", s.handleProgressionStats)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleCreateCharacter)
				r.Put("/{id}", s.handleUpdateCharacter)
				r.Delete("/{id}", s.handleDeleteCharacter)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Get("/{id}", s.handleGetUser)
			r.Get("/{id}/characters", s.handleUserCharacters)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/progression/update", s.handleTriggerUpdate)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(started)).
			Msg("Request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
