package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkeats/console/internal/api"
	"linkeats/console/internal/auth"
	"linkeats/console/internal/config"
	"linkeats/console/internal/guard"
	"linkeats/console/internal/recovery"
	"linkeats/console/internal/resources"
	"linkeats/console/internal/screens"
	"linkeats/console/internal/session"
)

type Server struct {
	cfg      config.Config
	logger   *slog.Logger
	paths    guard.Paths
	auth     *auth.Provider
	flows    *recovery.Registry
	clients  *resources.Clients
	products *resources.Products
	staff    *resources.Professionals
	floor    *screens.Floor
	tickets  *screens.Tickets
	views    *views
	limiter  *rateLimiterStore
	now      func() time.Time
}

// FlowOptions maps the console configuration onto recovery flow options.
func FlowOptions(cfg config.Config) recovery.Options {
	opts := recovery.DefaultOptions()
	if cfg.RecoveryCodeTTL > 0 {
		opts.CodeTTL = cfg.RecoveryCodeTTL
	}
	if cfg.RecoverySuccessDelay > 0 {
		opts.SuccessDelay = cfg.RecoverySuccessDelay
	}
	opts.VerifyRemotely = cfg.RecoveryVerifyRemote
	return opts
}

// NewRecoveryRegistry builds the flow registry backed by client.
func NewRecoveryRegistry(cfg config.Config, client *api.Client) *recovery.Registry {
	opts := FlowOptions(cfg)
	return recovery.NewRegistry(cfg.RecoveryFlowTTL, cfg.CookieSecure, func() *recovery.Flow {
		return recovery.NewFlow(client, opts)
	})
}

func NewServer(cfg config.Config, client *api.Client, sessions session.Store, flows *recovery.Registry, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	if flows == nil {
		flows = NewRecoveryRegistry(cfg, client)
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		paths:    guard.DefaultPaths(),
		auth:     auth.NewProvider(sessions, client, logger),
		flows:    flows,
		clients:  resources.NewClients(client),
		products: resources.NewProducts(client),
		staff:    resources.NewProfessionals(client),
		floor:    screens.NewFloor(),
		tickets:  screens.NewTickets(),
		views:    v,
		limiter:  newRateLimiterStore(cfg.AuthRateLimitPerMinute),
		now:      time.Now,
	}, nil
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.limiter.stop()
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(guard.Edge(s.paths))
		r.Use(s.auth.Middleware)
		r.Use(guard.Gate(s.paths, http.HandlerFunc(s.handleLoading)))
		r.Use(withCredentials)

		r.Get("/login", s.handleLoginPage)
		r.With(s.rateLimit).Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/forgot-password", s.handleForgotPasswordPage)
		r.With(s.rateLimit).Post("/forgot-password", s.handleForgotPassword)

		r.Get("/", s.handleDashboard)

		r.Route("/produtos", func(r chi.Router) {
			r.Get("/", s.handleProducts)
			r.Post("/", s.handleCreateProduct)
			r.Post("/{id}", s.handleEditProduct)
			r.Post("/{id}/delete", s.handleDeleteProduct)
		})
		r.Route("/clientes", func(r chi.Router) {
			r.Get("/", s.handleClients)
			r.Post("/", s.handleCreateClient)
			r.Post("/{id}", s.handleEditClient)
			r.Post("/{id}/delete", s.handleDeleteClient)
		})
		r.Route("/usuarios", func(r chi.Router) {
			r.Get("/", s.handleStaff)
			r.Post("/", s.handleCreateProfessional)
			r.Post("/{id}", s.handleEditProfessional)
			r.Post("/{id}/delete", s.handleDeleteProfessional)
		})

		r.Get("/mesas", s.handleTables)
		r.Get("/mesas/{id}", s.handleTable)
		r.Get("/comandas", s.handleTickets)
		r.Get("/configuracoes", s.handleSettings)
	})

	return r
}

// withCredentials hands the session's token and tenant to resource calls made
// while serving the request.
func withCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := auth.FromContext(r.Context())
		ctx := api.WithCredentials(r.Context(), ac.Credentials())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleLoading(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "loading", page{Title: "Carregando"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
