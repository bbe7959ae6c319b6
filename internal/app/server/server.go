package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"leavedesk/internal/domain/audit"
	"leavedesk/internal/domain/auth"
	"leavedesk/internal/domain/core"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/domain/notifications"
	"leavedesk/internal/platform/config"
	"leavedesk/internal/platform/db"
	"leavedesk/internal/platform/email"
	"leavedesk/internal/platform/metrics"
	"leavedesk/internal/transport/http/api"
	audithandler "leavedesk/internal/transport/http/handlers/audit"
	authhandler "leavedesk/internal/transport/http/handlers/auth"
	corehandler "leavedesk/internal/transport/http/handlers/core"
	leavehandler "leavedesk/internal/transport/http/handlers/leave"
	notificationshandler "leavedesk/internal/transport/http/handlers/notifications"
	"leavedesk/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  chi.Router
	Metrics *metrics.Collector
}

// New builds the fully wired application. It connects the pool and
// optionally runs migrations and seed data, but does not start
// listening; Run does that.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed data: %w", err)
		}
	}

	app := &App{
		Config:  cfg,
		DB:      pool,
		Metrics: metrics.New(),
	}
	app.Router = app.buildRouter()
	return app, nil
}

func (a *App) buildRouter() chi.Router {
	cfg := a.Config
	isProd := cfg.Environment == "production"

	authStore := auth.NewStore(a.DB)
	coreStore := core.NewStore(a.DB)
	leaveStore := leave.NewStore(a.DB)
	leaveService := leave.NewService(leaveStore)
	notifyService := notifications.New(a.DB, email.New(cfg), cfg.EmailFrom)
	auditService := audit.New(a.DB)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders(isProd))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	r.Use(middleware.Auth(cfg.JWTSecret))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	r.Use(middleware.Instrument(a.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, map[string]string{"status": "ok"}, middleware.GetRequestID(r.Context()))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "not_ready", "database unreachable", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, map[string]string{"status": "ready"}, middleware.GetRequestID(r.Context()))
	})
	if cfg.MetricsEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		corehandler.NewHandler(coreStore, authStore).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService, coreStore, authStore, notifyService, auditService).RegisterRoutes(r)
		notificationshandler.NewHandler(notifyService).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authStore).RegisterRoutes(r)
	})

	r.NotFound(spaHandler(cfg.FrontendDir))
	return r
}

// spaHandler serves the built frontend, falling back to index.html for
// client-side routes. API misses still return the JSON 404 envelope.
func spaHandler(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
			return
		}
		path := filepath.Join(dir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then
// shuts down gracefully.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	a.DB.Close()
	return nil
}
