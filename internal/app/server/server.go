package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"practicehub/internal/domain/audit"
	"practicehub/internal/domain/auth"
	"practicehub/internal/domain/capacity"
	"practicehub/internal/domain/leave"
	"practicehub/internal/domain/timesheet"
	"practicehub/internal/domain/toil"
	"practicehub/internal/platform/config"
	"practicehub/internal/platform/db"
	"practicehub/internal/platform/jobs"
	"practicehub/internal/platform/metrics"
	"practicehub/internal/transport/http/api"
	audithandler "practicehub/internal/transport/http/handlers/audit"
	authhandler "practicehub/internal/transport/http/handlers/auth"
	capacityhandler "practicehub/internal/transport/http/handlers/capacity"
	leavehandler "practicehub/internal/transport/http/handlers/leave"
	timesheethandler "practicehub/internal/transport/http/handlers/timesheet"
	toilhandler "practicehub/internal/transport/http/handlers/toil"
	"practicehub/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	Pool   *pgxpool.Pool
	Router http.Handler
	Jobs   *jobs.Service
}

// New connects, migrates and seeds the database, wires the domain services
// and returns the app with its router ready to serve.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	collector := metrics.New()

	authStore := auth.NewStore(pool)
	authService := auth.NewService(authStore, cfg.JWTSecret)
	auditService := audit.New(pool)
	capacityService := capacity.NewService(capacity.NewStore(pool))
	timesheetService := timesheet.NewService(timesheet.NewStore(pool), cfg.MinWeeklyHours)
	engine := toil.NewEngine(toil.NewStore(pool), cfg.StandardDayHours, cfg.DefaultAnnualEntitlement, cfg.ToilExpiryMonths)
	leaveService := leave.NewService(leave.NewStore(pool), cfg.StandardDayHours, cfg.DefaultAnnualEntitlement, cfg.MaxCarryoverDays)
	jobsService := jobs.New(pool, cfg, engine, collector)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireRole(auth.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService).RegisterRoutes(r)
		capacityhandler.NewHandler(capacityService, auditService).RegisterRoutes(r)
		timesheethandler.NewHandler(timesheetService, engine, auditService, collector).RegisterRoutes(r)
		toilhandler.NewHandler(engine, authStore, auditService, jobsService, collector, cfg.ToilExpiryWarningDays).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService, authStore, auditService, collector).RegisterRoutes(r)
		audithandler.NewHandler(auditService).RegisterRoutes(r)
	})

	return &App{Config: cfg, Pool: pool, Router: router, Jobs: jobsService}, nil
}

func (a *App) Close() {
	a.Pool.Close()
}

func Run() {
	ctx := context.Background()
	cfg := config.Load()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	log.Printf("practicehub server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
