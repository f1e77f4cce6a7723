package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/MVdu13/finsyamvp-sub000/internal/holding"
	"github.com/MVdu13/finsyamvp-sub000/internal/ledger"
	"github.com/MVdu13/finsyamvp-sub000/internal/metrics"
	"github.com/MVdu13/finsyamvp-sub000/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(context.Background(), dbURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)

		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			slog.Error("schema setup failed", "err", err)
			os.Exit(1)
		}
		st = pg
		slog.Info("connected to PostgreSQL")

		// Wrap with Redis snapshot cache if configured.
		if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
			opt, err := redis.ParseURL(redisURL)
			if err != nil {
				slog.Error("invalid REDIS_URL", "err", err)
				os.Exit(1)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, snapshotCacheTTL())
			slog.Info("Redis cache enabled")
		}
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Rehydrate the ledger from the last stored snapshot ---
	snapshot, err := st.LoadSnapshot(context.Background())
	if err != nil {
		slog.Error("snapshot load failed", "err", err)
		os.Exit(1)
	}
	l := ledger.NewFromSnapshot(snapshot)
	slog.Info("ledger rehydrated", "positions", len(snapshot))
	metrics.Holdings.Set(float64(len(snapshot)))

	// --- Persistence bridge ---
	bridge := store.NewBridge(st, 5*time.Second)
	detach := bridge.Attach(l)
	defer detach()

	// --- WebSocket hub, fed by the ledger subscription ---
	wsHub := holding.NewWSHub()
	l.Subscribe(wsHub.BroadcastSnapshot)

	// --- Services ---
	svc := holding.NewService(l)
	planner := holding.NewPlanner(decimal.NewFromInt(1)) // 1pp rebalancing tolerance

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS middleware for frontend cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"wealth-ledger"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for snapshot push.
		r.Get("/ws", wsHub.HandleWS)

		// Position ledger.
		r.Get("/positions", svc.ListPositions)
		r.Post("/positions", svc.AddPosition)
		r.Get("/positions/total", svc.GetTotalValue)
		r.Get("/positions/{positionID}", svc.GetPosition)
		r.Patch("/positions/{positionID}", svc.UpdatePosition)
		r.Delete("/positions/{positionID}", svc.DeletePosition)
		r.Post("/positions/{positionID}/sell", svc.SellPosition)

		// Stateless planner calculators.
		r.Route("/planner", func(r chi.Router) {
			r.Post("/loan", planner.Loan)
			r.Post("/compound", planner.Compound)
			r.Post("/budget", planner.Budget)
			r.Post("/rebalance", planner.Rebalance)
		})
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("wealth-ledger listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down wealth-ledger...")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("wealth-ledger stopped")
}

// snapshotCacheTTL reads SNAPSHOT_CACHE_TTL (Go duration) with a 30s default.
func snapshotCacheTTL() time.Duration {
	if v := os.Getenv("SNAPSHOT_CACHE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			return ttl
		}
		slog.Warn("invalid SNAPSHOT_CACHE_TTL, using default", "value", v)
	}
	return 30 * time.Second
}
