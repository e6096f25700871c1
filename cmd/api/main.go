package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streaks/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streaks/internal/config"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/services"
	"github.com/comitanigiacomo/kanso-streaks/internal/core/workers"
)

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: invalid configuration: %v", err)
	}
	clock := cfg.Clock()

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Println("Database connected successfully.")

	rdb := connectRedis(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	var (
		habitRepo   domain.HabitRepository = repository.NewPostgresHabitRepository(db)
		entryRepo                          = repository.NewPostgresEntryRepository(db)
		userRepo                           = repository.NewPostgresUserRepository(db)
		streakCache domain.StreakCache
	)

	if rdb != nil {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, rdb, cfg.HabitCacheTTL)
		streakCache = cache.NewRedisStreakCache(rdb, cfg.StreakCacheTTL)
	}

	ctx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	worker := workers.NewStreakWorker(habitRepo, entryRepo, streakCache, clock, cfg.WorkerQueueSize)
	worker.Start(ctx)

	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, userRepo)
	authService := services.NewAuthService(userRepo)
	habitService := services.NewHabitService(habitRepo, worker)
	entryService := services.NewEntryService(entryRepo, habitRepo, worker)
	statsService := services.NewStatsService(habitRepo, entryRepo, streakCache, clock)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:  adapterHTTP.NewAuthHandler(authService, tokenService),
		HabitHandler: adapterHTTP.NewHabitHandler(habitService),
		EntryHandler: adapterHTTP.NewEntryHandler(entryService, clock),
		StatsHandler: adapterHTTP.NewStatsHandler(statsService, clock),
		TokenService: tokenService,
		DB:           db,
		Redis:        rdb,
		RateLimit: middleware.RateLimitConfig{
			Limit:  cfg.RateLimit,
			Window: cfg.RateWindow,
		},
		StartTime: startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Kanso Streaks running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown error: %v", err)
	}
	stopWorker()

	log.Println("Server stopped gracefully.")
}

// connectRedis returns nil when Redis is disabled or unreachable; the API
// then runs without caching or rate limiting.
func connectRedis(cfg config.Redis) *redis.Client {
	if !cfg.Enabled {
		log.Println("[CACHE] Redis disabled by configuration")
		return nil
	}

	rdb, err := cache.NewRedisClient(cache.Options{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err != nil {
		log.Printf("[CACHE] Redis unavailable, continuing without cache: %v", err)
		return nil
	}

	log.Println("[CACHE] Redis connected successfully.")
	return rdb
}
