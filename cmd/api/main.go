package main

import (
	"context"
	"log"
	"time"

	"messagely/config"
	"messagely/internal/events"
	"messagely/internal/handler"
	"messagely/internal/middleware"
	"messagely/internal/redis"
	"messagely/internal/repository"
	"messagely/internal/server"
	"messagely/internal/services"
	"messagely/internal/websocket"
	"messagely/pkg/database"
	"messagely/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()
	l := logger.New(cfg.AppMode)
	defer l.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	health := map[string]server.HealthCheck{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}

	limits := redis.RateLimitConfig{
		MessageLimit:  cfg.RateLimitMessages,
		MessageWindow: time.Minute,
		AuthLimit:     cfg.RateLimitAuth,
		AuthWindow:    time.Minute,
	}

	// Without redis, events are delivered to this instance's sockets only
	// and rate limits are counted in memory.
	var publisher events.Publisher = hub
	var limiter middleware.RateLimiter
	if cfg.RedisEnabled {
		rdb := redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := redis.Ping(ctx, rdb); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}

		publisher = redis.NewPublisher(rdb)
		limiter = redis.NewRateLimiter(rdb, limits)
		health["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, rdb) }

		bridge := websocket.NewRedisBridge(redis.NewSubscriber(rdb), hub, l)
		go bridge.Run(ctx)
	} else {
		l.Warnf("Redis disabled: rate limits are per instance, events stay on this instance")

		mem := middleware.NewMemoryLimiter(limits)
		sched, err := mem.StartCleanup(cfg.RateLimitCleanup)
		if err != nil {
			log.Fatalf("Invalid rate limit cleanup schedule %q: %v", cfg.RateLimitCleanup, err)
		}
		defer sched.Stop()
		limiter = mem
	}

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	userService := services.NewUserService(userRepo, cfg.BcryptWorkFactor)
	authService := services.NewAuthService(userService, cfg.JWTSecret, time.Duration(cfg.JWTExpiryMin)*time.Minute)
	messageService := services.NewMessageService(messageRepo, events.NewBus(publisher), l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Message:   handler.NewMessageHandler(messageService),
		WebSocket: websocket.NewHandler(authService, hub, l),
	}, server.Deps{
		Auth:    authService,
		Limiter: limiter,
		Health:  health,
	})

	if err := srv.Start(); err != nil {
		l.Errorf("Server exited with error: %v", err)
	}
}
