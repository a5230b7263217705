package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/taskito/backend/adapters/events"
	"github.com/taskito/backend/adapters/limiter"
	"github.com/taskito/backend/adapters/store"
	"github.com/taskito/backend/adapters/tokenizer"
	"github.com/taskito/backend/internal/config"
	"github.com/taskito/backend/ports"
	"github.com/taskito/backend/service"
	httptransport "github.com/taskito/backend/transport/http"
	"github.com/taskito/backend/transport/ws"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	// Postgres via bun
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DatabaseDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx := context.Background()
	if err := store.CreateSchema(ctx, db); err != nil {
		logger.Error("failed to create schema", "error", err)
		os.Exit(1)
	}

	// Redis backs both the rate-limit counters and the event stream.
	opts, err := redis.ParseURL(cfg.RedisURL())
	if err != nil {
		logger.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(opts)
	defer redisClient.Close()

	wmLogger := watermill.NewSlogLogger(logger)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		wmLogger,
	)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}
	subscriber, err := redisstream.NewSubscriber(
		redisstream.SubscriberConfig{Client: redisClient},
		wmLogger,
	)
	if err != nil {
		logger.Error("failed to create event subscriber", "error", err)
		os.Exit(1)
	}

	userStore := store.NewBunUserStore(db)
	taskStore := store.NewBunTaskStore(db)
	jwtTokenizer := tokenizer.NewJWTTokenizer(
		[]byte(cfg.SecretKey), []byte(cfg.RefreshTokenSecret),
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)
	eventPub := events.NewWatermillPublisher(publisher)

	authService := service.NewAuthService(userStore, jwtTokenizer, logger)
	userService := service.NewUserService(userStore, taskStore, logger)
	taskService := service.NewTaskService(taskStore, eventPub, logger)

	var rateLimiter ports.RateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = limiter.NewRedisLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	hub := ws.NewHub(logger)
	go func() {
		if err := hub.Run(ctx, subscriber); err != nil {
			logger.Error("event bridge stopped", "error", err)
		}
	}()

	router := httptransport.SetupRouter(httptransport.RouterConfig{
		AuthService:    authService,
		UserService:    userService,
		TaskService:    taskService,
		CSRFGuard:      httptransport.NewCSRFGuard([]byte(cfg.CSRFSecret)),
		Limiter:        rateLimiter,
		AccessTTL:      cfg.AccessTokenTTL,
		RefreshTTL:     cfg.RefreshTokenTTL,
		AllowedOrigins: strings.Split(cfg.CORSAllowedOrigins, ","),
		WSHandler:      hub.Handler(),
	})

	logger.Info("starting server", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
