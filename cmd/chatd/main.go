package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/uncord-chat/uncord-server/internal/api"
	"github.com/uncord-chat/uncord-server/internal/auth"
	"github.com/uncord-chat/uncord-server/internal/chat"
	"github.com/uncord-chat/uncord-server/internal/config"
	"github.com/uncord-chat/uncord-server/internal/httputil"
	"github.com/uncord-chat/uncord-server/internal/message"
	"github.com/uncord-chat/uncord-server/internal/postgres"
	"github.com/uncord-chat/uncord-server/internal/registry"
	"github.com/uncord-chat/uncord-server/internal/user"
	"github.com/uncord-chat/uncord-server/internal/wire"
)

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	log.Info().Msg("Starting chat server")

	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConn, cfg.DatabaseMinConn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()
	log.Info().Msg("PostgreSQL connected")

	if err := postgres.Bootstrap(ctx, db); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}

	var rdb *redis.Client
	var cache *auth.SessionCache
	if cfg.SessionCacheEnabled() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		cache = auth.NewSessionCache(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Session cache connected")
	} else {
		log.Warn().Msg("REDIS_ADDR is not configured. authorize_request will hit Postgres on every call.")
	}

	userRepo := user.NewPGRepository(db, log.Logger)
	sessionRepo := auth.NewPGSessionRepository(db)
	chatRepo := chat.NewPGRepository(db, log.Logger)
	messageRepo := message.NewPGRepository(db, log.Logger)

	reg := registry.New(log.Logger)

	authService := auth.NewService(userRepo, sessionRepo, auth.HashParams{
		Memory:      cfg.Argon2Memory,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
		SaltLength:  cfg.Argon2SaltLength,
		KeyLength:   cfg.Argon2KeyLength,
	}, cfg.JWTSecretKey, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.SessionTTL, log.Logger)

	chatService := chat.NewService(chatRepo, userRepo, reg, log.Logger)
	messageService := message.NewService(messageRepo, reg, log.Logger)
	gate := auth.NewGate(sessionRepo, cache, chatService, log.Logger)

	app := fiber.New(fiber.Config{
		AppName: "chatd",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			msg := "internal error"
			if fe, ok := errors.AsType[*fiber.Error](err); ok {
				status = fe.Code
				msg = fe.Message
			} else {
				log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("Unhandled error")
			}
			return c.Status(status).JSON(wire.ErrorResponse{Error: msg})
		},
	})

	app.Use(requestid.New())
	app.Use(httputil.RequestLogger(log.Logger))

	var healthCache api.Pinger
	if rdb != nil {
		healthCache = redisPinger{rdb}
	}

	api.RegisterRoutes(app, api.Handlers{
		Auth:    api.NewAuthHandler(authService),
		Chat:    api.NewChatHandler(chatService),
		Message: api.NewMessageHandler(messageService),
		Gateway: api.NewGatewayHandler(gate, reg, messageService, userRepo, log.Logger),
		Health:  api.NewHealthHandler(db, healthCache),
	}, auth.RequireAuth(gate))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", cfg.Addr()).Msg("Server listening")
	if err := app.Listen(cfg.Addr(), fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// redisPinger adapts *redis.Client to api.Pinger.
type redisPinger struct{ client *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.client.Ping(ctx).Err() }
