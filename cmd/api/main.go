// Command api serves the authentication and user management HTTP API.
//
//	@title						Auth API
//	@version					1.0
//	@description				Username/password authentication and user management.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/auth-api/internal/api"
	"github.com/userhub/auth-api/internal/api/handler"
	"github.com/userhub/auth-api/internal/core/service"
	mongodb "github.com/userhub/auth-api/internal/infrastructure/db/mongo"
	redisdb "github.com/userhub/auth-api/internal/infrastructure/db/redis"
	"github.com/userhub/auth-api/internal/infrastructure/password"
	"github.com/userhub/auth-api/internal/infrastructure/queue"
	"github.com/userhub/auth-api/internal/infrastructure/seed"
	"github.com/userhub/auth-api/internal/infrastructure/token"
	"github.com/userhub/auth-api/internal/pkg/config"
	"github.com/userhub/auth-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "auth-api",
	})
	log.Info().Str("env", cfg.Env).Msg("starting auth-api")

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("auth-api stopped with error")
	}
	log.Info().Msg("auth-api stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongodb.Disconnect(context.Background(), mongoClient); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	store := mongodb.NewUserRepository(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.EnsureAuditIndexes(ctx, db); err != nil {
		return err
	}
	users := redisdb.NewCachedUserRepository(store, rdb, cfg.Redis.UserTTL, logger.Component("user_cache"))

	// --- Audit trail ---
	// Workers outlive the request context so queued events drain after the
	// HTTP server has stopped accepting work.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, mongodb.NewAuditRepository(db), logger.Component("audit"))
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
	}()

	// --- Security ---
	codec, err := token.NewCodec(cfg.Auth.JWTSecret, token.WithIssuer(cfg.Auth.JWTIssuer))
	if err != nil {
		return err
	}
	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	policy := service.NewPolicy(users)

	// --- Services ---
	authService := service.NewAuthService(users, codec, hasher, dispatcher, service.TokenTTLs{
		Access:  cfg.Auth.AccessTokenTTL,
		Refresh: cfg.Auth.RefreshTokenTTL,
	}, logger.Component("auth_service"))
	userService := service.NewUserService(users, codec, hasher, policy, dispatcher,
		cfg.Auth.AccessTokenTTL, logger.Component("user_service"))

	if cfg.SeedDefaultUsers {
		if _, err := seed.DefaultUsers(ctx, users, hasher, logger.Component("seed")); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		UserService: userService,
		Identity:    policy,
		Codec:       codec,
		Probes: map[string]handler.Pinger{
			"mongo": handler.MongoPinger(db),
			"redis": handler.RedisPinger(rdb),
		},
		CORSOrigins: cfg.CORSAllowedOrigins,
		Logger:      logger.Component("http"),
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown incomplete")
	}
	return nil
}
