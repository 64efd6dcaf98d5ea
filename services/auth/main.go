// Auth service: phone login codes, bearer tokens and device sessions.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bizchat/internal/config"
	"github.com/bizchat/internal/handler"
	"github.com/bizchat/internal/httpserver"
	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/middleware"
	"github.com/bizchat/internal/repository"
	"github.com/bizchat/internal/service"
	"github.com/bizchat/internal/sms"
	"github.com/bizchat/internal/startup"
	"github.com/bizchat/internal/storage"
	"github.com/bizchat/internal/storage/memory"
	"github.com/bizchat/internal/token"
	"github.com/bizchat/migrations"
)

func main() {
	logger.SetPrefix("auth")
	dev := flag.Bool("dev", false, "keep login codes in memory instead of Redis (no Redis required)")
	flag.Parse()

	logger.Info("starting auth service")
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)
	if os.Getenv("SERVER_ADDR") == "" {
		cfg.ServerAddr = ":8081"
	}
	if cfg.SMS.APIKey == "" {
		logger.Info("SMS_API_KEY not set: login codes are logged and returned in responses")
	}

	poolCfg, err := startup.PoolConfig(cfg)
	if err != nil {
		logger.Errorf("db config: %v", err)
		os.Exit(1)
	}
	pool := startup.ConnectDBWithRetry(poolCfg, 60*time.Second, "auth: ")
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = migrations.Apply(ctx, pool, cfg.Database.Schema)
	cancel()
	if err != nil {
		logger.Errorf("auth: migrations: %v", err)
		os.Exit(1)
	}

	var codes storage.CodeStore
	if *dev {
		logger.Info("auth -dev: login codes kept in memory")
		codes = memory.New(cfg.CodeTTL)
	} else {
		codes = startup.ConnectRedisWithRetry(cfg.Redis.URL, cfg.CodeTTL, 60*time.Second, "auth: ")
	}
	defer codes.Close()

	tokens := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	authSvc := service.NewAuthService(
		repository.NewTxManager(pool),
		repository.NewUserRepository(pool),
		repository.NewSessionRepository(pool),
		codes,
		sms.New(&cfg.SMS),
		tokens,
		service.NewValidator(),
		cfg.CodeTTL,
	)
	authH := handler.NewAuthHandler(authSvc)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Stop()

	r := httpserver.NewRouter(cfg)
	r.Get("/health", handler.Health(pool))
	r.With(limiter.Handler).Post("/api/auth", authH.Post)
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(tokens))
		r.Get("/api/auth/sessions", authH.GetSessions)
	})

	if err := httpserver.Serve(httpserver.NewServer(cfg, r)); err != nil {
		logger.Errorf("auth server: %v", err)
	}
}
