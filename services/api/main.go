package main

import (
	"context"
	"flag"
	"os"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bizchat/internal/config"
	"github.com/bizchat/internal/handler"
	"github.com/bizchat/internal/httpserver"
	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/middleware"
	"github.com/bizchat/internal/repository"
	"github.com/bizchat/internal/service"
	"github.com/bizchat/internal/startup"
	"github.com/bizchat/internal/token"
	"github.com/bizchat/migrations"
)

func main() {
	logger.SetPrefix("api")
	migrate := flag.Bool("migrate", false, "apply migrations and exit")
	dev := flag.Bool("dev", false, "start with embedded PostgreSQL (no external DB required)")
	flag.Parse()

	logger.Info("starting API service")
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	var embeddedDB *embeddedpostgres.EmbeddedPostgres
	if *dev {
		embeddedDB, cfg.Database.URL, err = startup.StartEmbeddedPostgres(5432, ".pgdata")
		if err != nil {
			logger.Errorf("embedded postgres: %v", err)
			os.Exit(1)
		}
		defer func() {
			logger.Info("stopping embedded postgres...")
			if err := embeddedDB.Stop(); err != nil {
				logger.Errorf("embedded postgres stop: %v", err)
			}
		}()
	}

	pool, err := connectAndMigrate(cfg)
	if err != nil {
		logger.Errorf("database: %v", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected, migrations applied")
	if *migrate {
		return
	}

	v := service.NewValidator()
	txm := repository.NewTxManager(pool)
	userRepo := repository.NewUserRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	msgRepo := repository.NewMessageRepository(pool)
	readRepo := repository.NewReadRepository(pool)
	listRepo := repository.NewChatListRepository(pool)

	users := service.NewUserService(userRepo)
	chats := service.NewChatService(txm, chatRepo, userRepo, v)
	messages := service.NewMessageService(txm, chats, msgRepo, v)
	reads := service.NewReadService(txm, chats, messages, readRepo)
	chatList := service.NewChatListService(listRepo)
	tokens := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	defer limiter.Stop()

	msgH := handler.NewMessagesHandler(chatList, messages, chats, reads, users)

	r := httpserver.NewRouter(cfg)
	r.Get("/health", handler.Health(pool))
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(tokens))
		r.Use(limiter.Handler)
		r.Get("/api/messages", msgH.Get)
		r.Post("/api/messages", msgH.Post)
	})

	if err := httpserver.Serve(httpserver.NewServer(cfg, r)); err != nil {
		logger.Errorf("server: %v", err)
	}
}

func connectAndMigrate(cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := startup.PoolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool := startup.ConnectDBWithRetry(poolCfg, 60*time.Second, "")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrations.Apply(ctx, pool, cfg.Database.Schema); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
