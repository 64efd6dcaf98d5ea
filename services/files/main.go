// Files service: base64 uploads to disk or S3 and serving of disk-stored files.
package main

import (
	"context"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bizchat/internal/blob"
	"github.com/bizchat/internal/config"
	"github.com/bizchat/internal/handler"
	"github.com/bizchat/internal/httpserver"
	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/middleware"
	"github.com/bizchat/internal/service"
	"github.com/bizchat/internal/token"
)

func main() {
	logger.SetPrefix("files")
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)
	if os.Getenv("SERVER_ADDR") == "" {
		cfg.ServerAddr = ":8083"
	}
	logger.Infof("starting files service: backend=%s max_upload_bytes=%d", cfg.Blob.Backend, cfg.Blob.MaxUploadSize)

	var (
		store blob.Store
		files handler.FileServer
	)
	switch cfg.Blob.Backend {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := blob.NewS3Client(ctx, &cfg.Blob.S3)
		cancel()
		if err != nil {
			logger.Errorf("s3 client: %v", err)
			os.Exit(1)
		}
		store = blob.NewS3Store(client, &cfg.Blob.S3)
	default:
		disk := blob.NewDiskStore(cfg.Blob.UploadDir, cfg.Blob.PublicBaseURL)
		store, files = disk, disk
	}

	uploadH := handler.NewUploadHandler(
		service.NewUploadService(store, cfg.Blob.MaxUploadSize, service.NewValidator()),
		files,
		cfg.Blob.MaxUploadSize,
	)
	tokens := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)

	r := httpserver.NewRouter(cfg)
	r.Get("/health", handler.Health(nil))
	r.Get("/api/files/{name}", uploadH.ServeFile)
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(tokens))
		r.Post("/api/upload", uploadH.Upload)
	})

	if err := httpserver.Serve(httpserver.NewServer(cfg, r)); err != nil {
		logger.Errorf("files server: %v", err)
	}
}
