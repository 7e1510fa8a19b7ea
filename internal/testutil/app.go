package testutil

import (
	"testing"
	"time"

	"rizz-social/internal/bootstrap"
	"rizz-social/internal/config"
	"rizz-social/internal/storage"
)

// NewApp returns an App over OpenDB and a temp-dir image store, with Redis
// and RabbitMQ disabled.
func NewApp(t *testing.T, jwtSecret string) *bootstrap.App {
	t.Helper()

	cfg := config.Default()
	cfg.App.GinMode = "test"
	cfg.Auth.JWTSecret = jwtSecret
	cfg.Storage.UploadDir = t.TempDir()
	cfg.Redis.Addr = ""
	cfg.RabbitMQ.URL = ""

	images, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.MaxImageBytes)
	if err != nil {
		t.Fatalf("open image store failed: %v", err)
	}

	return &bootstrap.App{
		Config:    cfg,
		MySQL:     OpenDB(t),
		Images:    images,
		StartedAt: time.Now(),
	}
}
