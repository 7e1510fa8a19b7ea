package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"rizz-social/internal/config"
	"rizz-social/internal/logging"
	mysqlClient "rizz-social/internal/platform/mysql"
	rabbitmqClient "rizz-social/internal/platform/rabbitmq"
	redisClient "rizz-social/internal/platform/redis"
	"rizz-social/internal/repository"
	"rizz-social/internal/storage"
	"rizz-social/internal/worker"
)

// App owns every process-wide resource. Redis and MQConn are nil when the
// corresponding address is not configured.
type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Images        storage.Store
	CleanupWorker *worker.ImageCleanupWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})

	app := &App{Config: cfg, StartedAt: time.Now()}
	if err := app.open(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) open(ctx context.Context) error {
	cfg := a.Config

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), mysqlClient.DefaultPoolOptions(), cfg.Log.Level == "debug")
	if err != nil {
		return err
	}
	a.MySQL = mysqlDB
	if err := repository.AutoMigrate(mysqlDB); err != nil {
		return err
	}

	a.Redis, err = redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if a.Redis == nil {
		logging.Warn().Msg("redis not configured, login lockout disabled")
	}

	a.Images, err = NewImageStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return err
	}
	if a.MQConn == nil {
		logging.Warn().Msg("rabbitmq not configured, content events and image cleanup disabled")
		return nil
	}

	// The worker outlives the bootstrap context; Close stops it.
	a.CleanupWorker = worker.NewImageCleanupWorker(a.MQConn, a.Images, cfg.RabbitMQ.PostEventQueue)
	if err := a.CleanupWorker.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start image cleanup worker failed: %w", err)
	}
	return nil
}

// NewImageStore builds the blob store selected by storage.driver.
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Prefix:    cfg.S3Prefix,
			MaxBytes:  cfg.MaxImageBytes,
		})
	default:
		return storage.NewLocalStore(cfg.UploadDir, cfg.MaxImageBytes)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.CleanupWorker != nil {
		a.CleanupWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
