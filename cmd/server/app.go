package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/accounts-api/internal/config"
	"github.com/phrazzld/accounts-api/internal/events"
	"github.com/phrazzld/accounts-api/internal/platform/identity"
	"github.com/phrazzld/accounts-api/internal/platform/mailer"
	"github.com/phrazzld/accounts-api/internal/platform/objectstore"
	"github.com/phrazzld/accounts-api/internal/platform/postgres"
	"github.com/phrazzld/accounts-api/internal/platform/rediscache"
	"github.com/phrazzld/accounts-api/internal/service"
	"github.com/phrazzld/accounts-api/internal/service/auth"
	"github.com/phrazzld/accounts-api/internal/store"
	"github.com/phrazzld/accounts-api/internal/task"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	profiles store.ProfileStore
	images   *objectstore.GCSImageStore
	verifier auth.TokenVerifier
	users    service.UserService

	taskQueue  *task.TaskQueue
	workerPool *task.WorkerPool
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must be established and migrated beforehand. On
// failure everything opened so far, db included, is closed.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.profiles = postgres.NewPostgresProfileStore(db, logger)
	if cfg.Redis.URL != "" {
		client, err := rediscache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.redis = client

		cached, err := rediscache.NewCachedProfileStore(
			app.profiles,
			client,
			time.Duration(cfg.Redis.TTLMinutes)*time.Minute,
			logger,
		)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to create profile cache: %w", err)
		}
		app.profiles = cached
		logger.Info("Profile cache enabled", "ttl_minutes", cfg.Redis.TTLMinutes)
	}

	identityClient, err := identity.NewFirebaseClientFromConfig(ctx, cfg.Firebase, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize identity provider client: %w", err)
	}

	app.images, err = objectstore.NewGCSImageStoreFromConfig(ctx, cfg.Storage, cfg.Firebase.CredentialsBase64, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}

	notifier, err := mailer.NewSMTPNotifier(cfg.SMTP, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize mail notifier: %w", err)
	}

	keys, err := auth.NewCachedKeySet(ctx, cfg.Firebase.JWKSURL)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to fetch token signing keys: %w", err)
	}
	app.verifier, err = auth.NewIDTokenVerifier(keys, cfg.Firebase.ProjectID)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	// Background work: events fan out to the reconciliation log and to the
	// image cleanup handler, which feeds the worker pool.
	app.taskQueue = task.NewTaskQueue(cfg.Task.QueueSize, logger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: cfg.Task.WorkerCount,
		TaskTimeout: time.Minute,
	}, logger)
	app.workerPool.Start()

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewReconciliationLogger(logger))
	emitter.RegisterHandler(task.NewImageCleanupEventHandler(app.taskQueue, app.images, logger))

	app.users, err = service.NewUserService(service.Dependencies{
		Profiles: app.profiles,
		Identity: identityClient,
		Images:   app.images,
		Notifier: notifier,
		Hasher:   auth.NewBcryptHasher(bcrypt.DefaultCost),
		Events:   emitter,
	}, service.Options{ImageFolder: cfg.Storage.Folder}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	router := newRouter(app.users, app.verifier, app.logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	if err := serve(ctx, server, timeout, app.logger); err != nil {
		app.cleanup()
		return fmt.Errorf("server error: %w", err)
	}

	app.cleanup()
	app.logger.Info("Server shutdown completed")
	return nil
}

// cleanup handles graceful shutdown of application resources. Queued image
// cleanups are drained before the stores close.
func (app *application) cleanup() {
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := app.workerPool.Shutdown(ctx); err != nil {
			app.logger.Error("Worker pool shutdown failed", "error", err)
		}
		cancel()
	}

	if app.images != nil {
		if err := app.images.Close(); err != nil {
			app.logger.Error("Error closing storage client", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
}
