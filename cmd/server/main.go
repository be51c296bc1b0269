package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub/internal/api"
	"coursehub/internal/app/service"
	"coursehub/internal/app/worker"
	"coursehub/internal/common/security"
	"coursehub/internal/domain/repository"
	"coursehub/internal/domain/repository/memstore"
	"coursehub/internal/platform/config"
	"coursehub/internal/platform/database"
	"coursehub/internal/platform/logger"
	"coursehub/internal/platform/observability"
	"coursehub/internal/platform/queue"
	"coursehub/internal/platform/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "coursehub")
	if err != nil {
		log.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	var (
		repos  repository.Set
		health api.Pinger
		db     *sql.DB
	)
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		repos = memstore.New().Set()
		log.Warn("using in-memory store; data is lost on exit")
	default:
		db, err = database.Open(ctx, cfg.DBConnStr)
		if err != nil {
			log.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("migrating database", zap.Error(err))
		}
		repos = repository.NewPgSet(db)
		health = db
	}
	log.Info("store ready", zap.String("driver", cfg.StorageDriver))

	// Uploads
	var files storage.Store
	if cfg.UseB2() {
		files, err = storage.NewB2Store(ctx, cfg.B2KeyID, cfg.B2AppKey, cfg.B2Bucket)
	} else {
		files, err = storage.NewLocalStore(cfg.UploadDir)
	}
	if err != nil {
		log.Fatal("initializing upload storage", zap.Error(err))
	}

	// Redis is optional: without it logins are not throttled and uploads are
	// deleted inline.
	rdb, err := queue.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("connecting to redis", zap.Error(err))
	}
	var (
		limiter service.LoginLimiter
		janitor service.FileJanitor = storage.InlineJanitor{Store: files, Log: log}
	)
	if rdb != nil {
		defer rdb.Close()
		limiter = queue.NewLoginLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginWindow)
		janitor = queue.NewCleanupQueue(rdb, cfg.CleanupQueueName)
	}

	tokens := security.NewTokenIssuer(cfg.JWTKey, cfg.JWTExp)
	svc := api.Services{
		Auth:       service.NewAuthService(repos.Users, tokens, limiter, log),
		Users:      service.NewUserService(repos.Users),
		Catalog:    service.NewCatalogService(repos.Courses, repos.Users),
		Enrollment: service.NewEnrollmentService(repos.Enrollments, repos.Users, log),
		Grades:     service.NewGradeService(repos.Grades, repos.Homework),
		Homework:   service.NewHomeworkService(repos.Homework, files, janitor, log),
		Files:      service.NewFileService(repos.Files, files, janitor, log),
		Messages:   service.NewMessageService(repos.Messages),
	}

	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword != "" {
		created, err := svc.Users.EnsureAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
		if err != nil {
			log.Fatal("creating bootstrap admin", zap.Error(err))
		}
		if created {
			log.Info("bootstrap admin created", zap.String("email", cfg.BootstrapAdminEmail))
		}
	}

	// Background work
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if rdb != nil {
		cleanup := worker.NewCleanupWorker(rdb, cfg.CleanupQueueName, files, cfg.CleanupLockTTL, log)
		go cleanup.Start(workerCtx)
	}
	jobs := worker.NewRunner(workerCtx, log)
	jobs.Every(cfg.SeatAuditInterval, "seat_audit", worker.NewSeatAudit(repos.Courses, log).Run)

	router := api.NewRouter(svc, api.Options{
		Tokens:         tokens,
		Uploads:        files,
		Health:         health,
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Log:            log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listening", zap.String("port", cfg.APIPort), zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	log.Info("server and workers stopped")
}
