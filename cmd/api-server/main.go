package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/gyanveer/coaching-admin-api/api/swagger"
	"github.com/gyanveer/coaching-admin-api/internal/handler"
	"github.com/gyanveer/coaching-admin-api/internal/middleware"
	"github.com/gyanveer/coaching-admin-api/internal/models"
	"github.com/gyanveer/coaching-admin-api/internal/repository"
	"github.com/gyanveer/coaching-admin-api/internal/service"
	"github.com/gyanveer/coaching-admin-api/pkg/cache"
	"github.com/gyanveer/coaching-admin-api/pkg/config"
	"github.com/gyanveer/coaching-admin-api/pkg/database"
	"github.com/gyanveer/coaching-admin-api/pkg/jobs"
	"github.com/gyanveer/coaching-admin-api/pkg/logger"
	corsmiddleware "github.com/gyanveer/coaching-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gyanveer/coaching-admin-api/pkg/middleware/requestid"
	"github.com/gyanveer/coaching-admin-api/pkg/storage"
)

// @title Coaching Admin API
// @version 1.0.0
// @description Student fee ledger, bulk spreadsheet import and center administration
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Stats.CacheTTL, logr, cacheRepo != nil)

	photoStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare exports directory", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	studentRepo := repository.NewStudentRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	userRepo := repository.NewUserRepository(db)

	statsSvc := service.NewStatsService(statsRepo, studentRepo, cacheSvc, logr)

	statsQueue := jobs.NewQueue("stats-sync", func(ctx context.Context, job jobs.Job) error {
		_, err := statsSvc.Sync(ctx)
		return err
	}, jobs.QueueConfig{
		Workers:    cfg.Stats.WorkerConcurrency,
		MaxRetries: cfg.Stats.WorkerRetries,
		Logger:     logr,
	})
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	statsQueue.Start(rootCtx)
	defer statsQueue.Stop()

	scheduleSync := func() {
		if err := statsQueue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "stats-sync"}); err != nil {
			logr.Warn("failed to enqueue stats sync")
		}
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, courseRepo, photoStore, validate, logr)
	ledgerSvc := service.NewLedgerService(ledgerRepo, studentRepo, validate, logr)
	importSvc := service.NewImportService(studentRepo, logr, scheduleSync)
	courseSvc := service.NewCourseService(courseRepo, studentRepo, validate, logr, scheduleSync)
	exportSvc := service.NewExportService(studentRepo, exportStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)
	certificateSvc := service.NewCertificateService(studentRepo, exportStore, signer, service.CertificateConfig{
		InstituteName: cfg.Certificates.InstituteName,
		TagLine:       cfg.Certificates.TagLine,
		SignatoryName: cfg.Certificates.SignatoryName,
	}, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc, metrics)
	importHandler := handler.NewImportHandler(importSvc, metrics)
	courseHandler := handler.NewCourseHandler(courseSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	exportHandler := handler.NewExportHandler(exportSvc, certificateSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)

	authed.GET("/students", studentHandler.List)
	authed.GET("/students/:registration", studentHandler.Get)
	authed.POST("/students", studentHandler.Create)
	authed.PUT("/students/:registration", studentHandler.Update)
	authed.POST("/students/:registration/photo", studentHandler.UploadPhoto)

	authed.POST("/students/:registration/installments",
		middleware.Audit(userRepo, models.AuditActionFeeCollect, "ledger"), ledgerHandler.CollectFee)
	authed.DELETE("/students/:registration/installments",
		middleware.Audit(userRepo, models.AuditActionInstallmentDelete, "ledger"), ledgerHandler.DeleteInstallment)

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.DELETE("/students/:registration",
		middleware.Audit(userRepo, models.AuditActionStudentDelete, "student"), ledgerHandler.DeleteStudent)
	admin.POST("/students/:registration/rekey",
		middleware.Audit(userRepo, models.AuditActionStudentRekey, "student"), ledgerHandler.Rekey)
	admin.POST("/imports/:format",
		middleware.Audit(userRepo, models.AuditActionImportRun, "import"), importHandler.Run)
	admin.POST("/courses/standardize",
		middleware.Audit(userRepo, models.AuditActionStandardizeFees, "course"), courseHandler.Standardize)
	admin.PUT("/courses/:name", courseHandler.Upsert)

	authed.GET("/courses", courseHandler.List)
	authed.GET("/stats", statsHandler.Get)
	admin.POST("/stats/sync", statsHandler.Sync)

	authed.POST("/exports/:kind", exportHandler.Generate)
	authed.POST("/students/:registration/certificate", exportHandler.Certificate)
	api.GET("/downloads/:token", exportHandler.Download)

	scheduler := cron.New()
	if cfg.Stats.SyncSchedule != "" {
		if _, err := scheduler.AddFunc(cfg.Stats.SyncSchedule, scheduleSync); err != nil {
			logr.Sugar().Warnw("invalid stats sync schedule", "schedule", cfg.Stats.SyncSchedule, "error", err)
		}
	}
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", cfg.Exports.CleanupInterval), exportSvc.Cleanup); err != nil {
		logr.Sugar().Warnw("failed to schedule export cleanup", "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}
