package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/rosterd/rosterd-api/api/swagger"
	"github.com/rosterd/rosterd-api/internal/handler"
	"github.com/rosterd/rosterd-api/internal/middleware"
	"github.com/rosterd/rosterd-api/internal/repository"
	"github.com/rosterd/rosterd-api/internal/service"
	"github.com/rosterd/rosterd-api/pkg/cache"
	"github.com/rosterd/rosterd-api/pkg/config"
	"github.com/rosterd/rosterd-api/pkg/database"
	"github.com/rosterd/rosterd-api/pkg/logger"
	corsmiddleware "github.com/rosterd/rosterd-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rosterd/rosterd-api/pkg/middleware/requestid"
	"github.com/rosterd/rosterd-api/pkg/storage"
)

// @title Rosterd API
// @version 1.0.0
// @description Weekly shift assignment engine with availability-aware scheduling
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("postgres connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("export storage init failed", "error", err)
	}
	backupStore, err := storage.NewLocalStorage(cfg.Backups.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("backup storage init failed", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	workerRepo := repository.NewWorkerRepository(db)
	workplaceRepo := repository.NewWorkplaceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	workplaceSvc := service.NewWorkplaceService(workplaceRepo, validate, logr)
	workerSvc := service.NewWorkerService(workerRepo, workplaceRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(
		workerRepo,
		workplaceRepo,
		scheduleRepo,
		cacheRepo,
		metricsSvc,
		validate,
		logr,
		service.ScheduleServiceConfig{
			WorkStudyTargetHours: cfg.Scheduler.WorkStudyTargetHours,
			LatestScheduleTTL:    cfg.Scheduler.LatestScheduleTTL,
		},
	)
	replacementSvc := service.NewReplacementService(
		workerRepo,
		cacheRepo,
		metricsSvc,
		validate,
		logr,
		service.ReplacementServiceConfig{
			CacheTTL:             cfg.Replacements.CacheTTL,
			WorkStudyTargetHours: cfg.Scheduler.WorkStudyTargetHours,
		},
	)
	settingsSvc := service.NewSettingsService(settingsRepo, validate, logr)
	exportSvc := service.NewExportService(scheduleRepo, settingsRepo, exportStore, logr, service.ExportServiceConfig{
		WorkerConcurrency: cfg.Exports.WorkerConcurrency,
		WorkerRetries:     cfg.Exports.WorkerRetries,
		ResultTTL:         cfg.Exports.ResultTTL,
	})
	backupSvc := service.NewBackupService(workerRepo, workplaceRepo, scheduleRepo, settingsRepo, backupStore, logr)

	exportSvc.Start(ctx)
	defer exportSvc.Stop()

	workplaceHandler := handler.NewWorkplaceHandler(workplaceSvc)
	workerHandler := handler.NewWorkerHandler(workerSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	replacementHandler := handler.NewReplacementHandler(replacementSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	backupHandler := handler.NewBackupHandler(backupSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/status", metricsHandler.Status)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		workplaces := api.Group("/workplaces")
		{
			workplaces.GET("", workplaceHandler.List)
			workplaces.POST("", workplaceHandler.Upsert)
			workplaces.GET("/:name", workplaceHandler.Get)
			workplaces.DELETE("/:name", workplaceHandler.Delete)

			workplaces.GET("/:name/workers", workerHandler.List)
			workplaces.POST("/:name/workers", workerHandler.Create)
			workplaces.POST("/:name/workers/import", workerHandler.Import)

			workplaces.GET("/:name/schedules", scheduleHandler.List)
			workplaces.POST("/:name/schedules", scheduleHandler.Generate)
			workplaces.GET("/:name/schedules/latest", scheduleHandler.Latest)

			workplaces.GET("/:name/replacements", replacementHandler.Find)
		}

		workers := api.Group("/workers")
		{
			workers.GET("/:id", workerHandler.Get)
			workers.PUT("/:id", workerHandler.Update)
			workers.DELETE("/:id", workerHandler.Delete)
		}

		schedules := api.Group("/schedules")
		{
			schedules.GET("/:id", scheduleHandler.Get)
			schedules.DELETE("/:id", scheduleHandler.Delete)
			schedules.POST("/:id/reassign", scheduleHandler.Reassign)
			schedules.GET("/:id/violations", scheduleHandler.Violations)
			schedules.POST("/:id/exports", exportHandler.Create)
		}

		exports := api.Group("/exports")
		{
			exports.GET("/jobs/:jobId", exportHandler.Status)
			exports.GET("/files", exportHandler.ListFiles)
			exports.GET("/files/:filename", exportHandler.Download)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", settingsHandler.List)
			settings.GET("/:key", settingsHandler.Get)
			settings.PUT("/:key", settingsHandler.Set)
		}

		backups := api.Group("/backups")
		{
			backups.POST("", backupHandler.Create)
			backups.GET("", backupHandler.List)
			backups.GET("/:filename", backupHandler.Download)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
