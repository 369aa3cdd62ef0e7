package main

import (
	"context"
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
	"go.uber.org/zap"

	_ "github.com/sncann/timetable-api/api/swagger"
	"github.com/sncann/timetable-api/internal/handler"
	"github.com/sncann/timetable-api/internal/middleware"
	"github.com/sncann/timetable-api/internal/repository"
	"github.com/sncann/timetable-api/internal/service"
	"github.com/sncann/timetable-api/pkg/cache"
	"github.com/sncann/timetable-api/pkg/config"
	"github.com/sncann/timetable-api/pkg/database"
	"github.com/sncann/timetable-api/pkg/logger"
	corsmiddleware "github.com/sncann/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sncann/timetable-api/pkg/middleware/requestid"
	"github.com/sncann/timetable-api/pkg/storage"
)

// @title Timetable API
// @version 1.0.0
// @description School weekly timetable generator: configurations, grid generation, clash detection and exports
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()
	validate := validator.New()

	var cacheService *service.CacheService
	if cfg.Scheduler.ClashCacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, clash cache disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Scheduler.ClashCacheTTL, logr, true)
		}
	}

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	configRepo := repository.NewConfigRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	configService := service.NewConfigService(configRepo, cacheService, validate, logr)
	timetableService := service.NewTimetableService(configRepo, timetableRepo, cacheService, metricsService, validate, logr, cfg.Scheduler.ClashCacheTTL, cfg.Scheduler.SlotCap)
	exportService := service.NewExportService(configRepo, timetableRepo, store, signer, metricsService, validate, logr, service.ExportConfig{
		WorkerConcurrency: cfg.Exports.WorkerConcurrency,
		WorkerRetries:     cfg.Exports.WorkerRetries,
		ArtifactTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval:   cfg.Exports.CleanupInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportService.Start(ctx)
	defer exportService.Stop()

	authHandler := handler.NewAuthHandler(authService)
	configHandler := handler.NewConfigHandler(configService)
	timetableHandler := handler.NewTimetableHandler(timetableService)
	exportHandler := handler.NewExportHandler(exportService)
	systemHandler := handler.NewSystemHandler(db, metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", systemHandler.Health)
	r.GET("/ready", systemHandler.Ready)
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/exports/download/:token", exportHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/status", systemHandler.Status)

		protected.GET("/configs", configHandler.List)
		protected.POST("/configs", configHandler.Create)
		protected.POST("/configs/import", exportHandler.ImportSettings)
		protected.GET("/configs/:id", configHandler.Get)
		protected.PUT("/configs/:id", configHandler.Update)
		protected.DELETE("/configs/:id", configHandler.Delete)
		protected.GET("/configs/:id/settings", exportHandler.ExportSettings)
		protected.DELETE("/configs/:id/subjects/:name", timetableHandler.RemoveSubject)

		protected.GET("/configs/:id/timetables", timetableHandler.List)
		protected.POST("/configs/:id/timetables", timetableHandler.Save)
		protected.POST("/configs/:id/timetables/generate", timetableHandler.Generate)
		protected.POST("/configs/:id/clashes/check", timetableHandler.ClashCheck)
		protected.GET("/configs/:id/clashes/teachers", timetableHandler.TeacherClashes)

		protected.GET("/timetables/:id", timetableHandler.Get)
		protected.DELETE("/timetables/:id", timetableHandler.Delete)
		protected.PATCH("/timetables/:id/cells", timetableHandler.UpdateCell)
		protected.POST("/timetables/:id/exports", exportHandler.Enqueue)

		protected.GET("/exports/:id", exportHandler.Job)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down", zap.String("reason", "signal received"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
