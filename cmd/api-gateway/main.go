package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MrJittiPat/Timetable2/api/swagger"
	"github.com/MrJittiPat/Timetable2/internal/handler"
	internalmiddleware "github.com/MrJittiPat/Timetable2/internal/middleware"
	"github.com/MrJittiPat/Timetable2/internal/models"
	"github.com/MrJittiPat/Timetable2/internal/repository"
	"github.com/MrJittiPat/Timetable2/internal/scheduler"
	"github.com/MrJittiPat/Timetable2/internal/service"
	"github.com/MrJittiPat/Timetable2/pkg/cache"
	"github.com/MrJittiPat/Timetable2/pkg/config"
	"github.com/MrJittiPat/Timetable2/pkg/database"
	"github.com/MrJittiPat/Timetable2/pkg/logger"
	corsmiddleware "github.com/MrJittiPat/Timetable2/pkg/middleware/cors"
	reqidmiddleware "github.com/MrJittiPat/Timetable2/pkg/middleware/requestid"
	"github.com/MrJittiPat/Timetable2/pkg/storage"
)

// @title Timetable API
// @version 1.0.0
// @description Greedy class timetable allocation with weekly grids and exports
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	policy, err := scheduler.ParsePolicy(cfg.Scheduler.TeacherPolicy)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open user database: %w", err)
	}
	defer db.Close()

	authSvc := service.NewAuthService(repository.NewUserRepository(db), validator.New(), logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "timetable-api",
		BootstrapUsername: cfg.Auth.BootstrapUsername,
		BootstrapPassword: cfg.Auth.BootstrapPassword,
	})
	if err := authSvc.EnsureBootstrapUser(ctx); err != nil {
		return fmt.Errorf("bootstrap users: %w", err)
	}

	var redisClient *redis.Client
	if client, err := cache.NewRedis(ctx, cfg.Redis); err == nil {
		redisClient = client
		defer redisClient.Close()
	} else if !errors.Is(err, cache.ErrDisabled) {
		logr.Warn("redis unavailable, schedule cache limited to this process", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), metricsSvc, cfg.Scheduler.CacheTTL, logr, cfg.Scheduler.CacheEnabled)

	fs := afero.NewOsFs()
	scheduleSvc := service.NewScheduleService(
		repository.NewCatalogRepository(fs, cfg.Scheduler.DataDir, logr),
		repository.NewScheduleRepository(storage.NewFileStore(fs), cfg.Scheduler.OutputFile),
		cacheSvc,
		metricsSvc,
		logr,
		service.ScheduleConfig{
			Options: scheduler.Options{
				BreakPeriod:      cfg.Scheduler.BreakPeriod,
				RegularThreshold: cfg.Scheduler.RegularThreshold,
				TeacherPolicy:    policy,
			},
			CacheTTL: cfg.Scheduler.CacheTTL,
		},
	)
	scheduleSvc.Start(ctx)
	defer scheduleSvc.Stop()

	timetableSvc := service.NewTimetableService(scheduleSvc, service.TimetableConfig{Days: cfg.Timetable.Days, Periods: cfg.Timetable.Periods})
	signer := storage.NewSignedURLSigner(cfg.Downloads.SignedURLSecret, cfg.Downloads.SignedURLTTL)
	exportSvc := service.NewTimetableExportService(timetableSvc, scheduleSvc, signer, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authHandler := handler.NewAuthHandler(authSvc)
	api.POST("/auth/login", authHandler.Login)

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, exportSvc, cfg.APIPrefix+"/schedule/files")
	api.GET("/schedule/files/:token", scheduleHandler.File)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	secured.GET("/auth/me", authHandler.Me)
	secured.GET("/metrics/summary", metricsHandler.Summary)

	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc)
	secured.GET("/timetable", timetableHandler.Views)
	secured.GET("/timetable/:kind/:id", timetableHandler.Entity)
	secured.GET("/timetable/:kind/:id/export", timetableHandler.Export)

	schedule := secured.Group("/schedule")
	schedule.POST("/runs",
		internalmiddleware.RequireRoles(models.RoleAdmin),
		internalmiddleware.Audit(logr, "schedule.run"),
		scheduleHandler.Run,
	)
	schedule.GET("/runs/latest", scheduleHandler.Latest)
	schedule.GET("/jobs/:id", scheduleHandler.Job)
	schedule.GET("/verify", scheduleHandler.Verify)
	schedule.GET("/download", scheduleHandler.Download)
	schedule.POST("/download-link", internalmiddleware.Audit(logr, "schedule.download_link"), scheduleHandler.DownloadLink)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
