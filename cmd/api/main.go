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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Sallvainian/teaching-tools-api/api/swagger"
	"github.com/Sallvainian/teaching-tools-api/internal/handler"
	"github.com/Sallvainian/teaching-tools-api/internal/middleware"
	"github.com/Sallvainian/teaching-tools-api/internal/models"
	"github.com/Sallvainian/teaching-tools-api/internal/repository"
	"github.com/Sallvainian/teaching-tools-api/internal/service"
	"github.com/Sallvainian/teaching-tools-api/pkg/cache"
	"github.com/Sallvainian/teaching-tools-api/pkg/config"
	"github.com/Sallvainian/teaching-tools-api/pkg/database"
	"github.com/Sallvainian/teaching-tools-api/pkg/jobs"
	"github.com/Sallvainian/teaching-tools-api/pkg/logger"
	corsmiddleware "github.com/Sallvainian/teaching-tools-api/pkg/middleware/cors"
	reqidmiddleware "github.com/Sallvainian/teaching-tools-api/pkg/middleware/requestid"
)

// @title Teaching Tools API
// @version 0.1.0
// @description File-sharing and permission backend for the Teaching Tools dashboard
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, class cache disabled", "error", err)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close()
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Sharing.ClassCacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	classRepo := repository.NewClassRepository(db)
	permRepo := repository.NewPermissionRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	sharingSvc := service.NewSharingService(permRepo, fileRepo, classRepo, userRepo, cacheSvc, cfg.Sharing.ClassCacheTTL, nil, logr)

	sweeper := jobs.NewQueue("sharing-maintenance", func(ctx context.Context, job jobs.Job) error {
		removed, err := sharingSvc.PurgeExpiredGrants(ctx)
		if err != nil {
			return err
		}
		metricsSvc.AddGrantsPurged(removed)
		return nil
	}, jobs.QueueConfig{Workers: cfg.Sharing.ExpirySweepWorkers, Logger: logr})
	sweeper.Start(ctx)
	defer sweeper.Stop()

	go func() {
		ticker := time.NewTicker(cfg.Sharing.ExpirySweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sweeper.Enqueue(jobs.Job{Type: "purge_expired_grants"}); err != nil {
					logr.Warn("failed to enqueue expiry sweep", zap.Error(err))
				}
			}
		}
	}()

	authHandler := handler.NewAuthHandler(authSvc)
	sharingHandler := handler.NewSharingHandler(sharingSvc)
	maintenanceHandler := handler.NewMaintenanceHandler(sharingSvc, metricsSvc)
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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/files/:id/permission", sharingHandler.MyPermission)
		authed.GET("/files/:id/permissions", sharingHandler.List)
		authed.GET("/files/:id/permissions/export", sharingHandler.Export)
		authed.POST("/files/:id/share", sharingHandler.Share)
		authed.DELETE("/permissions/:id", sharingHandler.Remove)
		authed.GET("/shared-with-me", sharingHandler.SharedWithMe)
		authed.GET("/classes/available", sharingHandler.AvailableClasses)
		authed.POST("/maintenance/purge-expired",
			middleware.RequireRoles(models.RoleAdmin), maintenanceHandler.PurgeExpired)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
