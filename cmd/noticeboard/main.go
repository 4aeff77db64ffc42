package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/api/swagger"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/events"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/handler"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/middleware"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/repository"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/service"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/cache"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/config"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/database"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/logger"
	corsmiddleware "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/middleware/cors"
	reqidmiddleware "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/middleware/requestid"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/storage"
)

// @title Campus Noticeboard API
// @version 1.0.0
// @description Digital noticeboard with staff publishing, admin approval and a public realtime feed
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	store, err := storage.NewLocalStorage(cfg.Storage.BaseDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare upload storage", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	hub := events.NewHub(logr, metricsSvc.SetStreamSubscribers)
	defer hub.Close()

	validate := validator.New()

	noticeRepo := repository.NewNoticeRepository(db)
	userRepo := repository.NewUserRepository(db)
	feedCache := repository.NewRedisCache(redisClient)

	noticeSvc := service.NewNoticeService(noticeRepo, feedCache, hub, validate, logr, cfg.Feed.CacheTTL)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	identitySvc := service.NewIdentityService(userRepo, logr)
	attachmentSvc := service.NewAttachmentService(store, cfg.Storage, logr)
	exportSvc := service.NewExportService(noticeRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	noticeHandler := handler.NewNoticeHandler(noticeSvc, attachmentSvc, exportSvc)
	feedHandler := handler.NewFeedHandler(noticeSvc, hub, metricsSvc)
	adminHandler := handler.NewAdminHandler(identitySvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static("/uploads", store.BaseDir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.GET("/feed", feedHandler.Feed)
	api.GET("/feed/stream", feedHandler.Stream)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	notices := api.Group("/notices", middleware.JWT(authSvc), middleware.RequireApproved(identitySvc))
	{
		notices.GET("", noticeHandler.List)
		notices.POST("", noticeHandler.Create)
		notices.GET("/stats", noticeHandler.Stats)
		notices.POST("/attachments", noticeHandler.UploadAttachments)
		notices.GET("/export.pdf", noticeHandler.ExportPDF)
		notices.GET("/export.csv", noticeHandler.ExportCSV)
		notices.GET("/:id", noticeHandler.Get)
		notices.PUT("/:id", noticeHandler.Update)
		notices.DELETE("/:id", noticeHandler.Delete)
		notices.POST("/:id/archive", noticeHandler.Archive)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireAdmin(identitySvc))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
