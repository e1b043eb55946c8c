package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sanumxxx/timetable-api/api/swagger"
	"github.com/sanumxxx/timetable-api/internal/handler"
	"github.com/sanumxxx/timetable-api/internal/middleware"
	"github.com/sanumxxx/timetable-api/internal/models"
	"github.com/sanumxxx/timetable-api/internal/repository"
	"github.com/sanumxxx/timetable-api/internal/service"
	"github.com/sanumxxx/timetable-api/pkg/cache"
	"github.com/sanumxxx/timetable-api/pkg/config"
	"github.com/sanumxxx/timetable-api/pkg/database"
	"github.com/sanumxxx/timetable-api/pkg/logger"
	corsmiddleware "github.com/sanumxxx/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sanumxxx/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description University timetable viewer and editor with conflict-aware rescheduling
// @BasePath /api/v1
// @schemes http
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()

	// Redis is optional: the cache repository degrades to a no-op when
	// the client is nil.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, week-view cache disabled", zap.Error(err))
		redisClient = nil
	}

	lessonRepo := repository.NewLessonRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, cfg.Cache.TTL, cfg.Cache.Enabled && redisClient != nil, logr, metricsSvc)

	lessonSvc := service.NewLessonService(lessonRepo, cacheSvc, cfg.Schedule.SubgroupAware, validate, logr)
	slotSvc := service.NewTimeSlotService(slotRepo, cfg.Slots.CacheTTL, validate, logr)
	availabilitySvc := service.NewAvailabilityService(lessonRepo, validate, logr)
	rescheduleSvc := service.NewRescheduleService(
		lessonRepo,
		availabilitySvc,
		slotSvc,
		lessonSvc,
		service.RescheduleOptions{SubgroupAware: cfg.Schedule.SubgroupAware, TopOptions: cfg.Schedule.TopOptions},
		validate,
		logr,
		metricsSvc,
	)
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.Issuer, validate, logr)
	exportSvc := service.NewExportService(lessonSvc, slotSvc, cfg.Export.Title, logr)

	bootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authSvc.EnsureAdmin(bootCtx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logr.Warn("admin bootstrap failed", zap.Error(err))
	}
	cancel()

	authHandler := handler.NewAuthHandler(authSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc, exportSvc)
	slotHandler := handler.NewTimeSlotHandler(slotSvc)
	rescheduleHandler := handler.NewRescheduleHandler(rescheduleSvc, lessonSvc, slotSvc, availabilitySvc)

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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	schedule := api.Group("/schedule")
	schedule.GET("", lessonHandler.List)
	schedule.GET("/week", lessonHandler.Week)
	schedule.GET("/export", lessonHandler.Export)
	schedule.GET("/:id", lessonHandler.Get)
	schedule.POST("/check_availability", rescheduleHandler.CheckAvailability)

	editing := schedule.Group("", middleware.JWT(authSvc), middleware.Editors())
	editing.POST("", lessonHandler.Create)
	editing.PUT("/:id", lessonHandler.Update)
	editing.DELETE("/:id", lessonHandler.Delete)
	editing.POST("/:id/move_options", rescheduleHandler.MoveOptions)
	editing.POST("/:id/move", rescheduleHandler.CommitMove)
	editing.GET("/:id/swap_candidates", rescheduleHandler.SwapCandidates)
	editing.POST("/swap", rescheduleHandler.Swap)
	editing.POST("/group_move", rescheduleHandler.GroupMove)
	editing.POST("/find_optimal_time", rescheduleHandler.FindOptimalTime)

	slots := api.Group("/time_slots")
	slots.GET("", slotHandler.List)
	slotAdmin := slots.Group("", middleware.JWT(authSvc), middleware.RBAC(models.RoleAdmin))
	slotAdmin.POST("", slotHandler.Create)
	slotAdmin.PUT("/:id", slotHandler.Update)
	slotAdmin.DELETE("/:id", slotHandler.Delete)
	slotAdmin.POST("/reorder", slotHandler.Reorder)
	slotAdmin.POST("/reset", slotHandler.Reset)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
