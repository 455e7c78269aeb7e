package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/gyansort/gyansort-api/api/swagger"
	"github.com/gyansort/gyansort-api/internal/handler"
	"github.com/gyansort/gyansort-api/internal/middleware"
	"github.com/gyansort/gyansort-api/internal/models"
	"github.com/gyansort/gyansort-api/internal/repository"
	"github.com/gyansort/gyansort-api/internal/service"
	"github.com/gyansort/gyansort-api/pkg/cache"
	"github.com/gyansort/gyansort-api/pkg/config"
	"github.com/gyansort/gyansort-api/pkg/database"
	"github.com/gyansort/gyansort-api/pkg/logger"
	corsmiddleware "github.com/gyansort/gyansort-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gyansort/gyansort-api/pkg/middleware/requestid"
)

// @title GyanSort API
// @version 0.1.0
// @description Course marketplace backend: accounts, profiles and discussion forums
// @BasePath /api
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
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(db)
	forumRepo := repository.NewForumRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "gyansort-api",
	})
	profileSvc := service.NewProfileService(userRepo, logr)
	forumSvc := service.NewForumService(forumRepo, participantRepo, messageRepo, userRepo, cacheRepo, validate, logr, service.ForumConfig{
		CacheTTL:          cfg.Forum.CacheTTL,
		AllowedMIMEs:      cfg.Forum.AllowedMIMEs,
		MaxAttachmentSize: cfg.Forum.MaxAttachmentSize,
	})
	metricsSvc := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	forumHandler := handler.NewForumHandler(forumSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/students/register/", authHandler.RegisterStudent)
	api.POST("/students/login/", authHandler.LoginStudent)
	api.POST("/instructors/register/", authHandler.RegisterInstructor)
	api.POST("/instructors/login/", authHandler.LoginInstructor)
	api.POST("/token/refresh/", authHandler.Refresh)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.GET("/me/", authHandler.Me)

	students := authed.Group("", middleware.RequireRoles(models.RoleStudent))
	students.GET("/students/profile/", profileHandler.StudentProfile)
	students.PUT("/students/profile/", profileHandler.UpdateStudentProfile)

	instructors := authed.Group("", middleware.RequireRoles(models.RoleInstructor))
	instructors.GET("/instructors/profile/", profileHandler.InstructorProfile)
	instructors.PUT("/instructors/profile/", profileHandler.UpdateInstructorProfile)

	forums := authed.Group("/forums")
	forums.GET("/", forumHandler.List)
	forums.POST("/", forumHandler.Create)
	forums.GET("/participants/", forumHandler.Participants)
	forums.GET("/messages/", forumHandler.Messages)
	forums.POST("/messages/", forumHandler.PostMessage)
	forums.GET("/attachments/", forumHandler.Attachments)
	forums.POST("/attachments/", forumHandler.CreateAttachment)
	forums.GET("/:id/", forumHandler.Get)
	forums.DELETE("/:id/", forumHandler.Delete)
	forums.POST("/:id/join/", forumHandler.Join)
	forums.POST("/:id/leave/", forumHandler.Leave)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
