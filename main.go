package main

import (
	"context"

	"github.com/chatly/chat_management_backend/cache"
	"github.com/chatly/chat_management_backend/config"
	"github.com/chatly/chat_management_backend/controllers"
	"github.com/chatly/chat_management_backend/database"
	"github.com/chatly/chat_management_backend/docs"
	"github.com/chatly/chat_management_backend/middleware"
	"github.com/chatly/chat_management_backend/repository"
	"github.com/chatly/chat_management_backend/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Chat Management API
// @version         1.0
// @description     API Server for the chat-room management service
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	// Initialize database
	db := database.Connect(cfg)
	database.Migrate(db)

	// Initialize redis-backed cache; the service degrades to uncached
	// operation when redis is unreachable.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Warn("redis unreachable, caching degraded")
	} else {
		logrus.Info("redis connection established")
	}
	cacheClient := cache.New(rdb)

	// Wire repositories, services and controllers
	roomRepo := repository.NewGormRoomRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)

	roomService := services.NewRoomService(roomRepo, cacheClient)
	notificationService := services.NewNotificationService(notificationRepo)
	aiService := services.NewAIService(roomService, cacheClient, cfg.AIAPIKey, cfg.AIAPIURL)

	roomController := controllers.NewRoomController(roomService, notificationService)
	notificationController := controllers.NewNotificationController(notificationService)
	aiController := controllers.NewAIController(aiService)

	// Set up Swagger info
	docs.SwaggerInfo.Title = "Chat Management API"
	docs.SwaggerInfo.Description = "API Server for the chat-room management service"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Schemes = []string{"http"}

	// Set up router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		// Room routes
		api.GET("/rooms", roomController.GetRooms)
		api.POST("/rooms", roomController.CreateRoom)
		api.GET("/rooms/:id", roomController.GetRoom)
		api.PUT("/rooms/:id", roomController.UpdateRoom)
		api.POST("/rooms/:id/participants", roomController.AddParticipant)
		api.DELETE("/rooms/:id/participants", roomController.RemoveParticipant)
		api.POST("/rooms/:id/invite-code", roomController.GenerateInviteCode)
		api.POST("/rooms/:id/join", roomController.JoinRoom)
		api.GET("/rooms/:id/ai-settings", roomController.GetAISettings)

		// AI routes
		api.POST("/ai/generate", aiController.Generate)
		api.DELETE("/ai/context/:roomId", aiController.ResetContext)

		// Notification routes
		api.GET("/notifications", notificationController.GetNotifications)
		api.PUT("/notifications/:id/read", notificationController.MarkAsRead)
		api.PUT("/notifications/read-all", notificationController.MarkAllAsRead)
		api.DELETE("/notifications/:id", notificationController.DeleteNotification)
	}

	// Start server
	logrus.Infof("Server running on port %s", cfg.Port)
	logrus.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}
