package routes

import (
	"time"

	"connect-service/internal/api/handlers"
	"connect-service/internal/api/middleware"
	"connect-service/internal/config"
	"connect-service/internal/repositories/postgres"
	"connect-service/internal/services"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Router struct {
	engine              *gin.Engine
	connectionHandler   *handlers.ConnectionHandler
	introductionHandler *handlers.IntroductionHandler
	userHandler         *handlers.UserHandler
	rateLimitMW         *middleware.RateLimitMiddleware
	authMW              *middleware.AuthMiddleware
}

func NewRouter(
	db *gorm.DB,
	redisClient *redis.Client,
	producer sarama.SyncProducer,
	cfg *config.Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	// Repositories
	connRepo := postgres.NewConnectionRepository(db)
	introRepo := postgres.NewIntroductionRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Services
	redisService := services.NewRedisService(redisClient)
	eventService := services.NewEventService(producer, redisClient, cfg.Kafka.Topic)
	connectionService := services.NewConnectionService(connRepo, userRepo, eventService)
	strengthService := services.NewStrengthService(connRepo, userRepo, cfg.Policy)
	suggestionService := services.NewSuggestionService(connRepo, userRepo, cfg.Policy)
	introductionService := services.NewIntroductionService(introRepo, userRepo, suggestionService, eventService, cfg.Policy)

	return &Router{
		engine:              engine,
		connectionHandler:   handlers.NewConnectionHandler(connectionService, strengthService, suggestionService),
		introductionHandler: handlers.NewIntroductionHandler(introductionService),
		userHandler:         handlers.NewUserHandler(userRepo),
		rateLimitMW:         middleware.NewRateLimitMiddleware(redisService),
		authMW:              middleware.NewAuthMiddleware(cfg.JWT.Secret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api/v1")

	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		connections := auth.Group("/connections")
		connections.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			connections.GET("", r.connectionHandler.ListConnections)
			connections.POST("", r.connectionHandler.CreateConnection)
			connections.GET("/requests", r.connectionHandler.ListConnectionRequests)
			connections.GET("/suggestions", r.connectionHandler.GetSuggestions)
			connections.GET("/status/:userId", r.connectionHandler.GetConnectionStatus)
			connections.GET("/mutual/:userId", r.connectionHandler.GetMutualConnections)
			connections.PUT("/:id/accept", r.connectionHandler.AcceptConnection)
			connections.PUT("/:id/reject", r.connectionHandler.RejectConnection)
			connections.DELETE("/:id", r.connectionHandler.RemoveConnection)
			connections.GET("/:id/strength", r.connectionHandler.GetConnectionStrength)
			connections.POST("/:id/interactions", r.connectionHandler.RecordInteraction)
		}

		introductions := auth.Group("/introductions")
		introductions.Use(r.rateLimitMW.RateLimit(50, time.Minute))
		{
			introductions.GET("", r.introductionHandler.ListIntroductions)
			introductions.POST("", r.introductionHandler.CreateIntroduction)
			introductions.PUT("/:id/respond", r.introductionHandler.RespondIntroduction)
			introductions.PUT("/:id/target-response", r.introductionHandler.RecordTargetResponse)
			introductions.DELETE("/:id", r.introductionHandler.CancelIntroduction)
		}

		users := auth.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("/profile", r.userHandler.GetProfile)
			users.GET("/:id", r.userHandler.GetUser)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
