package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	postHTTP "github.com/musacbusiness/linkedin-post-manager/internal/controller/http"
	"github.com/musacbusiness/linkedin-post-manager/internal/querycache"
	"github.com/musacbusiness/linkedin-post-manager/internal/repo/persistent"
	"github.com/musacbusiness/linkedin-post-manager/internal/usecase"
	"github.com/musacbusiness/linkedin-post-manager/pkg/config"
	"github.com/musacbusiness/linkedin-post-manager/pkg/logger"
	"github.com/musacbusiness/linkedin-post-manager/pkg/middleware"
	"github.com/musacbusiness/linkedin-post-manager/pkg/queue"
	"github.com/musacbusiness/linkedin-post-manager/pkg/s3"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/musacbusiness/linkedin-post-manager/docs" // Swagger docs
)

func Run(
	cfg *config.Config,
	log *logger.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	s3Client *s3.Client,
	queueClient *queue.Client,
	generator usecase.ImageGenerator,
	reviser usecase.ContentReviser,
) {
	// Initialize repository and cache
	postRepo := persistent.NewPostRepository(db)
	queryCache := querycache.New(cfg.CacheTTLAllPosts, cfg.CacheTTLFiltered)

	// S3 and RabbitMQ are optional collaborators; the use case is nil-safe
	var archiver usecase.ImageArchiver
	if s3Client != nil {
		archiver = s3Client
	}
	var events usecase.EventPublisher
	if queueClient != nil {
		events = queueClient
	}

	postUseCase := usecase.NewPostUseCase(
		postRepo, queryCache, generator, reviser, archiver, events, log,
		cfg.GenerationTimeout, cfg.RevisionTimeout,
	)

	postHandler := postHTTP.NewPostHandler(postUseCase, log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(redisClient, 100, time.Minute))

	{
		api.GET("/posts", postHandler.ListPosts)
		api.GET("/posts/search", postHandler.SearchPosts)
		api.GET("/posts/stats", postHandler.GetStats)
		api.GET("/posts/:id", postHandler.GetPost)
		api.POST("/posts", postHandler.CreatePost)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.DeletePost)
		api.POST("/posts/:id/approve", postHandler.ApprovePost)
		api.POST("/posts/:id/reject", postHandler.RejectPost)
		api.POST("/posts/:id/generate-image", postHandler.GenerateImage)
		api.POST("/posts/:id/revise", postHandler.RevisePost)
		api.POST("/posts/batch", postHandler.BatchApply)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Post manager starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down post manager...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	// Close RabbitMQ connection
	if queueClient != nil {
		queueClient.Close()
	}

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Post manager exited")
}
