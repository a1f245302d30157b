package main

import (
	"github.com/musacbusiness/linkedin-post-manager/internal/app"
	"github.com/musacbusiness/linkedin-post-manager/pkg/anthropic"
	"github.com/musacbusiness/linkedin-post-manager/pkg/cache"
	"github.com/musacbusiness/linkedin-post-manager/pkg/config"
	"github.com/musacbusiness/linkedin-post-manager/pkg/database"
	"github.com/musacbusiness/linkedin-post-manager/pkg/logger"
	"github.com/musacbusiness/linkedin-post-manager/pkg/queue"
	"github.com/musacbusiness/linkedin-post-manager/pkg/replicate"
	"github.com/musacbusiness/linkedin-post-manager/pkg/s3"
)

// @title           LinkedIn Post Manager API
// @version         1.0
// @description     Review, edit, approve, reject and schedule LinkedIn posts.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	generator, err := replicate.NewClient(cfg.ReplicateAPIToken)
	if err != nil {
		log.Error("Failed to create Replicate client: %v", err)
		panic(err)
	}

	reviser, err := anthropic.NewClient(cfg.AnthropicAPIKey)
	if err != nil {
		log.Error("Failed to create Anthropic client: %v", err)
		panic(err)
	}

	// Image archive and event broker are optional; run without them
	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Warn("S3 unavailable, generated images keep service URLs: %v", err)
		s3Client = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("RabbitMQ unavailable, lifecycle events will not be published: %v", err)
		queueClient = nil
	}

	app.Run(cfg, log, db, redisClient, s3Client, queueClient, generator, reviser)
}
