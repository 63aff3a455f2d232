package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"studentportal/internal/cloudinary"
	"studentportal/internal/config"
	"studentportal/internal/queue"
	"studentportal/internal/roadmap"
	"studentportal/internal/store"
)

// Worker consumes queue messages and uploads staged resumes to Cloudinary.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "portal:resumes")
	}

	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	} else {
		log.Println("WARNING: Cloudinary not configured, resume uploads will fail")
	}

	processor := roadmap.NewProcessor(roadmap.NewRepository(db.Client), redisClient, cdnClient)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != roadmap.MsgResume {
			continue
		}

		id := string(msg.Body)
		log.Printf("processing resume for roadmap %s", id)

		if err := processor.Process(ctx, id); err != nil {
			log.Printf("resume processing for %s failed: %v", id, err)
			continue
		}
		log.Printf("roadmap %s processed successfully", id)
	}

	log.Println("worker stopped")
}
