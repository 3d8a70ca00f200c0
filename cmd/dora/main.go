package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doraapp/dora/internal/chatbot"
	"github.com/doraapp/dora/internal/database"
	"github.com/doraapp/dora/internal/handler"
	"github.com/doraapp/dora/internal/images"
	"github.com/doraapp/dora/internal/logging"
	"github.com/doraapp/dora/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("DORA_LOG_LEVEL"), os.Getenv("DORA_LOG_FORMAT"))

	port := os.Getenv("DORA_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DORA_DB_PATH")
	if dbPath == "" {
		dbPath = "dora.db"
	}

	secret := os.Getenv("DORA_JWT_SECRET")
	if secret == "" {
		log.Fatal("DORA_JWT_SECRET is required")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	imgCfg := images.Config{
		Bucket:    os.Getenv("DORA_IMAGES_BUCKET"),
		Region:    os.Getenv("DORA_IMAGES_REGION"),
		Endpoint:  os.Getenv("DORA_IMAGES_ENDPOINT"),
		AccessKey: os.Getenv("DORA_IMAGES_ACCESS_KEY"),
		SecretKey: os.Getenv("DORA_IMAGES_SECRET_KEY"),
	}
	var imageStore handler.ImageLister
	if imgCfg.Configured() {
		imageStore = images.NewStore(imgCfg)
		logger.Info("image store configured", "bucket", imgCfg.Bucket)
	}

	assistant := chatbot.NewService(chatbot.Config{
		Endpoint: os.Getenv("DORA_ASSISTANT_ENDPOINT"),
		APIKey:   os.Getenv("DORA_ASSISTANT_API_KEY"),
	})
	if assistant.Configured() {
		logger.Info("assistant configured")
	}

	srv := server.New(db, server.Config{
		JWTSecret: []byte(secret),
		Images:    imageStore,
		Assistant: assistant,
	}, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Periodic rate-limiter cleanup
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("dora api listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
