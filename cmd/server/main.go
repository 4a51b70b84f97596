package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hrishiii27/shopify-insights/config"
	"github.com/hrishiii27/shopify-insights/internal/api"
	"github.com/hrishiii27/shopify-insights/internal/broker"
	"github.com/hrishiii27/shopify-insights/internal/redisclient"
	"github.com/hrishiii27/shopify-insights/internal/scheduler"
	"github.com/hrishiii27/shopify-insights/internal/service"
	"github.com/hrishiii27/shopify-insights/internal/shopify"
	"github.com/hrishiii27/shopify-insights/internal/store"
	"github.com/hrishiii27/shopify-insights/internal/util"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting shopify-insights service")

	tp, err := util.InitTracer("shopify-insights", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	if err := db.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicSync)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	shopifyClient := shopify.NewClient(cfg.Shopify.APIVersion, cfg.Shopify.PageSize, cfg.Shopify.RequestTimeout)

	reconciler := service.NewReconciler(db)
	syncer := service.NewSyncer(db, shopifyClient, redisClient, reconciler, eventPublisher, cfg.Sync.LockTTL)
	analytics := service.NewAnalytics(db)

	syncScheduler := scheduler.NewScheduler(syncer, cfg.Sync.Interval)
	syncScheduler.Start(context.Background())

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(db, syncer, reconciler, analytics, redisClient,
		eventPublisher, cfg.Shopify.WebhookSecret, cfg.Sync.LogLimit)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	syncScheduler.Stop()

	log.Println("Server exited")
}
