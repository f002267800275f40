// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Marga-Ghale/ora-crm-backend/internal/api"
	"github.com/Marga-Ghale/ora-crm-backend/internal/config"
	"github.com/Marga-Ghale/ora-crm-backend/internal/cron"
	"github.com/Marga-Ghale/ora-crm-backend/internal/db"
	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/seed"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
	"github.com/Marga-Ghale/ora-crm-backend/internal/socket"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	envErr := godotenv.Load()

	// ============================================
	// Load configuration
	// ============================================
	cfg, err := config.Load()
	if err != nil {
		logger.App().WithError(err).Fatal("Invalid configuration")
	}

	if err := logger.Init(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		Dir:        cfg.Log.Dir,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		logger.App().WithError(err).Fatal("Failed to initialize logging")
	}
	log := logger.App()
	if envErr != nil {
		log.Info("No .env file found, using environment variables")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	if cfg.MigrateOnStart {
		log.Info("Running database migrations...")
		if err := db.RunMigrations(cfg.MongoURI, cfg.MongoDatabase); err != nil {
			log.WithError(err).Fatal("Migration failed")
		}
		log.Info("Database migrations completed")
	}

	// ============================================
	// Initialize MongoDB
	// ============================================
	mongoDB, err := db.NewMongoDB(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongoDB.Close()

	repos := repository.NewRepositories(mongoDB.Database)
	log.Info("Repositories initialized")

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var (
		redisDB    *db.RedisDB
		statsCache service.StatsCache
		cachePing  api.Pinger
	)
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Failed to connect to Redis, continuing without cache")
		} else {
			defer redisDB.Close()
			statsCache = db.NewStatsCache(redisDB, cfg.DashboardCacheTTL)
			cachePing = redisDB
			log.Info("Redis cache enabled")
		}
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := socket.NewHub()
	go hub.Run(rootCtx)
	broadcaster := socket.NewBroadcaster(hub)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config: cfg,
		Repos:  repos,
		Events: broadcaster,
		Cache:  statsCache,
	})

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.SeedData {
		if err := seed.SeedData(rootCtx, repos, time.Now()); err != nil {
			log.WithError(err).Error("Seeding failed")
		}
	}

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	scheduler := cron.NewScheduler(services.Dashboard, repos.TaskRepo, broadcaster, cfg.Location)
	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("Failed to start scheduler")
	}
	defer scheduler.Stop()

	// ============================================
	// Create Router
	// ============================================
	r := api.NewRouter(api.RouterDeps{
		Config:   cfg,
		Services: services,
		Hub:      hub,
		Database: mongoDB,
		Cache:    cachePing,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	stop()

	log.Info("Server exited")
}
