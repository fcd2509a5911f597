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

	"scanbatch-rest-api/internal/cache"
	"scanbatch-rest-api/internal/config"
	"scanbatch-rest-api/internal/handler"
	"scanbatch-rest-api/internal/middleware"
	"scanbatch-rest-api/internal/repository"
	"scanbatch-rest-api/internal/router"
	"scanbatch-rest-api/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting ScanBatch API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	scanRepo, err := openScanRepository(&cfg.ScanDB)
	if err != nil {
		log.Fatalf("Failed to initialize %s scan store: %v", cfg.ScanDB.Backend(), err)
	}
	defer scanRepo.Close()
	log.Printf("%s scan repository initialized", cfg.ScanDB.Backend())

	historyCache, cacheType := openCache(&cfg.Cache)
	if historyCache != nil {
		defer historyCache.Close()
	}

	// Initialize services
	scanService := service.NewScanServiceWithCache(scanRepo, historyCache, cfg.Cache.TTL)

	// Initialize handlers
	healthHandler := handler.New(scanService, cfg.App.Version)
	scanHandler := handler.NewScanHandler(scanService)
	adminHandler := handler.NewAdminHandler(scanService, cacheType)

	if cfg.App.LoginKey == "" && !cfg.App.IsDevelopment() {
		log.Printf("Warning: LOGIN_KEY not set in %s, admin routes are unprotected", cfg.App.Environment)
	}

	// Create router
	r := router.New(router.Config{
		Handler:         healthHandler,
		ScanHandler:     scanHandler,
		AdminHandler:    adminHandler,
		AdminMiddleware: middleware.NewAdminKeyMiddleware(cfg.App.LoginKey),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}

// openScanRepository builds the scan store selected by SCAN_DB_TYPE.
func openScanRepository(cfg *config.ScanDBConfig) (repository.ScanRepository, error) {
	switch cfg.Backend() {
	case "mongodb":
		return repository.NewMongoDBScanRepository(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case "postgres":
		return repository.NewPostgresScanRepository(cfg.PostgresDSN())
	case "mysql":
		return repository.NewMySQLScanRepository(cfg.MySQLDSN())
	case "memory":
		log.Println("Warning: memory scan store selected, scans are lost on restart")
		return repository.NewMemoryScanRepository(), nil
	default: // sqlite
		return repository.NewSQLiteScanRepository(cfg.Path)
	}
}

// openCache builds the history cache. Redis failures degrade to the
// in-process cache so the API still starts.
func openCache(cfg *config.CacheConfig) (cache.Cache, string) {
	switch cfg.Type {
	case "none", "":
		log.Println("History cache disabled")
		return nil, "none"
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddress(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err == nil {
			log.Println("Redis history cache initialized")
			return redisCache, "redis"
		}
		log.Printf("Warning: Redis connection failed, using memory cache: %v", err)
	}

	log.Println("Memory history cache initialized")
	return cache.NewMemoryCache(time.Minute), "memory"
}
