package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/fairwaylabs/swinglab/internal/analyzer"
	"github.com/fairwaylabs/swinglab/internal/config"
	"github.com/fairwaylabs/swinglab/internal/handler"
	"github.com/fairwaylabs/swinglab/internal/health"
	"github.com/fairwaylabs/swinglab/internal/inference"
	"github.com/fairwaylabs/swinglab/internal/repository"
	"github.com/fairwaylabs/swinglab/internal/websocket"

	_ "github.com/fairwaylabs/swinglab/docs" // Swagger docs
)

// @title SwingLab Analysis API
// @version 1.0
// @description API for analyzing golf swing pose sequences.
// @description
// @description Uploads of 2D pose landmark sequences are normalized for camera
// @description angle, reduced to a biomechanical feature vector, classified into
// @description swing plane categories and returned with ranked flaws and
// @description coaching recommendations.

// @contact.name API Support
// @contact.email support@fairwaylabs.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http

func main() {
	log.Printf("[INFO] Starting swing analysis server...")

	cfg := config.Load()
	log.Printf("[INFO] Configuration loaded: http_port=%s grpc_port=%s model_dir=%s",
		cfg.HTTPPort, cfg.GRPCPort, cfg.ModelDir)

	// Model artifacts are mandatory: a server without a valid classifier
	// must not come up.
	model, err := inference.Load(cfg.ModelDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load model artifacts: %v", err)
	}
	log.Printf("[INFO] Model loaded: %d labels %v", len(model.Labels), model.Labels)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cache := repository.NewRedisReportCache(redisClient)

	ctx := context.Background()
	if err := cache.Ping(ctx); err != nil {
		log.Fatalf("[FATAL] Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
	}
	log.Printf("[INFO] Connected to Redis at %s", cfg.RedisAddr)
	defer redisClient.Close()

	store, err := repository.NewPostgresSwingStore(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect to PostgreSQL: %v", err)
	}
	log.Printf("[INFO] Connected to PostgreSQL")
	defer store.Close()

	hub := websocket.NewHub()
	go hub.Run()

	swingAnalyzer := analyzer.New(model, cfg.AnalysisTimeout, cfg.MaxFrames)

	httpHandler := handler.NewHTTPHandler(
		swingAnalyzer,
		cache,
		store,
		hub,
		time.Duration(cfg.ReportTTLSeconds)*time.Second,
	)

	router := mux.NewRouter()
	httpHandler.RegisterRoutes(router)
	router.HandleFunc("/ws", hub.HandleWebSocket)

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleFunc("/debug/stats", func(w http.ResponseWriter, r *http.Request) {
		saved, _ := store.CountSwings(r.Context())
		stats := map[string]interface{}{
			"pipeline":     swingAnalyzer.GetStats(),
			"saved_swings": saved,
			"ws_clients":   hub.ClientCount(),
			"timestamp":    time.Now().Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      enableCORS(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewHealthServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	grpcAddr := fmt.Sprintf(":%s", cfg.GRPCPort)
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatalf("[FATAL] Failed to listen on %s: %v", grpcAddr, err)
	}

	serverErrChan := make(chan error, 2)

	go func() {
		log.Printf("[INFO] gRPC health server listening on %s", grpcAddr)
		if err := grpcServer.Serve(listener); err != nil {
			serverErrChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		log.Printf("[INFO] HTTP server listening on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	healthServer.SetServingStatus("")
	healthServer.SetServingStatus(health.ServiceName)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrChan:
		log.Printf("[ERROR] Server error: %v", err)

	case sig := <-shutdownChan:
		log.Printf("[INFO] Received signal %v, starting graceful shutdown...", sig)

		healthServer.SetNotServingStatus("")
		healthServer.SetNotServingStatus(health.ServiceName)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] HTTP shutdown error: %v", err)
		}
		grpcServer.GracefulStop()

		log.Printf("[INFO] Graceful shutdown completed")
	}

	log.Printf("[INFO] Server stopped")
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			return
		}

		next.ServeHTTP(w, r)
	})
}
