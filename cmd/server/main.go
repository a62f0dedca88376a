package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/assessgen/backend/internal/assessment"
	"github.com/assessgen/backend/internal/auth"
	"github.com/assessgen/backend/internal/config"
	"github.com/assessgen/backend/internal/database"
	"github.com/assessgen/backend/internal/extract"
	"github.com/assessgen/backend/internal/generator"
	"github.com/assessgen/backend/internal/logger"
	"github.com/assessgen/backend/internal/middleware"
	"github.com/assessgen/backend/internal/monitoring"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configDir := pflag.String("config", "./configs", "directory containing config.yaml")
	pflag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logg.Sync()

	// Initialize database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.Driver); err != nil {
		logg.Fatal("failed to run migrations", zap.Error(err))
	}

	// Model capability is optional; without it every request uses templated questions.
	llm, modelName, err := generator.NewLLMClient(cfg.Model)
	if err != nil {
		logg.Warn("question model unavailable, using templated questions only", zap.Error(err))
	} else {
		logg.Info("question model loaded", zap.String("provider", cfg.Model.Provider), zap.String("model", modelName))
	}
	pipeline := generator.NewPipeline(llm, logg.Named("pipeline"),
		generator.WithTimeout(cfg.Model.Timeout),
		generator.WithConcurrency(cfg.Model.Concurrency),
	)

	var objects extract.ObjectStore
	if cfg.Storage.MinioEndpoint != "" {
		store, err := extract.NewMinioStore(cfg.Storage)
		if err != nil {
			logg.Fatal("failed to build object store client", zap.Error(err))
		}
		objects = store
	}
	extractor := extract.NewExtractor(extract.NewFetcher(cfg.Fetch, objects))

	// Initialize handlers
	service := assessment.NewService(assessment.NewStore(db), extractor, pipeline, logg.Named("assessment"))
	handler := assessment.NewHandler(service, logg.Named("http"))

	monitoring.Init()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logg.Named("access")))
	r.Use(monitoring.MetricsMiddleware)
	r.Handle("/metrics", monitoring.Handler()).Methods("GET")

	var limit, protect mux.MiddlewareFunc
	if cfg.RateLimit.MaxRequests > 0 && cfg.RateLimit.Window > 0 {
		limit = middleware.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window).Middleware
	}
	if cfg.Auth.JWTSecret != "" {
		tokens := auth.NewTokens(cfg.Auth.JWTSecret)
		protect = middleware.Auth(tokens)
		r.Handle("/auth/me", protect(http.HandlerFunc(auth.CurrentPrincipal))).Methods("GET")
	} else {
		logg.Warn("JWT_SECRET not set, API authentication disabled")
	}
	handler.Register(r, limit, protect)

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("server starting", zap.String("addr", srv.Addr), zap.Bool("model_loaded", pipeline.ModelLoaded()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logg.Error("graceful shutdown failed", zap.Error(err))
	}
	logg.Info("server stopped")
}
