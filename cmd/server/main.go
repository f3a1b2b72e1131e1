package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cosmoarena/arena-server-go/internal/catalog"
	"github.com/cosmoarena/arena-server-go/internal/config"
	"github.com/cosmoarena/arena-server-go/internal/match/combat"
	"github.com/cosmoarena/arena-server-go/internal/notify"
	"github.com/cosmoarena/arena-server-go/internal/orchestrator"
	"github.com/cosmoarena/arena-server-go/internal/repository"
	"github.com/cosmoarena/arena-server-go/internal/server"
	"github.com/cosmoarena/arena-server-go/internal/ws"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting arena server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Storage: Postgres when configured, in-memory otherwise.
	var store orchestrator.Store
	if cfg.Database.URL != "" {
		db, err := repository.NewDB(ctx, repository.DBConfig{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
		}, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to ensure schema", zap.Error(err))
		}
		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		store = repository.NewMatchStore(db, logger)
	} else {
		logger.Warn("no database configured; using in-memory store")
		store = repository.NewMemoryStore()
	}

	// Catalog/deck collaborator. Standalone mode ships a starter set; a
	// deployment fronted by the real catalog service swaps this provider.
	cat := catalog.NewStarterProvider()
	logger.Info("catalog provider initialized")

	registry := ws.NewRegistry()
	hub := ws.NewHub(registry, logger)
	logger.Info("websocket hub initialized")

	var notifier orchestrator.Notifier
	if cfg.NATS.Enabled {
		pub, err := notify.Connect(cfg.NATS.URL, logger)
		if err != nil {
			logger.Warn("failed to connect notification sink", zap.Error(err))
		} else {
			defer pub.Close()
			notifier = pub
		}
	}

	resolver := combat.NewResolver(combat.NewRandFlipper(time.Now().UnixNano()))
	orch := orchestrator.New(store, cat, resolver, hub, notifier, orchestrator.Config{
		HandSize:          cfg.Game.HandSize,
		StaleWaitingAfter: cfg.Game.StaleWaitingAfter,
	}, logger)
	logger.Info("match orchestrator initialized",
		zap.Int("hand_size", cfg.Game.HandSize),
		zap.Duration("stale_waiting_after", cfg.Game.StaleWaitingAfter),
	)

	// Periodic sweep of abandoned waiting matches.
	sched, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("failed to create scheduler", zap.Error(err))
	}
	_, err = sched.NewJob(
		gocron.DurationJob(cfg.Game.SweepInterval),
		gocron.NewTask(func() {
			if _, sweepErr := orch.SweepStale(ctx); sweepErr != nil {
				logger.Warn("stale match sweep failed", zap.Error(sweepErr))
			}
		}),
	)
	if err != nil {
		logger.Fatal("failed to schedule stale match sweep", zap.Error(err))
	}
	sched.Start()
	defer func() { _ = sched.Shutdown() }()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	server.New(orch, hub, logger).Register(engine)

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: engine,
	}
	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	logger.Info("arena server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("arena server stopped")
}

// requestLogger logs each request through zap instead of gin's default writer.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
