package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/userhub/userhub/internal/config"
	"github.com/userhub/userhub/internal/database"
	"github.com/userhub/userhub/internal/users"
)

// AppState holds all application services
type AppState struct {
	Logger        *zap.Logger
	Config        *config.Config
	DB            *bun.DB
	HealthManager *database.HealthManager
	UserService   users.UserService
}

func main() {
	// Load configuration
	config.Load()

	// Initialize logger with config
	logger := initLogger()
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("storage_driver", config.Storage().Driver),
		zap.Bool("seed_enabled", config.Seed().Enabled))

	ctx := context.Background()

	as, err := newAppState(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application state", zap.Error(err))
	}

	if err := as.HealthManager.StartupHealthCheck(ctx); err != nil {
		logger.Fatal("Startup health check failed", zap.Error(err))
	}

	if config.Seed().Enabled {
		created, failed := users.SetupDefaults(ctx, as.UserService, logger)
		logger.Info("Default data setup completed",
			zap.Int("created", created),
			zap.Int("failed", failed))
	}

	router := setupRouter(as)

	addr := config.Http().Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := setupSignalHandler(as, server, logger)

	logger.Info("Starting userhub server", zap.String("address", addr))

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

// newAppState wires the store selected by configuration into the user service
func newAppState(ctx context.Context, logger *zap.Logger) (*AppState, error) {
	healthManager := database.NewHealthManager(logger)

	var (
		db    *bun.DB
		store users.UserStore
	)

	switch driver := config.Storage().Driver; driver {
	case config.StorageDriverPostgres:
		pgConfig := config.Postgres()

		logger.Info("Database configuration",
			zap.String("host", pgConfig.Host),
			zap.Int("port", pgConfig.Port),
			zap.String("database", pgConfig.Database),
			zap.String("user", pgConfig.User))

		var err error
		db, err = database.Open(ctx, database.Options{
			DSN:            pgConfig.DSN(),
			MaxConnections: pgConfig.MaxOpenConnections,
			ReadTimeout:    time.Duration(pgConfig.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(pgConfig.WriteTimeout) * time.Second,
			ConnectRetries: pgConfig.ConnectRetries,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		healthManager.AddChecker(database.NewDatabaseHealthChecker(db))
		store = users.NewPostgresStore(db)
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory user store, data is lost on restart")
		store = users.NewInMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}

	return &AppState{
		Logger:        logger,
		Config:        config.Get(),
		DB:            db,
		HealthManager: healthManager,
		UserService:   users.NewUserService(store),
	}, nil
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	var config zap.Config
	if logConfig.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	// Set log level
	switch logConfig.Level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

func setupRouter(as *AppState) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(cors.Default())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware(as.Logger))
	router.Use(gin.Recovery())
	router.Use(MaxBodySizeMiddleware(as.Config.Common.Http.MaxRequestSize))

	// Health endpoint
	router.GET("/health", func(c *gin.Context) {
		results := as.HealthManager.RuntimeHealthCheck(c.Request.Context())

		services := gin.H{}
		healthy := true
		for name, err := range results {
			if err != nil {
				healthy = false
				services[name] = err.Error()
				continue
			}
			services[name] = "healthy"
		}

		status := http.StatusOK
		state := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "unhealthy"
		}

		c.JSON(status, gin.H{
			"status":    state,
			"timestamp": time.Now().Format(time.RFC3339),
			"services":  services,
		})
	})

	api := router.Group("/api")
	users.NewUserHandlers(as.UserService, as.Logger).RegisterRoutes(api)

	return router
}

func setupSignalHandler(as *AppState, server *http.Server, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signalCh

		logger.Info("Shutting down server...", zap.String("signal", sig.String()))

		timeout := time.Duration(as.Config.Common.Http.ShutdownTimeout) * time.Second
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		if as.DB != nil {
			if err := as.DB.Close(); err != nil {
				logger.Error("Error closing database", zap.Error(err))
			}
		}

		done <- struct{}{}
	}()

	return done
}
