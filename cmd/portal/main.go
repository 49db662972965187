package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "portal/api/swagger" // swagger docs
	"portal/internal/config"
	"portal/internal/database"
	"portal/internal/gateway"
	"portal/internal/handler"
	"portal/internal/middleware"
	"portal/internal/repository"
	"portal/internal/service"
	"portal/internal/websocket"
)

// @title           Work Request Portal API
// @version         1.0
// @description     Browser-facing portal for pengajuan, persetujuan and riwayat of office work requests.
// @host            localhost:8081
// @BasePath        /api
func main() {
	var envPath string
	pflag.StringVarP(&envPath, "env", "e", "configs/.env", "Environment file path")
	pflag.Parse()

	cfg, err := config.Load(envPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel, TimeFormat: time.DateTime}))
	slog.SetDefault(logger)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Client storage
	var (
		storage repository.StorageRepository
		txm     repository.TransactionManager
	)
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		storage = repository.NewMemoryStorage()
		txm = repository.NewPassthroughTransactionManager()
		logger.Warn("using in-memory client storage; sessions are lost on restart")
	default:
		db, err := database.NewConnection(cfg.DB.DSN(), logger)
		if err != nil {
			logger.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := database.Close(db); err != nil {
				logger.Warn("failed to close database", "error", err)
			}
		}()
		logger.Info("connected to PostgreSQL")
		storage = repository.NewStorageRepository(db)
		txm = repository.NewTransactionManager(db)
	}

	gw, err := gateway.NewClient(cfg.BackendURL, cfg.BackendTimeout, logger)
	if err != nil {
		logger.Error("invalid backend url", "url", cfg.BackendURL, "error", err)
		os.Exit(1)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run(ctx)

	registry := service.NewWorkspaceRegistry(gw, storage, txm, wsHub, cfg.WorkspaceTTL, logger)
	go registry.RunJanitor(ctx, cfg.JanitorPeriod)

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-Record-Count"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "workspaces": registry.Len()})
	})

	clientWorkspace := middleware.ClientWorkspace(registry, cfg.CookieSecure)

	notificationHandler := handler.NewNotificationHandler(wsHub)
	router.GET("/ws", clientWorkspace, notificationHandler.Stream)

	api := router.Group("/api", clientWorkspace)
	handler.NewAuthHandler().RegisterRoutes(api)
	handler.NewProfileHandler().RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)
	handler.NewRiwayatHandler().RegisterRoutes(api)
	handler.NewPengajuanHandler().RegisterRoutes(api)
	handler.NewPersetujuanHandler().RegisterRoutes(api)
	handler.NewPenggunaHandler().RegisterRoutes(api)
	handler.NewDashboardHandler(gw).RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("portal listening", "addr", srv.Addr, "backend", cfg.BackendURL, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down portal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
