package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chungty/companylens/config"
	"github.com/chungty/companylens/handler"
	"github.com/chungty/companylens/middleware"
	"github.com/chungty/companylens/model"
	"github.com/chungty/companylens/pkg/logger"
	"github.com/chungty/companylens/service"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	smoke := flag.Bool("smoke", false, "run the smoke-test suite once and exit")
	flag.Parse()

	// Load configuration; missing credentials fail here, before any vendor
	// call is made.
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	enrichClient := service.NewEnrichmentClient(&cfg.Enrich)
	workspaceClient := service.NewWorkspaceClient(&cfg.Workspace)
	runner := service.NewCheckRunner(enrichClient, workspaceClient, cfg)

	var archiveSvc *service.ArchiveService
	if cfg.Archive.Enabled {
		archiveSvc, err = service.NewArchiveService(&cfg.Archive)
		if err != nil {
			slog.Error("failed to initialize report archive", "error", err)
			os.Exit(1)
		}
		if err := archiveSvc.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
	}

	if *smoke {
		os.Exit(runSmoke(runner, archiveSvc))
	}

	store := service.NewReportStore(&cfg.Store)

	authHandler := handler.NewAuthHandler(cfg)
	enrichHandler := handler.NewEnrichHandler(enrichClient)
	checksHandler := handler.NewChecksHandler(runner, workspaceClient, store, archiveSvc, cfg.Workspace.DatabaseID)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(100, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.POST("/enrich", enrichHandler.Enrich)
		protected.GET("/enrich/stats", enrichHandler.Stats)
		protected.GET("/workspace/schema", checksHandler.Schema)
		protected.POST("/checks", checksHandler.Run)
		protected.GET("/checks", checksHandler.List)
		protected.GET("/checks/:id", checksHandler.Get)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// runSmoke executes the check suite once and prints a human-readable
// summary. Returns the process exit code: 0 when every check passed, 1
// otherwise.
func runSmoke(runner *service.CheckRunner, archive *service.ArchiveService) int {
	ctx := context.Background()
	report := runner.Run(ctx)

	for _, check := range report.Checks {
		mark := "PASS"
		if check.Status == model.CheckFailed {
			mark = "FAIL"
		}
		line := fmt.Sprintf("[%s] %-30s %dms", mark, check.Name, check.Duration)
		if check.Detail != "" {
			line += "  " + check.Detail
		}
		if check.Error != "" {
			line += "  " + check.Error
		}
		fmt.Println(line)
	}

	if archive != nil {
		objectName, err := archive.StoreReport(ctx, report)
		if err != nil {
			slog.Warn("failed to archive report", "run_id", report.ID, "error", err)
		} else {
			fmt.Printf("report archived as %s\n", objectName)
		}
	}

	if !report.Passed {
		fmt.Printf("smoke run %s failed: %v\n", report.ID, report.Failures())
		return 1
	}
	fmt.Printf("smoke run %s passed (%d checks)\n", report.ID, len(report.Checks))
	return 0
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
