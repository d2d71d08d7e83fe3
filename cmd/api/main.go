package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"

	"github.com/schooldesk/fees-api/internal/config"
	"github.com/schooldesk/fees-api/internal/database"
	"github.com/schooldesk/fees-api/internal/handlers"
	"github.com/schooldesk/fees-api/internal/jobs"
	"github.com/schooldesk/fees-api/internal/middleware"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/services"
	"github.com/schooldesk/fees-api/internal/storage"
	"github.com/schooldesk/fees-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)
	txManager := repository.NewTxManager(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, txManager, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, store)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/auth/me", h.Auth.Me)

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// User management
				admin.POST("/users", h.User.Create)
				admin.GET("/users", h.User.Index)
				admin.GET("/users/:user_id", h.User.Show)
				admin.PUT("/users/:user_id/status", h.User.SetStatus)

				// Catalogue management
				admin.POST("/academic-years", h.AcademicYear.Create)
				admin.PUT("/academic-years/:year_id/current", h.AcademicYear.SetCurrent)
				admin.POST("/class-grades", h.ClassGrade.Create)
				admin.PUT("/class-grades/:grade_id", h.ClassGrade.Update)

				// Fee catalogue management
				admin.POST("/fee-structures", h.FeeStructure.Create)
				admin.PUT("/fee-structures/:fee_id", h.FeeStructure.Update)
				admin.DELETE("/fee-structures/:fee_id", h.FeeStructure.Delete)

				// Destructive record operations
				admin.DELETE("/students/:student_id", h.Student.Delete)
				admin.DELETE("/families/:family_id", h.Family.Delete)
				admin.DELETE("/payments/:payment_id", h.Payment.Delete)
				admin.DELETE("/group-payments/:group_id", h.GroupPayment.Delete)
			}

			// Operator + admin routes (day-to-day fee desk work)
			desk := protected.Group("")
			desk.Use(middleware.RequireRole("admin", "operator"))
			{
				// Catalogue viewing
				desk.GET("/academic-years", h.AcademicYear.Index)
				desk.GET("/academic-years/current", h.AcademicYear.Current)
				desk.GET("/class-grades", h.ClassGrade.Index)

				// Fee catalogue viewing
				desk.GET("/fee-structures", h.FeeStructure.Index)
				desk.GET("/fee-structures/by-class", h.FeeStructure.ByClass)
				desk.GET("/fee-structures/:fee_id", h.FeeStructure.Show)

				// Students
				desk.GET("/students", h.Student.Index)
				desk.POST("/students", h.Student.Create)
				desk.GET("/students/:student_id", h.Student.Show)
				desk.PUT("/students/:student_id", h.Student.Update)
				desk.GET("/students/:student_id/payments", h.Student.Payments)

				// Families
				desk.GET("/families", h.Family.Index)
				desk.POST("/families", h.Family.Create)
				desk.GET("/families/:family_id", h.Family.Show)
				desk.PUT("/families/:family_id", h.Family.Update)
				desk.GET("/families/:family_id/students", h.Family.Students)
				desk.GET("/families/:family_id/group-payments", h.Family.GroupPayments)

				// Payments (static routes before :payment_id)
				desk.GET("/payments", h.Payment.Index)
				desk.GET("/payments/summary", h.Payment.Summary)
				desk.GET("/payments/export", h.Payment.Export)
				desk.POST("/payments", h.Payment.Create)
				desk.GET("/payments/:payment_id", h.Payment.Show)
				desk.PUT("/payments/:payment_id", h.Payment.Update)
				desk.POST("/payments/:payment_id/recompute", h.Payment.Recompute)

				// Group payments
				desk.GET("/group-payments", h.GroupPayment.Index)
				desk.POST("/group-payments", h.GroupPayment.Create)
				desk.GET("/group-payments/:group_id", h.GroupPayment.Show)
				desk.POST("/group-payments/:group_id/entries", h.GroupPayment.AddEntry)
				desk.DELETE("/group-payments/:group_id/entries/:payment_id", h.GroupPayment.RemoveEntry)
				desk.POST("/group-payments/:group_id/recompute", h.GroupPayment.Recompute)

				// Receipts
				desk.GET("/receipts", h.Receipt.Index)
				desk.GET("/receipts/:receipt_number", h.Receipt.Show)
				desk.GET("/receipts/:receipt_number/download", h.Receipt.Download)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Lapse partial payments past their due date once a day, shortly
	// after midnight local time
	worker.ScheduleDailyAt(0, 15, func(ctx context.Context) error {
		logger.Info("[Job] Refreshing overdue payment statuses...")
		_, err := svcs.Payment.RefreshOverdueStatuses(ctx)
		return err
	})

	// Safety net for long-running processes that miss the daily tick
	worker.ScheduleEvery(6*time.Hour, func(ctx context.Context) error {
		_, err := svcs.Payment.RefreshOverdueStatuses(ctx)
		return err
	})
}
