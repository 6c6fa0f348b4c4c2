package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-scheduling/config"
	deliveryHttp "hospital-scheduling/internal/delivery/http"
	"hospital-scheduling/internal/delivery/http/handler"
	"hospital-scheduling/internal/delivery/http/middleware"
	domainRepo "hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/infrastructure/cache"
	"hospital-scheduling/internal/infrastructure/catalogapi"
	"hospital-scheduling/internal/infrastructure/database"
	"hospital-scheduling/internal/repository"
	"hospital-scheduling/internal/service"
	"hospital-scheduling/internal/usecase"
	"hospital-scheduling/pkg/jwt"
	"hospital-scheduling/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	// Initialize database
	db, err := OpenDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	app.Server = initializeServer(cfg, log, db, redisClient)

	return app, nil
}

// NewLogger configures a logrus logger: JSON in production, text elsewhere
func NewLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if cfg.Env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

// OpenDatabase connects to PostgreSQL using the clinic timezone for the session
func OpenDatabase(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewCatalogProvider picks the catalog backend named by CATALOG_SOURCE
func NewCatalogProvider(cfg *config.Config, log *logrus.Logger, db *gorm.DB) domainRepo.CatalogProvider {
	if cfg.Catalog.Source == config.CatalogSourceREST {
		log.Infof("Using REST catalog at %s", cfg.Catalog.BaseURL)
		return catalogapi.NewClient(cfg.Catalog, log)
	}

	log.Info("Using database catalog")
	return repository.NewDatabaseCatalogProvider(
		db,
		repository.NewSpecialtyRepository(),
		repository.NewDoctorRepository(),
		repository.NewAvailabilityRepository(),
	)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client) *http.Server {
	location := cfg.App.Location()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	catalog := NewCatalogProvider(cfg, log, db)

	// Initialize services
	auditService := service.NewAuditService(db, log, auditLogRepo)
	slotLocker := service.NewNoopSlotLocker()
	if cfg.Booking.SlotLockEnabled {
		slotLocker = service.NewRedisSlotLocker(redisClient, cfg.Booking.SlotLockTTL, log)
		log.Infof("Slot locking enabled (ttl=%s)", cfg.Booking.SlotLockTTL)
	}

	// Initialize usecases
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, catalog, appointmentRepo, location)
	lifecycleUsecase := usecase.NewAppointmentLifecycleUsecase(db, log, appointmentRepo, auditService)
	bookingUsecase := usecase.NewBookingUsecase(log, customValidator, availabilityUsecase, lifecycleUsecase, catalog, slotLocker, usecase.BookingPolicy{
		AllowDoctorChange: cfg.Booking.AllowDoctorChange,
		Location:          location,
	})
	queryUsecase := usecase.NewAppointmentQueryUsecase(db, log, appointmentRepo, auditService)
	catalogUsecase := usecase.NewCatalogUsecase(log, catalog)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db, redisClient, log)
	doctorHandler := handler.NewDoctorHandler(catalogUsecase, availabilityUsecase, log)
	appointmentHandler := handler.NewAppointmentHandler(bookingUsecase, lifecycleUsecase, queryUsecase, customValidator, log)
	auditLogHandler := handler.NewAuditLogHandler(queryUsecase, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)

	// Initialize router
	router := deliveryHttp.NewRouter(
		healthHandler,
		doctorHandler,
		appointmentHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		cfg.RateLimit.RequestsPerSecond,
	)

	// Create server
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
