package bootstrap

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slot-booking/config"
	"slot-booking/internal/converter"
	deliveryHttp "slot-booking/internal/delivery/http"
	"slot-booking/internal/delivery/http/handler"
	"slot-booking/internal/delivery/http/middleware"
	"slot-booking/internal/domain/grid"
	domainRepo "slot-booking/internal/domain/repository"
	"slot-booking/internal/infrastructure/cache"
	"slot-booking/internal/infrastructure/database"
	"slot-booking/internal/infrastructure/messaging"
	"slot-booking/internal/repository"
	"slot-booking/internal/service"
	"slot-booking/internal/usecase"
	"slot-booking/pkg/jwt"
	"slot-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// publisher is what the app needs from the message bus, including shutdown.
type publisher interface {
	usecase.EventPublisher
	Close() error
}

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Publisher   publisher
	Server      *http.Server
	Log         *logrus.Logger
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.App.Timezone, err)
	}

	template, err := gridTemplate(cfg.Grid)
	if err != nil {
		return nil, fmt.Errorf("invalid grid configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize database
	db, err := database.NewConnection(cfg.DB, cfg.App.Timezone, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db, cfg.DB.Driver, log); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize message bus (optional)
	app.Publisher = messaging.NopPublisher{}
	if cfg.AMQP.URL != "" {
		pub, err := messaging.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		app.Publisher = pub
		log.Infof("Publishing booking events to exchange %s", cfg.AMQP.Exchange)
	} else {
		log.Info("AMQP_URL is empty, booking events are not published")
	}

	bookingRepo := repository.NewBookingRepository(db)
	claimService := service.NewSlotClaimService(redisClient, bookingRepo, log, loc)

	// Rebuild the claim mirror before accepting traffic
	if err := claimService.SyncOnStartup(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to sync slot claims: %w", err)
	}

	app.Server = initializeServer(cfg, log, db, redisClient, app.Publisher, bookingRepo, claimService, template, loc)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func gridTemplate(cfg config.GridConfig) (grid.Template, error) {
	weekdays, err := grid.ParseWeekdays(cfg.Weekdays)
	if err != nil {
		return grid.Template{}, err
	}
	template := grid.Template{
		Weekdays:    weekdays,
		StartHour:   cfg.StartHour,
		EndHour:     cfg.EndHour,
		SlotMinutes: cfg.SlotMinutes,
	}
	if err := (grid.Window{WeekCount: cfg.Weeks, Template: template}).Validate(); err != nil {
		return grid.Template{}, err
	}
	return template, nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(
	cfg *config.Config,
	log *logrus.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	publisher usecase.EventPublisher,
	bookingRepo domainRepo.BookingRepository,
	claimService *service.SlotClaimService,
	template grid.Template,
	loc *time.Location,
) *http.Server {
	if cfg.JWT.Secret == "" {
		log.Warn("JWT_SECRET is empty, using a random secret; admin tokens will not survive a restart")
		cfg.JWT.Secret = randomHex(32)
	}
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	locale := converter.LocaleFor(cfg.App.Locale)

	// Initialize repositories
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)

	// Initialize usecases
	availabilityUsecase := usecase.NewAvailabilityUsecase(log, bookingRepo)
	bookingUsecase := usecase.NewBookingUsecase(log, bookingRepo, customValidator, template, loc, claimService, publisher, auditService)
	adminBookingUsecase := usecase.NewAdminBookingUsecase(log, bookingRepo, customValidator, template, publisher, auditService)
	authUsecase := usecase.NewAuthUsecase(log, cfg.Admin, jwtService, redisClient, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)

	// Initialize handlers
	slotHandler := handler.NewSlotHandler(availabilityUsecase, template, cfg.Grid.Weeks, loc, locale, log)
	bookingHandler := handler.NewBookingHandler(bookingUsecase, locale, log)
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	adminBookingHandler := handler.NewAdminBookingHandler(adminBookingUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, authUsecase)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	csrfMiddleware := middleware.NewCSRFMiddleware(csrfKey(cfg.CSRF.AuthKey, log), cfg.CSRF.Secure, log)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustedProxies, log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		slotHandler,
		bookingHandler,
		authHandler,
		adminBookingHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		csrfMiddleware,
		rateLimitMiddleware,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// csrfKey returns the 32 byte key gorilla/csrf signs its cookie with.
func csrfKey(raw string, log *logrus.Logger) []byte {
	if raw == "" {
		log.Warn("CSRF_AUTH_KEY is empty, using a random key; form tokens will not survive a restart")
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(err)
		}
		return key
	}
	if len(raw) == 32 {
		return []byte(raw)
	}
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
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

// Close closes all connections (database, redis, message bus)
func (app *App) Close() {
	if app.Publisher != nil {
		app.Publisher.Close()
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
