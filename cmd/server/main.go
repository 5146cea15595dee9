package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"teambooking/config"
	_ "teambooking/docs"
	authadapter "teambooking/internal/adapters/auth"
	"teambooking/internal/adapters/calendar"
	"teambooking/internal/adapters/email"
	"teambooking/internal/adapters/scheduler"
	"teambooking/internal/adapters/translation"
	"teambooking/internal/database"
	delivery "teambooking/internal/delivery/http"
	"teambooking/internal/delivery/http/middleware"
	"teambooking/internal/metrics"
	"teambooking/internal/repository/postgres"
	"teambooking/internal/services"
)

// @title Team Booking API
// @version 1.0
// @description Round-robin host reassignment for team bookings.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	bookingRepo := postgres.NewBookingRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	referenceRepo := postgres.NewCalendarReferenceRepository(db)
	eventTypeRepo := postgres.NewEventTypeRepository(db)
	userRepo := postgres.NewUserRepository(db)
	credentialRepo := postgres.NewCredentialRepository(db)
	destCalRepo := postgres.NewDestinationCalendarRepository(db)
	workflowRepo := postgres.NewWorkflowRepository(db)
	reminderRepo := postgres.NewWorkflowReminderRepository(db)

	// Adapters
	mailer, err := email.NewMailer(logger, email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		logger.Error("failed to initialize mailer", "error", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()
	calendarSync, err := calendar.NewSync(context.Background(), logger, calendar.SyncConfig{
		Provider:     cfg.CalendarProvider,
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		TokenFile:    cfg.GoogleTokenFile,
	})
	if err != nil {
		logger.Error("failed to initialize calendar sync", "error", err)
		os.Exit(1)
	}
	reminderScheduler := scheduler.NewReminderScheduler(logger, reminderRepo)
	hasher := authadapter.NewBcryptHasher(bcrypt.DefaultCost)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	// Services
	notifier := services.NewNotificationService(logger, mailer, renderer)
	workflowMigration := services.NewWorkflowMigrationService(logger, reminderRepo, workflowRepo, reminderScheduler, cfg.BookerBaseURL)
	reassignment := services.NewReassignmentService(
		logger, bookingRepo, attendeeRepo, referenceRepo, eventTypeRepo,
		userRepo, credentialRepo, destCalRepo, calendarSync, notifier, workflowMigration,
		translation.Translate,
	)
	authService := services.NewAuthService(userRepo, hasher, issuer)

	// HTTP
	m := metrics.New()
	bookingController := delivery.NewBookingController(reassignment, bookingRepo, m)
	authController := delivery.NewAuthController(authService)
	router := delivery.NewRouter(bookingController, authController, verifier, m.Handler(), logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.LoggingMiddleware(logger, router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server starting", slog.String("port", cfg.Port), slog.String("environment", cfg.Environment))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
