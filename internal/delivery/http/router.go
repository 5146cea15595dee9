package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"teambooking/internal/delivery/http/middleware"
	"teambooking/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	bookingController *BookingController,
	authController *AuthController,
	verifier domain.TokenVerifier,
	metricsHandler http.Handler,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// API Routes
	mux.HandleFunc("GET /bookings/{bookingID}", requireAuth(bookingController.Get))
	mux.HandleFunc("POST /bookings/{bookingID}/reassign", requireAuth(bookingController.Reassign))

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Observability
	mux.Handle("GET /metrics", metricsHandler)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
