package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/r-madani/CoachPortalBack/internal/clock"
	"github.com/r-madani/CoachPortalBack/internal/config"
	"github.com/r-madani/CoachPortalBack/internal/handlers"
	"github.com/r-madani/CoachPortalBack/internal/middleware"
	"github.com/r-madani/CoachPortalBack/internal/notifyws"
	"github.com/r-madani/CoachPortalBack/internal/repository"
	"github.com/r-madani/CoachPortalBack/internal/services"
)

// RegisterRoutes wires repositories, services, and handlers onto the app and
// returns the booking service so the caller can schedule the completion
// sweep against the same instance.
func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, log zerolog.Logger) *services.BookingService {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	hub := notifyws.NewHub(log)
	go hub.Run()

	clk := clock.System{}
	notifier := services.NewNotificationService(hub, log)
	bookingService := services.NewBookingService(sessionRepo, userRepo, notifier, clk, log)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	sessionHandler := handlers.NewSessionHandler(bookingService, userRepo)
	calendarHandler := handlers.NewCalendarHandler(bookingService, userRepo, clk)
	notificationHandler := handlers.NewNotificationHandler(hub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)
	auth.Put("/timezone", middleware.AuthRequired(cfg.JWTSecret), authHandler.UpdateTimezone)

	protected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	sessions := protected.Group("/sessions")
	sessions.Post("", sessionHandler.Propose)
	sessions.Post("/preview", sessionHandler.Preview)
	sessions.Get("", sessionHandler.List)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Get("/:id/review", sessionHandler.Review)
	sessions.Post("/:id/confirm", sessionHandler.Confirm)
	sessions.Post("/:id/decline", sessionHandler.Decline)
	sessions.Post("/:id/cancel", sessionHandler.Cancel)

	protected.Get("/calendar", calendarHandler.GetCalendar)
	protected.Get("/clock", calendarHandler.GetLiveClock)

	api.Use("/v1/ws", notificationHandler.Upgrade)
	api.Get("/v1/ws", websocket.New(notificationHandler.Handle))

	return bookingService
}
