package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/r-madani/CoachPortalBack/internal/config"
	"github.com/r-madani/CoachPortalBack/internal/database"
	"github.com/r-madani/CoachPortalBack/internal/routes"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.AppEnv == "development" {
		zlog = zlog.Level(zerolog.DebugLevel)
	}

	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()
	zlog.Info().Msg("connected to postgres")

	app := fiber.New()

	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	bookingService := routes.RegisterRoutes(app, cfg, database.DB, zlog)

	// Periodically persist derived completion so stored rows converge with
	// what read paths already report.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.CompletionSweepSpec, func() {
		if err := bookingService.SweepCompleted(context.Background()); err != nil {
			zlog.Error().Err(err).Msg("completion sweep failed")
		}
	}); err != nil {
		log.Fatalf("Failed to schedule completion sweep: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	zlog.Info().Str("port", cfg.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
