package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/r-madani/CoachPortalBack/internal/models"
	"github.com/r-madani/CoachPortalBack/internal/services"
	"github.com/r-madani/CoachPortalBack/internal/wallclock"
)

type timezoneDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

func parseActorID(c *fiber.Ctx) (int64, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, errors.New("missing user id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

func formatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func actorRole(c *fiber.Ctx) (models.Role, bool) {
	raw, ok := c.Locals("role").(string)
	if !ok {
		return "", false
	}
	return models.ParseRole(raw)
}

// resolveTimezone picks the zone the actor declared on this request, falling
// back to their stored preference. There is deliberately no UTC or
// server-local fallback: an unresolvable zone is an error, never a guess.
func resolveTimezone(c *fiber.Ctx, users timezoneDirectory, actorID int64) (string, error) {
	if tz, _ := c.Locals("timezone").(string); tz != "" {
		if _, err := wallclock.LoadLocation(tz); err != nil {
			return "", err
		}
		return tz, nil
	}
	user, err := users.GetByID(c.Context(), actorID)
	if err != nil {
		return "", err
	}
	if _, err := wallclock.LoadLocation(user.Timezone); err != nil {
		return "", err
	}
	return user.Timezone, nil
}

func mapBookingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session details"})
	case errors.Is(err, wallclock.ErrInvalidWallClock):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date/time value"})
	case errors.Is(err, wallclock.ErrInvalidTimezone):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown timezone"})
	case errors.Is(err, services.ErrInvalidActor):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Session no longer permits this action"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process session request"})
	}
}
