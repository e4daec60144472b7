package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/r-madani/CoachPortalBack/internal/calendar"
	"github.com/r-madani/CoachPortalBack/internal/clock"
	"github.com/r-madani/CoachPortalBack/internal/models"
	"github.com/r-madani/CoachPortalBack/internal/repository"
	"github.com/r-madani/CoachPortalBack/internal/services"
	"github.com/r-madani/CoachPortalBack/internal/wallclock"
)

type CalendarHandler struct {
	sessions sessionLister
	users    timezoneDirectory
	clock    clock.Clock
}

type sessionLister interface {
	List(ctx context.Context, actorID int64, actorRole models.Role, filter repository.SessionListFilter) ([]services.SessionView, error)
}

func NewCalendarHandler(sessions sessionLister, users timezoneDirectory, clk clock.Clock) *CalendarHandler {
	return &CalendarHandler{sessions: sessions, users: users, clock: clk}
}

// GetCalendar buckets the participant's sessions into the requested grid.
// Responds with the grid plus the previous/next/today anchors so the client
// can navigate without re-deriving calendar arithmetic.
func (h *CalendarHandler) GetCalendar(c *fiber.Ctx) error {
	role, ok := actorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	view, ok := calendar.ParseViewKind(c.Query("view", string(calendar.ViewMonth)))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "view must be week, month or year"})
	}

	tz, err := resolveTimezone(c, h.users, actorID)
	if err != nil {
		return mapBookingError(c, err)
	}
	loc, err := wallclock.LoadLocation(tz)
	if err != nil {
		return mapBookingError(c, err)
	}

	now := h.clock.Now()
	anchor := calendar.TodayAnchor(now, loc)
	if raw := c.Query("anchor"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "anchor must be YYYY-MM-DD"})
		}
		anchor = parsed
	}

	views, err := h.sessions.List(c.Context(), actorID, role, repository.SessionListFilter{})
	if err != nil {
		return mapBookingError(c, err)
	}

	// The grid shows derived statuses, so an elapsed scheduled session reads
	// completed regardless of whether the sweep has persisted it yet.
	sessions := make([]models.Session, 0, len(views))
	for _, v := range views {
		s := v.Session
		s.Status = v.EffectiveStatus
		sessions = append(sessions, s)
	}

	grid, err := calendar.Build(sessions, view, anchor, loc, now)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "view must be week, month or year"})
	}

	const day = "2006-01-02"
	return c.JSON(fiber.Map{
		"calendar": grid,
		"navigation": fiber.Map{
			"previous": calendar.PreviousAnchor(view, anchor, loc).Format(day),
			"next":     calendar.NextAnchor(view, anchor, loc).Format(day),
			"today":    calendar.TodayAnchor(now, loc).Format(day),
		},
	})
}

// GetLiveClock renders "now" in a candidate zone for the timezone picker.
func (h *CalendarHandler) GetLiveClock(c *fiber.Ctx) error {
	tz := c.Query("tz")
	rendered, err := wallclock.CurrentWallClock(h.clock, tz)
	if err != nil {
		return mapBookingError(c, err)
	}
	return c.JSON(fiber.Map{"timezone": tz, "now": rendered})
}
