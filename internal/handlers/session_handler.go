package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/r-madani/CoachPortalBack/internal/models"
	"github.com/r-madani/CoachPortalBack/internal/repository"
	"github.com/r-madani/CoachPortalBack/internal/services"
)

type SessionHandler struct {
	service  bookingApplicationService
	users    timezoneDirectory
	validate *validator.Validate
}

type bookingApplicationService interface {
	Propose(ctx context.Context, actorID int64, actorRole models.Role, input services.ProposeSessionInput) (*models.Session, error)
	Confirm(ctx context.Context, actorID int64, sessionID uuid.UUID) (*models.Session, error)
	Decline(ctx context.Context, actorID int64, sessionID uuid.UUID, reason *string) (*models.Session, error)
	Cancel(ctx context.Context, actorID int64, sessionID uuid.UUID, reason *string) (*models.Session, error)
	Get(ctx context.Context, actorID int64, sessionID uuid.UUID) (*services.SessionView, error)
	List(ctx context.Context, actorID int64, actorRole models.Role, filter repository.SessionListFilter) ([]services.SessionView, error)
	PreviewProposal(ctx context.Context, actorID int64, actorRole models.Role, localStart, timezone string, counterpartID int64) (*services.SchedulePreview, error)
	PreviewSession(ctx context.Context, actorID int64, sessionID uuid.UUID, actorTimezone string) (*services.SchedulePreview, error)
}

func NewSessionHandler(service *services.BookingService, users timezoneDirectory) *SessionHandler {
	return &SessionHandler{
		service:  service,
		users:    users,
		validate: validator.New(),
	}
}

type proposeSessionRequest struct {
	CounterpartID   int64   `json:"counterpart_id" validate:"required,gt=0"`
	Title           string  `json:"title" validate:"required,min=1,max=200"`
	Description     *string `json:"description"`
	LocalStart      string  `json:"local_start" validate:"required"`
	Timezone        string  `json:"timezone" validate:"required"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=15,max=180"`
	MeetingLink     *string `json:"meeting_link" validate:"omitempty,url"`
	PrepNotes       *string `json:"prep_notes"`
}

type previewSessionRequest struct {
	CounterpartID int64  `json:"counterpart_id" validate:"required,gt=0"`
	LocalStart    string `json:"local_start" validate:"required"`
	Timezone      string `json:"timezone" validate:"required"`
}

type reasonRequest struct {
	Reason *string `json:"reason"`
}

func (h *SessionHandler) Propose(c *fiber.Ctx) error {
	actorID, role, ok := h.actor(c)
	if !ok {
		return nil
	}

	var req proposeSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session, err := h.service.Propose(c.Context(), actorID, role, services.ProposeSessionInput{
		CounterpartID:   req.CounterpartID,
		Title:           req.Title,
		Description:     req.Description,
		LocalStart:      req.LocalStart,
		Timezone:        req.Timezone,
		DurationMinutes: req.DurationMinutes,
		MeetingLink:     req.MeetingLink,
		PrepNotes:       req.PrepNotes,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

// Preview backs the request-mode dialog: it renders a candidate time in both
// participants' zones without creating anything.
func (h *SessionHandler) Preview(c *fiber.Ctx) error {
	actorID, role, ok := h.actor(c)
	if !ok {
		return nil
	}

	var req previewSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	preview, err := h.service.PreviewProposal(c.Context(), actorID, role, req.LocalStart, req.Timezone, req.CounterpartID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"preview": preview})
}

// Review backs the confirm-mode dialog for an existing pending session,
// shown to the party who did not request it. It is a pure read; closing the
// dialog afterwards changes nothing.
func (h *SessionHandler) Review(c *fiber.Ctx) error {
	actorID, _, ok := h.actor(c)
	if !ok {
		return nil
	}
	sessionID, err := parseSessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	tz, err := resolveTimezone(c, h.users, actorID)
	if err != nil {
		return mapBookingError(c, err)
	}

	preview, err := h.service.PreviewSession(c.Context(), actorID, sessionID, tz)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"preview": preview})
}

func (h *SessionHandler) List(c *fiber.Ctx) error {
	actorID, role, ok := h.actor(c)
	if !ok {
		return nil
	}

	timeframe := c.Query("timeframe")
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeframe must be upcoming or past"})
	}

	sessions, err := h.service.List(c.Context(), actorID, role, repository.SessionListFilter{
		Status:    models.SessionStatus(c.Query("status")),
		Timeframe: timeframe,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	actorID, _, ok := h.actor(c)
	if !ok {
		return nil
	}
	sessionID, err := parseSessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.Get(c.Context(), actorID, sessionID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) Confirm(c *fiber.Ctx) error {
	actorID, _, ok := h.actor(c)
	if !ok {
		return nil
	}
	sessionID, err := parseSessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.Confirm(c.Context(), actorID, sessionID)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) Decline(c *fiber.Ctx) error {
	return h.terminate(c, h.service.Decline)
}

func (h *SessionHandler) Cancel(c *fiber.Ctx) error {
	return h.terminate(c, h.service.Cancel)
}

func (h *SessionHandler) terminate(
	c *fiber.Ctx,
	action func(ctx context.Context, actorID int64, sessionID uuid.UUID, reason *string) (*models.Session, error),
) error {
	actorID, _, ok := h.actor(c)
	if !ok {
		return nil
	}
	sessionID, err := parseSessionID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req reasonRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	session, err := action(c.Context(), actorID, sessionID, req.Reason)
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

// actor reads the authenticated participant from the request context,
// writing the rejection response itself when the identity is unusable.
func (h *SessionHandler) actor(c *fiber.Ctx) (int64, models.Role, bool) {
	role, ok := actorRole(c)
	if !ok {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		return 0, "", false
	}
	actorID, err := parseActorID(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		return 0, "", false
	}
	return actorID, role, true
}

func parseSessionID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}
