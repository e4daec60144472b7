package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/r-madani/CoachPortalBack/internal/models"
	"github.com/r-madani/CoachPortalBack/internal/wallclock"
)

// SchedulePreview is the dual-timezone rendering shown by the confirmation
// dialog in both its modes: the same instant as each participant will read
// it, labeled by role, so an off-by-hours mistake is visible before anyone
// commits. Building a preview never transitions anything.
type SchedulePreview struct {
	Instant      time.Time   `json:"instant"`
	ClientZone   string      `json:"client_zone"`
	ClientLocal  string      `json:"client_local"`
	CoachZone    string      `json:"coach_zone"`
	CoachLocal   string      `json:"coach_local"`
	ProposerRole models.Role `json:"proposer_role"`
}

// PreviewProposal renders a candidate session time for the request-mode
// dialog, before any session exists. The wall clock is interpreted in the
// proposer's zone; the counterparty's stored zone preference supplies the
// other rendering.
func (s *BookingService) PreviewProposal(
	ctx context.Context,
	actorID int64,
	actorRole models.Role,
	localStart string,
	timezone string,
	counterpartID int64,
) (*SchedulePreview, error) {
	if !actorRole.Valid() {
		return nil, ErrInvalidActor
	}
	if counterpartID <= 0 || counterpartID == actorID {
		return nil, ErrInvalidInput
	}
	instant, err := wallclock.ToInstant(localStart, timezone)
	if err != nil {
		return nil, err
	}

	counterpart, err := s.users.GetByID(ctx, counterpartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if counterpart.Role != actorRole.Counterpart() {
		return nil, ErrInvalidInput
	}

	return s.buildPreview(instant, actorRole, actorRole, timezone, counterpart.Timezone)
}

// PreviewSession renders an existing pending session for the confirm-mode
// dialog. The acting participant's zone comes from the request; the other
// participant's from their stored preference.
func (s *BookingService) PreviewSession(
	ctx context.Context,
	actorID int64,
	sessionID uuid.UUID,
	actorTimezone string,
) (*SchedulePreview, error) {
	session, err := s.getOwned(ctx, actorID, sessionID)
	if err != nil {
		return nil, err
	}
	actorRole, _ := session.RoleOf(actorID)

	other, err := s.users.GetByID(ctx, session.ParticipantID(actorRole.Counterpart()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.buildPreview(session.ScheduledAt, session.RequestedBy, actorRole, actorTimezone, other.Timezone)
}

func (s *BookingService) buildPreview(
	instant time.Time,
	proposer models.Role,
	actorRole models.Role,
	actorZone string,
	otherZone string,
) (*SchedulePreview, error) {
	clientZone, coachZone := actorZone, otherZone
	if actorRole == models.RoleCoach {
		clientZone, coachZone = otherZone, actorZone
	}

	clientLocal, err := wallclock.FormatForDisplay(instant, clientZone)
	if err != nil {
		return nil, err
	}
	coachLocal, err := wallclock.FormatForDisplay(instant, coachZone)
	if err != nil {
		return nil, err
	}

	return &SchedulePreview{
		Instant:      instant,
		ClientZone:   clientZone,
		ClientLocal:  clientLocal,
		CoachZone:    coachZone,
		CoachLocal:   coachLocal,
		ProposerRole: proposer,
	}, nil
}
