package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/r-madani/CoachPortalBack/internal/clock"
	"github.com/r-madani/CoachPortalBack/internal/models"
	"github.com/r-madani/CoachPortalBack/internal/repository"
	"github.com/r-madani/CoachPortalBack/internal/wallclock"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidActor      = errors.New("invalid actor")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNotFound          = errors.New("not found")
)

const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 180
)

type sessionStore interface {
	Create(ctx context.Context, input repository.CreateSessionInput) (*models.Session, error)
	GetByID(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	ListByParticipant(ctx context.Context, filter repository.SessionListFilter) ([]models.Session, error)
	UpdateStatusIfCurrent(ctx context.Context, sessionID uuid.UUID, currentStatus, nextStatus models.SessionStatus, cancelReason *string) (*models.Session, error)
	MarkElapsedCompleted(ctx context.Context, now time.Time) (int64, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type BookingService struct {
	sessions sessionStore
	users    userReader
	notifier Notifier
	clock    clock.Clock
	log      zerolog.Logger
}

func NewBookingService(
	sessions sessionStore,
	users userReader,
	notifier Notifier,
	clk clock.Clock,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{
		sessions: sessions,
		users:    users,
		notifier: notifier,
		clock:    clk,
		log:      log,
	}
}

type ProposeSessionInput struct {
	CounterpartID   int64
	Title           string
	Description     *string
	LocalStart      string // wall clock in the proposer's zone
	Timezone        string // IANA zone the wall clock was entered in
	DurationMinutes int
	MeetingLink     *string
	PrepNotes       *string
}

// SessionView decorates a session with its derived status and the queue
// partition flag: a pending session awaits you exactly when the other party
// requested it.
type SessionView struct {
	models.Session
	EffectiveStatus models.SessionStatus `json:"effective_status"`
	AwaitingYou     bool                 `json:"awaiting_you"`
}

// Propose creates a new session in pending_confirmation on behalf of the
// acting participant. The wall-clock start is interpreted strictly in the
// proposer's declared zone; only the resulting UTC instant is stored.
func (s *BookingService) Propose(
	ctx context.Context,
	actorID int64,
	actorRole models.Role,
	input ProposeSessionInput,
) (*models.Session, error) {
	if !actorRole.Valid() {
		return nil, ErrInvalidActor
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	if input.DurationMinutes < MinDurationMinutes || input.DurationMinutes > MaxDurationMinutes {
		return nil, ErrInvalidInput
	}
	if input.CounterpartID <= 0 || input.CounterpartID == actorID {
		return nil, ErrInvalidInput
	}

	scheduledAt, err := wallclock.ToInstant(input.LocalStart, input.Timezone)
	if err != nil {
		return nil, err
	}
	if !scheduledAt.After(s.clock.Now()) {
		return nil, ErrInvalidInput
	}

	counterpart, err := s.users.GetByID(ctx, input.CounterpartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if counterpart.Role != actorRole.Counterpart() {
		return nil, ErrInvalidInput
	}

	clientID, coachID := actorID, input.CounterpartID
	if actorRole == models.RoleCoach {
		clientID, coachID = input.CounterpartID, actorID
	}

	session, err := s.sessions.Create(ctx, repository.CreateSessionInput{
		ClientID:        clientID,
		CoachID:         coachID,
		Title:           title,
		Description:     input.Description,
		ScheduledAt:     scheduledAt,
		DurationMinutes: input.DurationMinutes,
		RequestedBy:     actorRole,
		MeetingLink:     input.MeetingLink,
		PrepNotes:       input.PrepNotes,
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, input.CounterpartID, EventSessionProposed, session)
	return session, nil
}

// Confirm moves a pending session to scheduled. Only the counterparty of
// the proposer may confirm; the proposer confirming their own request fails
// with ErrInvalidActor. The status guard runs as a compare-and-set against
// the stored row, so of two racing confirms exactly one succeeds.
func (s *BookingService) Confirm(
	ctx context.Context,
	actorID int64,
	sessionID uuid.UUID,
) (*models.Session, error) {
	session, err := s.getOwned(ctx, actorID, sessionID)
	if err != nil {
		return nil, err
	}
	actorRole, _ := session.RoleOf(actorID)
	switch actorRole {
	case session.RequestedBy:
		// Confirming your own request is never valid, whatever the status.
		return nil, ErrInvalidActor
	case session.RequestedBy.Counterpart():
		// Only the counterparty of the proposer gets past this point.
	}
	if session.Status != models.StatusPendingConfirmation {
		return nil, ErrInvalidTransition
	}

	updated, err := s.sessions.UpdateStatusIfCurrent(
		ctx, sessionID, models.StatusPendingConfirmation, models.StatusScheduled, nil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.notify(ctx, updated.ParticipantID(session.RequestedBy), EventSessionConfirmed, updated)
	return updated, nil
}

// Decline rejects a pending proposal. Either participant may decline; the
// session ends cancelled. Dismissing the review dialog is not a decline —
// callers only reach here through the explicit destructive action.
func (s *BookingService) Decline(
	ctx context.Context,
	actorID int64,
	sessionID uuid.UUID,
	reason *string,
) (*models.Session, error) {
	return s.terminate(ctx, actorID, sessionID, reason, EventSessionDeclined)
}

// Cancel cancels a pending or scheduled session. Terminal states, including
// derived completion, do not permit it.
func (s *BookingService) Cancel(
	ctx context.Context,
	actorID int64,
	sessionID uuid.UUID,
	reason *string,
) (*models.Session, error) {
	return s.terminate(ctx, actorID, sessionID, reason, EventSessionCancelled)
}

func (s *BookingService) terminate(
	ctx context.Context,
	actorID int64,
	sessionID uuid.UUID,
	reason *string,
	kind EventKind,
) (*models.Session, error) {
	session, err := s.getOwned(ctx, actorID, sessionID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(session.EffectiveStatus(s.clock.Now()), models.StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if trimmed == "" {
			reason = nil
		} else {
			reason = &trimmed
		}
	}

	updated, err := s.sessions.UpdateStatusIfCurrent(
		ctx, sessionID, session.Status, models.StatusCancelled, reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	actorRole, _ := session.RoleOf(actorID)
	s.notify(ctx, session.ParticipantID(actorRole.Counterpart()), kind, updated)
	return updated, nil
}

// Get returns a single session for one of its participants.
func (s *BookingService) Get(
	ctx context.Context,
	actorID int64,
	sessionID uuid.UUID,
) (*SessionView, error) {
	session, err := s.getOwned(ctx, actorID, sessionID)
	if err != nil {
		return nil, err
	}
	actorRole, _ := session.RoleOf(actorID)
	view := s.view(*session, actorRole)
	return &view, nil
}

// List returns the acting participant's sessions, each carrying its derived
// status and whether it sits in the actor's "awaiting your action" queue.
func (s *BookingService) List(
	ctx context.Context,
	actorID int64,
	actorRole models.Role,
	filter repository.SessionListFilter,
) ([]SessionView, error) {
	if !actorRole.Valid() {
		return nil, ErrInvalidActor
	}
	sessions, err := s.sessions.ListByParticipant(ctx, repository.SessionListFilter{
		ActorID:   actorID,
		Role:      actorRole,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
	if err != nil {
		return nil, err
	}

	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, s.view(session, actorRole))
	}
	return views, nil
}

// SweepCompleted persists derived completion for elapsed scheduled sessions.
// Responses never depend on it having run; it only converges stored rows.
func (s *BookingService) SweepCompleted(ctx context.Context) error {
	promoted, err := s.sessions.MarkElapsedCompleted(ctx, s.clock.Now())
	if err != nil {
		return err
	}
	if promoted > 0 {
		s.log.Info().Int64("sessions", promoted).Msg("promoted elapsed sessions to completed")
	}
	return nil
}

func (s *BookingService) view(session models.Session, actorRole models.Role) SessionView {
	return SessionView{
		Session:         session,
		EffectiveStatus: session.EffectiveStatus(s.clock.Now()),
		AwaitingYou: session.Status == models.StatusPendingConfirmation &&
			session.RequestedBy == actorRole.Counterpart(),
	}
}

func (s *BookingService) getOwned(
	ctx context.Context,
	actorID int64,
	sessionID uuid.UUID,
) (*models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, ok := session.RoleOf(actorID); !ok {
		return nil, ErrInvalidActor
	}
	return session, nil
}

// notify is fire-and-forget: delivery failures are logged and swallowed,
// never surfaced as booking failures.
func (s *BookingService) notify(ctx context.Context, recipientID int64, kind EventKind, session *models.Session) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, recipientID, kind, SessionSummary{
		SessionID:   session.ID,
		Title:       session.Title,
		ScheduledAt: session.ScheduledAt,
		Status:      session.Status,
	})
	if err != nil {
		s.log.Warn().Err(err).
			Int64("recipient_id", recipientID).
			Str("event", string(kind)).
			Msg("notification delivery failed")
	}
}
