package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/r-madani/CoachPortalBack/internal/models"
)

type EventKind string

const (
	EventSessionProposed  EventKind = "session_proposed"
	EventSessionConfirmed EventKind = "session_confirmed"
	EventSessionDeclined  EventKind = "session_declined"
	EventSessionCancelled EventKind = "session_cancelled"
)

// SessionSummary is the compact payload handed to the notification channel.
type SessionSummary struct {
	SessionID   uuid.UUID            `json:"session_id"`
	Title       string               `json:"title"`
	ScheduledAt time.Time            `json:"scheduled_at"`
	Status      models.SessionStatus `json:"status"`
}

// Notifier delivers booking events to a participant, best effort. It is not
// transactional with the booking state: a failed delivery never rolls back
// a transition.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, kind EventKind, summary SessionSummary) error
}

// pusher is the delivery channel, typically the websocket hub.
type pusher interface {
	Push(recipientID int64, payload any) error
}

type NotificationService struct {
	pusher pusher
	log    zerolog.Logger
}

func NewNotificationService(p pusher, log zerolog.Logger) *NotificationService {
	return &NotificationService{pusher: p, log: log}
}

type notificationPayload struct {
	Type    string         `json:"type"`
	Event   EventKind      `json:"event"`
	Session SessionSummary `json:"session"`
}

func (n *NotificationService) Notify(
	_ context.Context,
	recipientID int64,
	kind EventKind,
	summary SessionSummary,
) error {
	n.log.Debug().
		Int64("recipient_id", recipientID).
		Str("event", string(kind)).
		Str("session_id", summary.SessionID.String()).
		Msg("dispatching booking notification")

	return n.pusher.Push(recipientID, notificationPayload{
		Type:    "booking_event",
		Event:   kind,
		Session: summary,
	})
}
