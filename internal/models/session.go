package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies which side of the client/coach pair a participant is on.
type Role string

const (
	RoleClient Role = "client"
	RoleCoach  Role = "coach"
)

// ParseRole returns the role for a raw string, or false when the string is
// not one of the two participant roles.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleClient:
		return RoleClient, true
	case RoleCoach:
		return RoleCoach, true
	default:
		return "", false
	}
}

// Counterpart returns the opposite participant role.
func (r Role) Counterpart() Role {
	if r == RoleClient {
		return RoleCoach
	}
	return RoleClient
}

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleCoach
}

type SessionStatus string

const (
	StatusPendingConfirmation SessionStatus = "pending_confirmation"
	StatusScheduled           SessionStatus = "scheduled"
	StatusCompleted           SessionStatus = "completed"
	StatusCancelled           SessionStatus = "cancelled"
)

// CanTransition reports whether a session status may move from one value to
// another. The graph is strictly forward: pending_confirmation feeds
// scheduled or cancelled, scheduled feeds completed or cancelled, and the
// two terminal states feed nothing.
func CanTransition(from, to SessionStatus) bool {
	switch from {
	case StatusPendingConfirmation:
		return to == StatusScheduled || to == StatusCancelled
	case StatusScheduled:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// Session is a proposed or booked meeting between one client and one coach.
// ScheduledAt and CreatedAt are always UTC instants; wall-clock rendering
// happens at the edges via the wallclock package.
type Session struct {
	ID              uuid.UUID     `json:"id"`
	ClientID        int64         `json:"client_id"`
	CoachID         int64         `json:"coach_id"`
	Title           string        `json:"title"`
	Description     *string       `json:"description"`
	ScheduledAt     time.Time     `json:"scheduled_at"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          SessionStatus `json:"status"`
	RequestedBy     Role          `json:"requested_by"`
	MeetingLink     *string       `json:"meeting_link"`
	PrepNotes       *string       `json:"prep_notes"`
	CancelReason    *string       `json:"cancel_reason"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// End is the instant the session finishes.
func (s *Session) End() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// EffectiveStatus derives completion from elapsed time: a scheduled session
// whose end has passed reads as completed even before the sweep persists it.
// The stored completed value is a cache of this derivation.
func (s *Session) EffectiveStatus(now time.Time) SessionStatus {
	if s.Status == StatusScheduled && !s.End().After(now) {
		return StatusCompleted
	}
	return s.Status
}

// RoleOf reports which side of the session the given user is on, and false
// when the user is not a participant.
func (s *Session) RoleOf(userID int64) (Role, bool) {
	switch userID {
	case s.ClientID:
		return RoleClient, true
	case s.CoachID:
		return RoleCoach, true
	default:
		return "", false
	}
}

// ParticipantID returns the user id holding the given role on this session.
func (s *Session) ParticipantID(role Role) int64 {
	if role == RoleClient {
		return s.ClientID
	}
	return s.CoachID
}
