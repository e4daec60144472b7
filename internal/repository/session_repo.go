package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/r-madani/CoachPortalBack/internal/models"
)

type CreateSessionInput struct {
	ClientID        int64
	CoachID         int64
	Title           string
	Description     *string
	ScheduledAt     time.Time
	DurationMinutes int
	RequestedBy     models.Role
	MeetingLink     *string
	PrepNotes       *string
}

type SessionListFilter struct {
	ActorID   int64
	Role      models.Role
	Status    models.SessionStatus
	Timeframe string // "", "upcoming", "past"
}

const sessionColumns = `id, client_id, coach_id, title, description, scheduled_at, duration_min,
		status, requested_by, meeting_link, prep_notes, cancel_reason, created_at, updated_at`

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(
	ctx context.Context,
	input CreateSessionInput,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		INSERT INTO sessions (id, client_id, coach_id, title, description, scheduled_at, duration_min, status, requested_by, meeting_link, prep_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending_confirmation', $8, $9, $10)
		RETURNING %s
	`, sessionColumns)

	return r.scanOne(r.db.QueryRow(
		ctx,
		query,
		uuid.New(),
		input.ClientID,
		input.CoachID,
		input.Title,
		input.Description,
		input.ScheduledAt.UTC(),
		input.DurationMinutes,
		input.RequestedBy,
		input.MeetingLink,
		input.PrepNotes,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE id = $1
	`, sessionColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) ListByParticipant(
	ctx context.Context,
	filter SessionListFilter,
) ([]models.Session, error) {
	actorColumn := "client_id"
	if filter.Role == models.RoleCoach {
		actorColumn = "coach_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if filter.Status != "" {
		args = append(args, filter.Status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) > NOW()",
		)
	case "past":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) <= NOW()",
		)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY scheduled_at ASC, created_at ASC
	`, sessionColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateStatusIfCurrent moves the status only when the stored value still
// equals currentStatus, in a single statement. This compare-and-set is what
// the concurrent-transition guarantees rest on: of two racing transitions,
// one matches and wins, the other scans pgx.ErrNoRows.
func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	sessionID uuid.UUID,
	currentStatus models.SessionStatus,
	nextStatus models.SessionStatus,
	cancelReason *string,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = $3, cancel_reason = COALESCE($4, cancel_reason), updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, sessionColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, sessionID, currentStatus, nextStatus, cancelReason))
}

// MarkElapsedCompleted persists the derived completed status for scheduled
// sessions whose end time has passed. Returns how many rows were promoted.
func (r *SessionRepository) MarkElapsedCompleted(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE sessions
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'scheduled'
		  AND (scheduled_at + (duration_min * INTERVAL '1 minute')) <= $1
	`
	tag, err := r.db.Exec(ctx, query, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SessionRepository) scanOne(row rowScanner) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.ClientID,
		&session.CoachID,
		&session.Title,
		&session.Description,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.Status,
		&session.RequestedBy,
		&session.MeetingLink,
		&session.PrepNotes,
		&session.CancelReason,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
