// Package wallclock converts between absolute UTC instants and the local
// wall-clock values users type and read. Every local-to-UTC conversion in
// the application goes through ToInstant with an explicit IANA zone; nothing
// else may interpret a wall-clock string, and nothing stores one.
package wallclock

import (
	"errors"
	"strings"
	"time"

	"github.com/r-madani/CoachPortalBack/internal/clock"
)

// Layout matches HTML datetime-local input, e.g. "2026-03-15T14:00".
const Layout = "2006-01-02T15:04"

// DisplayLayout is the human form used in confirmation dialogs,
// e.g. "Mar 16, 2026 3:00 AM JST".
const DisplayLayout = "Jan 2, 2006 3:04 PM MST"

var (
	ErrInvalidTimezone  = errors.New("invalid timezone")
	ErrInvalidWallClock = errors.New("invalid wall clock value")
)

// LoadLocation resolves an IANA timezone identifier. Empty identifiers and
// lookup failures both return ErrInvalidTimezone; "Local" is rejected too,
// since a server-local zone is never a meaningful user zone.
func LoadLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" || tz == "Local" {
		return nil, ErrInvalidTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, ErrInvalidTimezone
	}
	return loc, nil
}

// ToInstant interprets a wall-clock value entered in the given zone and
// returns the UTC instant it denotes. Values inside a spring-forward gap do
// not denote any instant and are rejected rather than normalized, so that
// FromInstant(ToInstant(v, tz), tz) == v always holds for accepted input.
func ToInstant(value, tz string) (time.Time, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, ErrInvalidWallClock
	}
	if t.Format(Layout) != strings.TrimSpace(value) {
		return time.Time{}, ErrInvalidWallClock
	}
	return t.UTC(), nil
}

// FromInstant renders a UTC instant as the wall-clock value a user in the
// given zone would read. Total for any instant once the zone resolves.
func FromInstant(instant time.Time, tz string) (string, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return instant.In(loc).Format(Layout), nil
}

// FormatForDisplay renders an instant in the given zone using the dialog
// display form, with the zone abbreviation attached.
func FormatForDisplay(instant time.Time, tz string) (string, error) {
	loc, err := LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return instant.In(loc).Format(DisplayLayout), nil
}

// CurrentWallClock renders the clock's current instant in the given zone.
// Backs the timezone picker's live-clock preview.
func CurrentWallClock(c clock.Clock, tz string) (string, error) {
	return FromInstant(c.Now(), tz)
}
