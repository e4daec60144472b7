package wallclock

import (
	"errors"
	"testing"
	"time"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestToInstantInterpretsWallClockInZone(t *testing.T) {
	// March 15 2026 is past the US spring-forward, so New York is UTC-4.
	instant, err := ToInstant("2026-03-15T14:00", "America/New_York")
	if err != nil {
		t.Fatalf("ToInstant: %v", err)
	}
	want := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)
	if !instant.Equal(want) {
		t.Fatalf("expected %v, got %v", want, instant)
	}
}

func TestToInstantUsesStandardOffsetInWinter(t *testing.T) {
	instant, err := ToInstant("2026-01-15T14:00", "America/New_York")
	if err != nil {
		t.Fatalf("ToInstant: %v", err)
	}
	want := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)
	if !instant.Equal(want) {
		t.Fatalf("expected %v, got %v", want, instant)
	}
}

func TestFromInstantRendersInViewerZone(t *testing.T) {
	instant := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)

	rendered, err := FromInstant(instant, "Asia/Tokyo")
	if err != nil {
		t.Fatalf("FromInstant: %v", err)
	}
	if rendered != "2026-03-16T03:00" {
		t.Fatalf("expected 2026-03-16T03:00, got %s", rendered)
	}
}

func TestRoundTripPreservesWallClock(t *testing.T) {
	cases := []struct {
		value string
		tz    string
	}{
		{"2026-03-15T14:00", "America/New_York"},
		{"2026-03-16T03:00", "Asia/Tokyo"},
		{"2026-12-31T23:45", "Pacific/Auckland"},
		{"2026-06-01T00:15", "Europe/Berlin"},
		{"2026-11-01T01:30", "UTC"},
	}
	for _, tc := range cases {
		instant, err := ToInstant(tc.value, tc.tz)
		if err != nil {
			t.Fatalf("ToInstant(%s, %s): %v", tc.value, tc.tz, err)
		}
		back, err := FromInstant(instant, tc.tz)
		if err != nil {
			t.Fatalf("FromInstant(%s): %v", tc.tz, err)
		}
		if back != tc.value {
			t.Fatalf("round trip in %s: entered %s, got back %s", tc.tz, tc.value, back)
		}
	}
}

func TestToInstantRejectsSpringForwardGap(t *testing.T) {
	// 02:30 on March 8 2026 never occurs in New York.
	_, err := ToInstant("2026-03-08T02:30", "America/New_York")
	if !errors.Is(err, ErrInvalidWallClock) {
		t.Fatalf("expected ErrInvalidWallClock, got %v", err)
	}
}

func TestToInstantRejectsMalformedInput(t *testing.T) {
	for _, value := range []string{"", "tomorrow at noon", "2026-13-01T10:00", "2026-03-15 14:00"} {
		if _, err := ToInstant(value, "America/New_York"); !errors.Is(err, ErrInvalidWallClock) {
			t.Fatalf("expected ErrInvalidWallClock for %q, got %v", value, err)
		}
	}
}

func TestToInstantRejectsUnknownTimezone(t *testing.T) {
	for _, tz := range []string{"", "Local", "America/Atlantis"} {
		if _, err := ToInstant("2026-03-15T14:00", tz); !errors.Is(err, ErrInvalidTimezone) {
			t.Fatalf("expected ErrInvalidTimezone for %q, got %v", tz, err)
		}
	}
}

func TestFormatForDisplay(t *testing.T) {
	instant := time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)

	rendered, err := FormatForDisplay(instant, "Asia/Tokyo")
	if err != nil {
		t.Fatalf("FormatForDisplay: %v", err)
	}
	if rendered != "Mar 16, 2026 3:00 AM JST" {
		t.Fatalf("unexpected rendering: %s", rendered)
	}
}

func TestCurrentWallClock(t *testing.T) {
	clk := fixedClock{now: time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)}

	rendered, err := CurrentWallClock(clk, "America/New_York")
	if err != nil {
		t.Fatalf("CurrentWallClock: %v", err)
	}
	if rendered != "2026-03-15T14:00" {
		t.Fatalf("expected 2026-03-15T14:00, got %s", rendered)
	}

	if _, err := CurrentWallClock(clk, "Not/AZone"); !errors.Is(err, ErrInvalidTimezone) {
		t.Fatalf("expected ErrInvalidTimezone, got %v", err)
	}
}
