package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/r-madani/CoachPortalBack/internal/models"
	"github.com/r-madani/CoachPortalBack/internal/repository"
	"github.com/r-madani/CoachPortalBack/internal/services"
)

type stubSessionLister struct {
	views []services.SessionView
	err   error
}

func (s *stubSessionLister) List(_ context.Context, _ int64, _ models.Role, _ repository.SessionListFilter) ([]services.SessionView, error) {
	return s.views, s.err
}

type calendarClock struct {
	now time.Time
}

func (c calendarClock) Now() time.Time {
	return c.now
}

var calendarNow = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

func setupCalendarApp(sessions sessionLister, users timezoneDirectory, locals map[string]string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		for key, value := range locals {
			c.Locals(key, value)
		}
		return c.Next()
	})

	h := NewCalendarHandler(sessions, users, calendarClock{now: calendarNow})
	app.Get("/calendar", h.GetCalendar)
	app.Get("/clock", h.GetLiveClock)
	return app
}

func calendarView(status, effective models.SessionStatus, at time.Time) services.SessionView {
	return services.SessionView{
		Session: models.Session{
			ID:              uuid.New(),
			ClientID:        42,
			CoachID:         7,
			Title:           "Check-in",
			ScheduledAt:     at,
			DurationMinutes: 60,
			Status:          status,
			RequestedBy:     models.RoleClient,
		},
		EffectiveStatus: effective,
	}
}

type calendarResponse struct {
	Calendar struct {
		View string `json:"view"`
		Days []struct {
			Date     string           `json:"date"`
			IsToday  bool             `json:"is_today"`
			Sessions []models.Session `json:"sessions"`
		} `json:"days"`
	} `json:"calendar"`
	Navigation struct {
		Previous string `json:"previous"`
		Next     string `json:"next"`
		Today    string `json:"today"`
	} `json:"navigation"`
}

func getCalendar(t *testing.T, app *fiber.App, path string) (*calendarResponse, int) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		return nil, resp.StatusCode
	}
	var parsed calendarResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &parsed, resp.StatusCode
}

func TestGetCalendarWeekView(t *testing.T) {
	sessions := &stubSessionLister{views: []services.SessionView{
		calendarView(models.StatusScheduled, models.StatusScheduled,
			time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)),
	}}
	locals := authedLocals()
	locals["timezone"] = "America/New_York"
	app := setupCalendarApp(sessions, &stubUserDirectory{}, locals)

	parsed, status := getCalendar(t, app, "/calendar?view=week&anchor=2026-03-18")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(parsed.Calendar.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(parsed.Calendar.Days))
	}
	if parsed.Calendar.Days[0].Date != "2026-03-15" {
		t.Fatalf("week must start Sunday, got %s", parsed.Calendar.Days[0].Date)
	}
	if len(parsed.Calendar.Days[0].Sessions) != 1 {
		t.Fatalf("expected session bucketed on Mar 15, got %d", len(parsed.Calendar.Days[0].Sessions))
	}
	if parsed.Navigation.Previous != "2026-03-11" || parsed.Navigation.Next != "2026-03-25" {
		t.Fatalf("navigation wrong: %+v", parsed.Navigation)
	}
	if parsed.Navigation.Today != "2026-03-18" {
		t.Fatalf("today anchor wrong: %s", parsed.Navigation.Today)
	}
}

func TestGetCalendarDefaultsToMonthAndToday(t *testing.T) {
	locals := authedLocals()
	locals["timezone"] = "America/New_York"
	app := setupCalendarApp(&stubSessionLister{}, &stubUserDirectory{}, locals)

	parsed, status := getCalendar(t, app, "/calendar")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if parsed.Calendar.View != "month" {
		t.Fatalf("expected month default, got %s", parsed.Calendar.View)
	}
	// March 2026 runs Sunday Mar 1 through Tuesday Mar 31; the grid pads to
	// Saturday Apr 4.
	if len(parsed.Calendar.Days) != 35 {
		t.Fatalf("expected 35 cells, got %d", len(parsed.Calendar.Days))
	}
	foundToday := false
	for _, day := range parsed.Calendar.Days {
		if day.IsToday {
			foundToday = true
			if day.Date != "2026-03-18" {
				t.Fatalf("today flag on %s", day.Date)
			}
		}
	}
	if !foundToday {
		t.Fatal("no cell flagged today")
	}
}

func TestGetCalendarShowsDerivedStatus(t *testing.T) {
	// Stored scheduled, derived completed: the grid must show completed.
	sessions := &stubSessionLister{views: []services.SessionView{
		calendarView(models.StatusScheduled, models.StatusCompleted,
			time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)),
	}}
	locals := authedLocals()
	locals["timezone"] = "America/New_York"
	app := setupCalendarApp(sessions, &stubUserDirectory{}, locals)

	parsed, status := getCalendar(t, app, "/calendar?view=week&anchor=2026-03-10")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var found *models.Session
	for _, day := range parsed.Calendar.Days {
		for i := range day.Sessions {
			found = &day.Sessions[i]
		}
	}
	if found == nil {
		t.Fatal("session missing from grid")
	}
	if found.Status != models.StatusCompleted {
		t.Fatalf("expected derived completed in grid, got %s", found.Status)
	}
}

func TestGetCalendarBucketsInViewerZone(t *testing.T) {
	// 18:00 UTC on Mar 15 is already Mar 16 in Tokyo.
	sessions := &stubSessionLister{views: []services.SessionView{
		calendarView(models.StatusScheduled, models.StatusScheduled,
			time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)),
	}}
	locals := authedLocals()
	locals["timezone"] = "Asia/Tokyo"
	app := setupCalendarApp(sessions, &stubUserDirectory{}, locals)

	parsed, status := getCalendar(t, app, "/calendar?view=week&anchor=2026-03-16")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	for _, day := range parsed.Calendar.Days {
		if len(day.Sessions) == 0 {
			continue
		}
		if day.Date != "2026-03-16" {
			t.Fatalf("expected bucket Mar 16 in Tokyo, got %s", day.Date)
		}
		return
	}
	t.Fatal("session missing from grid")
}

func TestGetCalendarRejectsBadInput(t *testing.T) {
	locals := authedLocals()
	locals["timezone"] = "America/New_York"
	app := setupCalendarApp(&stubSessionLister{}, &stubUserDirectory{}, locals)

	for _, path := range []string{
		"/calendar?view=decade",
		"/calendar?anchor=March-1st",
	} {
		_, status := getCalendar(t, app, path)
		if status != fiber.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, status)
		}
	}
}

func TestGetCalendarFallsBackToStoredTimezone(t *testing.T) {
	users := &stubUserDirectory{user: &models.User{ID: 42, Timezone: "Asia/Tokyo"}}
	app := setupCalendarApp(&stubSessionLister{}, users, authedLocals())

	parsed, status := getCalendar(t, app, "/calendar?view=week")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	// Noon UTC Mar 18 is already Mar 18 evening in Tokyo; the Tokyo week
	// containing it starts Sunday Mar 15.
	if parsed.Calendar.Days[0].Date != "2026-03-15" {
		t.Fatalf("week start wrong: %s", parsed.Calendar.Days[0].Date)
	}
}

func TestGetCalendarRequiresResolvableTimezone(t *testing.T) {
	// No header zone and no usable stored preference.
	users := &stubUserDirectory{user: &models.User{ID: 42, Timezone: ""}}
	app := setupCalendarApp(&stubSessionLister{}, users, authedLocals())

	_, status := getCalendar(t, app, "/calendar")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unresolvable zone, got %d", status)
	}
}

func TestGetLiveClock(t *testing.T) {
	app := setupCalendarApp(&stubSessionLister{}, &stubUserDirectory{}, authedLocals())

	req := httptest.NewRequest("GET", "/clock?tz=Asia/Tokyo", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var parsed struct {
		Timezone string `json:"timezone"`
		Now      string `json:"now"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Noon UTC on Mar 18 is 9 PM the same day in Tokyo. The picker consumes
	// the same datetime-local form the scheduling inputs use.
	if parsed.Now != "2026-03-18T21:00" {
		t.Fatalf("rendering wrong: %q", parsed.Now)
	}

	req = httptest.NewRequest("GET", "/clock?tz=Mars/Olympus", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown zone, got %d", resp.StatusCode)
	}
}
