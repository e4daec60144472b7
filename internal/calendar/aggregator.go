// Package calendar buckets an unordered session list into renderer-ready
// week, month, and year grids. All bucketing happens on calendar dates in
// the viewing user's timezone; the sessions themselves stay UTC.
package calendar

import (
	"errors"
	"sort"
	"time"

	"github.com/r-madani/CoachPortalBack/internal/models"
)

type ViewKind string

const (
	ViewWeek  ViewKind = "week"
	ViewMonth ViewKind = "month"
	ViewYear  ViewKind = "year"
)

func ParseViewKind(raw string) (ViewKind, bool) {
	switch ViewKind(raw) {
	case ViewWeek, ViewMonth, ViewYear:
		return ViewKind(raw), true
	default:
		return "", false
	}
}

var ErrUnknownView = errors.New("unknown calendar view")

// monthCellLimit caps how many sessions a month-view day cell lists; the
// remainder is reported through OverflowCount.
const monthCellLimit = 2

// yearIndicatorLimit caps the per-month status dots in the year view.
const yearIndicatorLimit = 3

// DayCell is one day of a week or month grid. Sessions are ordered by
// ScheduledAt ascending; in month view the list is truncated to
// monthCellLimit entries with the remainder counted in OverflowCount.
type DayCell struct {
	Date          string           `json:"date"` // YYYY-MM-DD in the viewer's zone
	IsToday       bool             `json:"is_today"`
	Dimmed        bool             `json:"dimmed"` // outside the anchor month
	Sessions      []models.Session `json:"sessions"`
	OverflowCount int              `json:"overflow_count"`
	TotalCount    int              `json:"total_count"`
}

// MonthCell is one month of the year grid: a count plus up to
// yearIndicatorLimit status values for the dot indicator.
type MonthCell struct {
	Month      time.Month             `json:"month"`
	Count      int                    `json:"count"`
	Indicators []models.SessionStatus `json:"indicators"`
	ExtraCount int                    `json:"extra_count"`
}

// Grid is the renderer-ready result of Build. Days is populated for week
// (exactly 7 cells) and month (a whole number of 7-day rows); Months is
// populated for year.
type Grid struct {
	View   ViewKind    `json:"view"`
	Anchor string      `json:"anchor"` // YYYY-MM-DD
	Days   []DayCell   `json:"days,omitempty"`
	Months []MonthCell `json:"months,omitempty"`
}

const dateKey = "2006-01-02"

// Build buckets sessions into the requested view around anchor. The anchor
// and now are interpreted as dates in loc; sessions land on the date their
// ScheduledAt falls on when converted into loc.
func Build(sessions []models.Session, view ViewKind, anchor time.Time, loc *time.Location, now time.Time) (*Grid, error) {
	anchorDate := dateOf(anchor, loc)
	grid := &Grid{View: view, Anchor: anchorDate.Format(dateKey)}

	ordered := make([]models.Session, len(sessions))
	copy(ordered, sessions)
	// Stable: sessions sharing an instant keep their incoming order, since
	// no secondary key would be meaningful.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ScheduledAt.Before(ordered[j].ScheduledAt)
	})

	switch view {
	case ViewWeek:
		grid.Days = buildDays(ordered, startOfWeek(anchorDate), 7, loc, now, nil)
	case ViewMonth:
		first := startOfMonth(anchorDate)
		last := endOfMonth(anchorDate)
		start := startOfWeek(first)
		end := endOfWeek(last)
		// Count cells by civil date, not elapsed hours: a DST shift inside
		// the window would skew a duration-based count.
		days := 0
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			days++
		}
		grid.Days = buildDays(ordered, start, days, loc, now, &anchorDate)
	case ViewYear:
		grid.Months = buildMonths(ordered, anchorDate.Year(), loc)
	default:
		return nil, ErrUnknownView
	}
	return grid, nil
}

func buildDays(ordered []models.Session, start time.Time, count int, loc *time.Location, now time.Time, anchorMonth *time.Time) []DayCell {
	byDate := make(map[string][]models.Session)
	for _, s := range ordered {
		key := s.ScheduledAt.In(loc).Format(dateKey)
		byDate[key] = append(byDate[key], s)
	}
	today := dateOf(now, loc).Format(dateKey)

	cells := make([]DayCell, 0, count)
	for i := 0; i < count; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format(dateKey)
		bucket := byDate[key]

		cell := DayCell{
			Date:       key,
			IsToday:    key == today,
			Sessions:   bucket,
			TotalCount: len(bucket),
		}
		if cell.Sessions == nil {
			cell.Sessions = []models.Session{}
		}
		if anchorMonth != nil {
			cell.Dimmed = day.Month() != anchorMonth.Month() || day.Year() != anchorMonth.Year()
			if len(bucket) > monthCellLimit {
				cell.Sessions = bucket[:monthCellLimit]
				cell.OverflowCount = len(bucket) - monthCellLimit
			}
		}
		cells = append(cells, cell)
	}
	return cells
}

func buildMonths(ordered []models.Session, year int, loc *time.Location) []MonthCell {
	byMonth := make(map[time.Month][]models.Session)
	for _, s := range ordered {
		local := s.ScheduledAt.In(loc)
		if local.Year() == year {
			byMonth[local.Month()] = append(byMonth[local.Month()], s)
		}
	}

	cells := make([]MonthCell, 0, 12)
	for m := time.January; m <= time.December; m++ {
		bucket := byMonth[m]
		cell := MonthCell{Month: m, Count: len(bucket), Indicators: []models.SessionStatus{}}
		limit := len(bucket)
		if limit > yearIndicatorLimit {
			limit = yearIndicatorLimit
			cell.ExtraCount = len(bucket) - yearIndicatorLimit
		}
		for _, s := range bucket[:limit] {
			cell.Indicators = append(cell.Indicators, s.Status)
		}
		cells = append(cells, cell)
	}
	return cells
}

// dateOf truncates an instant to midnight of its calendar date in loc.
func dateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// Weeks start on Sunday.
func startOfWeek(date time.Time) time.Time {
	return date.AddDate(0, 0, -int(date.Weekday()))
}

func endOfWeek(date time.Time) time.Time {
	return date.AddDate(0, 0, 6-int(date.Weekday()))
}

func startOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

func endOfMonth(date time.Time) time.Time {
	return startOfMonth(date).AddDate(0, 1, -1)
}
