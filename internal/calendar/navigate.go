package calendar

import "time"

// NextAnchor shifts the anchor forward by one unit of the view: seven days
// for week, one calendar month for month, one year for year.
func NextAnchor(view ViewKind, anchor time.Time, loc *time.Location) time.Time {
	return shiftAnchor(view, anchor, loc, 1)
}

// PreviousAnchor shifts the anchor backward by one unit of the view.
func PreviousAnchor(view ViewKind, anchor time.Time, loc *time.Location) time.Time {
	return shiftAnchor(view, anchor, loc, -1)
}

// TodayAnchor resets the anchor to the current date in the viewer's zone.
func TodayAnchor(now time.Time, loc *time.Location) time.Time {
	return dateOf(now, loc)
}

func shiftAnchor(view ViewKind, anchor time.Time, loc *time.Location, direction int) time.Time {
	date := dateOf(anchor, loc)
	switch view {
	case ViewWeek:
		return date.AddDate(0, 0, 7*direction)
	case ViewMonth:
		return addMonthsClamped(date, direction)
	case ViewYear:
		return addYearsClamped(date, direction)
	default:
		return date
	}
}

// addMonthsClamped moves by whole calendar months, clamping the day of month
// to the target month's length. time.AddDate would normalize Jan 31 plus one
// month into March; here it resolves to the last day of February.
func addMonthsClamped(date time.Time, months int) time.Time {
	firstOfTarget := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location()).AddDate(0, months, 0)
	day := date.Day()
	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month(), date.Location()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, date.Location())
}

// addYearsClamped handles the one day that needs it: Feb 29.
func addYearsClamped(date time.Time, years int) time.Time {
	year := date.Year() + years
	day := date.Day()
	if last := daysInMonth(year, date.Month(), date.Location()); day > last {
		day = last
	}
	return time.Date(year, date.Month(), day, 0, 0, 0, 0, date.Location())
}

func daysInMonth(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, 1, -1).Day()
}
