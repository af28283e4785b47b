package progress

import "time"

// DefaultCutoverHour is the local hour at which a new practice day starts.
// Practice done at 1 AM still counts toward the previous evening.
const DefaultCutoverHour = 4

// DateLayout formats practice dates in keys and payloads.
const DateLayout = "2006-01-02"

// PracticeDate returns the calendar date a timestamp belongs to when days
// roll over at cutoverHour in loc instead of midnight. A nil loc means UTC.
// The result is midnight UTC of that date so dates compare and serialize
// without zones.
func PracticeDate(ts time.Time, cutoverHour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	shifted := ts.In(loc).Add(-time.Duration(cutoverHour) * time.Hour)
	y, m, d := shifted.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayDiff returns the number of calendar days from a to b, ignoring the
// time of day and zone offsets.
func DayDiff(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// DateKey formats a practice date for use in cache keys.
func DateKey(date time.Time) string {
	return date.Format(DateLayout)
}

// ParseDate reads a DateLayout date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Calendar maps timestamps to practice dates for one deployment.
type Calendar struct {
	CutoverHour int
	Location    *time.Location
}

// DefaultCalendar rolls over at DefaultCutoverHour UTC.
func DefaultCalendar() Calendar {
	return Calendar{CutoverHour: DefaultCutoverHour, Location: time.UTC}
}

// Date returns the practice date of ts.
func (c Calendar) Date(ts time.Time) time.Time {
	return PracticeDate(ts, c.CutoverHour, c.Location)
}

// NextDayStart returns the instant the practice day after date begins,
// which is when that date's missions expire.
func (c Calendar) NextDayStart(date time.Time) time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	return time.Date(y, m, d+1, c.CutoverHour, 0, 0, 0, loc)
}
