package domain

import "time"

// StartOfDay truncates t to 00:00:00 UTC of its calendar date. All core
// date arithmetic is UTC-only; local-time display is a UI concern.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth truncates t to 00:00:00 UTC on the 1st of its month.
func StartOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfHour truncates t to the top of its UTC hour.
func StartOfHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// AtHour returns t's UTC calendar date at the given hour.
func AtHour(t time.Time, hour int) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), hour, 0, 0, 0, time.UTC)
}

// HoursSinceEpoch returns the number of whole hours between the Unix epoch
// and t. Used to position the random stream absolutely in time.
func HoursSinceEpoch(t time.Time) int64 {
	return t.Unix() / 3600
}

// MonthKey renders t's UTC year-month, the grouping key for cumulative
// monthly aggregation.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// SeriesBounds resolves the first and last hourly instant a range covers.
// Hour-aligned From instants are kept exactly, because lookback extension
// produces them; anything else snaps to StartHour on From's date. The last
// hour is always EndHour on To's date.
func SeriesBounds(r TimeRange) (time.Time, time.Time) {
	start := r.From.UTC()
	if !start.Equal(StartOfHour(start)) {
		start = AtHour(start, r.StartHour)
	}
	return start, AtHour(r.To, r.EndHour)
}
