// Package duty computes derived attendance metrics. Every duty figure the
// API returns is recomputed here on read; persisted totals are never trusted.
package duty

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used by attendance records.
const DateLayout = "2006-01-02"

// ClockLayout is the check-in/check-out time-of-day format.
const ClockLayout = "15:04"

// Record is one calendar-date attendance entry. At most one record exists
// per date; comingTime and finishingTime may be empty independently.
type Record struct {
	Date          string `json:"date"`
	ComingTime    string `json:"comingTime"`
	FinishingTime string `json:"finishingTime"`
	DutySchedule  string `json:"dutySchedule,omitempty"`
}

// TotalMinutes sums duty minutes over an attendance log. A record with both
// times counts the closed interval; a record with only a check-in counts the
// live elapsed time up to asOf, but only when its date is asOf's date.
// Malformed entries contribute zero, and negative intervals clamp to zero.
func TotalMinutes(records []Record, asOf time.Time) int {
	today := asOf.Format(DateLayout)
	total := 0
	for _, rec := range records {
		switch {
		case rec.ComingTime != "" && rec.FinishingTime != "":
			start, ok1 := clockMinutes(rec.ComingTime)
			end, ok2 := clockMinutes(rec.FinishingTime)
			if !ok1 || !ok2 {
				continue
			}
			if d := end - start; d > 0 {
				total += d
			}
		case rec.ComingTime != "" && rec.Date == today:
			start, err := time.ParseInLocation(DateLayout+" "+ClockLayout, rec.Date+" "+rec.ComingTime, asOf.Location())
			if err != nil {
				continue
			}
			if d := int(asOf.Sub(start).Minutes()); d > 0 {
				total += d
			}
		}
	}
	return total
}

// FormatMinutes renders a minute total the way the dashboards display it.
// Exact-hour values read "N hours" for any N; that wording is load-bearing
// for existing consumers, so it stays.
func FormatMinutes(minutes int) string {
	if minutes == 0 {
		return "0 hours"
	}
	hours := minutes / 60
	rem := minutes % 60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d min", rem)
	case rem == 0:
		return fmt.Sprintf("%d hours", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, rem)
	}
}

// Working-status labels shown on the status page and dashboards.
const (
	StatusNotStarted = "Not Started"
	StatusNotToday   = "Not Started Today"
	StatusActive     = "Active"
	StatusCompleted  = "Completed Today"
)

// Status reports where a scout stands today: checked in with no check-out is
// Active, both recorded is Completed Today.
func Status(records []Record, asOf time.Time) string {
	today := asOf.Format(DateLayout)
	for _, rec := range records {
		if rec.Date != today {
			continue
		}
		if rec.ComingTime != "" && rec.FinishingTime == "" {
			return StatusActive
		}
		if rec.ComingTime != "" && rec.FinishingTime != "" {
			return StatusCompleted
		}
		return StatusNotStarted
	}
	return StatusNotToday
}

// Age returns whole years between a date of birth and a reference date,
// accounting for whether the birthday has passed this year.
func Age(dateOfBirth, today time.Time) int {
	age := today.Year() - dateOfBirth.Year()
	if today.Month() < dateOfBirth.Month() ||
		(today.Month() == dateOfBirth.Month() && today.Day() < dateOfBirth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func clockMinutes(clock string) (int, bool) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
