package duty

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestTotalMinutesClosedInterval(t *testing.T) {
	records := []Record{{Date: "2024-06-30", ComingTime: "08:30", FinishingTime: "17:00"}}
	got := TotalMinutes(records, mustTime(t, "2024-07-15 12:00"))
	if got != 510 {
		t.Fatalf("expected 510 minutes, got %d", got)
	}
}

func TestTotalMinutesOpenShiftToday(t *testing.T) {
	asOf := mustTime(t, "2024-06-30 09:45")
	records := []Record{{Date: "2024-06-30", ComingTime: "09:00"}}
	if got := TotalMinutes(records, asOf); got != 45 {
		t.Fatalf("expected 45 live minutes, got %d", got)
	}
}

func TestTotalMinutesOpenShiftPastDateIgnored(t *testing.T) {
	asOf := mustTime(t, "2024-07-02 10:00")
	records := []Record{{Date: "2024-06-30", ComingTime: "09:00"}}
	if got := TotalMinutes(records, asOf); got != 0 {
		t.Fatalf("open shift on a past date must not count, got %d", got)
	}
}

func TestTotalMinutesEmptyRecord(t *testing.T) {
	records := []Record{{Date: "2024-06-30"}}
	if got := TotalMinutes(records, mustTime(t, "2024-06-30 10:00")); got != 0 {
		t.Fatalf("record with no times must contribute 0, got %d", got)
	}
}

func TestTotalMinutesNegativeClamped(t *testing.T) {
	records := []Record{{Date: "2024-06-30", ComingTime: "17:00", FinishingTime: "08:30"}}
	if got := TotalMinutes(records, mustTime(t, "2024-07-01 10:00")); got != 0 {
		t.Fatalf("inverted interval must clamp to 0, got %d", got)
	}
}

func TestTotalMinutesMalformedSkipped(t *testing.T) {
	records := []Record{
		{Date: "2024-06-30", ComingTime: "8h30", FinishingTime: "17:00"},
		{Date: "2024-06-30", ComingTime: "09:00", FinishingTime: "10:00"},
	}
	if got := TotalMinutes(records, mustTime(t, "2024-07-01 10:00")); got != 60 {
		t.Fatalf("malformed record must be skipped, got %d", got)
	}
}

func TestTotalMinutesMonotonicOpenShift(t *testing.T) {
	records := []Record{{Date: "2024-06-30", ComingTime: "09:00"}}
	earlier := TotalMinutes(records, mustTime(t, "2024-06-30 10:00"))
	later := TotalMinutes(records, mustTime(t, "2024-06-30 11:30"))
	if later <= earlier {
		t.Fatalf("open shift must grow with asOf: %d then %d", earlier, later)
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "0 hours"},
		{45, "45 min"},
		{60, "1 hours"},
		{120, "2 hours"},
		{510, "8h 30m"},
		{61, "1h 1m"},
	}
	for _, tc := range cases {
		if got := FormatMinutes(tc.minutes); got != tc.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestStatus(t *testing.T) {
	asOf := mustTime(t, "2024-06-30 12:00")
	cases := []struct {
		name    string
		records []Record
		want    string
	}{
		{"no records", nil, StatusNotToday},
		{"no record today", []Record{{Date: "2024-06-29", ComingTime: "08:00", FinishingTime: "12:00"}}, StatusNotToday},
		{"checked in", []Record{{Date: "2024-06-30", ComingTime: "08:00"}}, StatusActive},
		{"checked out", []Record{{Date: "2024-06-30", ComingTime: "08:00", FinishingTime: "11:00"}}, StatusCompleted},
		{"empty today record", []Record{{Date: "2024-06-30"}}, StatusNotStarted},
	}
	for _, tc := range cases {
		if got := Status(tc.records, asOf); got != tc.want {
			t.Errorf("%s: Status = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestAge(t *testing.T) {
	dob := mustTime(t, "2010-09-15 00:00")
	if got := Age(dob, mustTime(t, "2025-09-14 00:00")); got != 14 {
		t.Errorf("day before birthday: got %d, want 14", got)
	}
	if got := Age(dob, mustTime(t, "2025-09-15 00:00")); got != 15 {
		t.Errorf("on birthday: got %d, want 15", got)
	}
	if got := Age(dob, mustTime(t, "2026-01-01 00:00")); got != 15 {
		t.Errorf("after birthday: got %d, want 15", got)
	}
}
