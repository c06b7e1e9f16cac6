// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package settlement

import (
	"fmt"
	"time"

	"github.com/tomtom215/playledger/internal/models"
)

// MaxRangeDays bounds the dates accepted by DatesBetween.
const MaxRangeDays = 366

// LocalDate returns the store-local calendar date of ts: the UTC instant
// shifted by the fixed regional offset, truncated to the date.
//
//	LocalDate(2024-03-01T15:30:00Z, 9*time.Hour) == "2024-03-02"
func LocalDate(ts time.Time, offset time.Duration) string {
	return ts.UTC().Add(offset).Format(models.DateLayout)
}

// ParseDate validates a YYYY-MM-DD store-local date.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", date, err)
	}
	return d, nil
}

// DayWindow returns the UTC instants [start, end] covering one store-local
// date, end inclusive at second granularity. It is the inverse of LocalDate:
// every ts with LocalDate(ts, offset) == date satisfies start <= ts <= end.
func DayWindow(date string, offset time.Duration) (start, end time.Time, err error) {
	return RangeWindow(date, date, offset)
}

// RangeWindow returns the UTC instants covering the store-local dates from..to.
func RangeWindow(from, to string, offset time.Duration) (start, end time.Time, err error) {
	f, err := ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if t.Before(f) {
		return time.Time{}, time.Time{}, fmt.Errorf("date range %s..%s ends before it starts", from, to)
	}
	start = f.Add(-offset)
	end = t.AddDate(0, 0, 1).Add(-offset).Add(-time.Second)
	return start, end, nil
}

// Yesterday returns the store-local date before the one containing now.
func Yesterday(now time.Time, offset time.Duration) string {
	return now.UTC().Add(offset).AddDate(0, 0, -1).Format(models.DateLayout)
}

// DatesBetween lists every date from..to inclusive.
func DatesBetween(from, to string) ([]string, error) {
	f, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return nil, err
	}
	if t.Before(f) {
		return nil, fmt.Errorf("date range %s..%s ends before it starts", from, to)
	}
	days := int(t.Sub(f).Hours()/24) + 1
	if days > MaxRangeDays {
		return nil, fmt.Errorf("date range %s..%s spans %d days, limit is %d", from, to, days, MaxRangeDays)
	}
	out := make([]string, 0, days)
	for d := f; !d.After(t); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(models.DateLayout))
	}
	return out, nil
}
