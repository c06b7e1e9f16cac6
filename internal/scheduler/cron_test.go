// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package scheduler

import (
	"testing"
	"time"
)

func TestParseCron(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"daily", "30 1 * * *", false},
		{"every 5 minutes", "*/5 * * * *", false},
		{"weekdays", "0 2 * * 1-5", false},
		{"list", "0,15,30,45 * * * *", false},
		{"range step", "0-30/10 * * * *", false},
		{"sunday as 7", "0 0 * * 7", false},
		{"too few fields", "0 9 * *", true},
		{"too many fields", "0 9 * * * *", true},
		{"minute out of range", "60 * * * *", true},
		{"hour out of range", "0 24 * * *", true},
		{"day zero", "0 0 0 * *", true},
		{"bad step", "*/0 * * * *", true},
		{"reversed range", "0 5-2 * * *", true},
		{"garbage", "a b c d e", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCron(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCron(%q) err = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestParseCronValues(t *testing.T) {
	t.Parallel()

	c, err := ParseCron("0-30/10 1,3 * * 0,7")
	if err != nil {
		t.Fatal(err)
	}
	checkInts(t, "minutes", c.Minutes, 0, 10, 20, 30)
	checkInts(t, "hours", c.Hours, 1, 3)
	checkInts(t, "dow", c.DaysOfWeek, 0)
	if len(c.DaysOfMonth) != 31 || len(c.Months) != 12 {
		t.Errorf("wildcards not expanded: %d days, %d months", len(c.DaysOfMonth), len(c.Months))
	}
}

func checkInts(t *testing.T, name string, got []int, want ...int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s = %v, want %v", name, got, want)
		}
	}
}

func TestNextRun(t *testing.T) {
	t.Parallel()

	jst := StoreLocation(9 * time.Hour)
	tests := []struct {
		name  string
		expr  string
		after time.Time
		loc   *time.Location
		want  time.Time
	}{
		{
			name:  "later today",
			expr:  "30 1 * * *",
			after: time.Date(2024, 3, 2, 0, 0, 0, 0, jst),
			loc:   jst,
			want:  time.Date(2024, 3, 2, 1, 30, 0, 0, jst),
		},
		{
			name:  "strictly after",
			expr:  "30 1 * * *",
			after: time.Date(2024, 3, 2, 1, 30, 0, 0, jst),
			loc:   jst,
			want:  time.Date(2024, 3, 3, 1, 30, 0, 0, jst),
		},
		{
			name:  "local zone not UTC",
			expr:  "30 1 * * *",
			after: time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC), // 00:00 JST
			loc:   jst,
			want:  time.Date(2024, 3, 1, 16, 30, 0, 0, time.UTC),
		},
		{
			name:  "next monday",
			expr:  "0 2 * * 1",
			after: time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC), // Saturday
			loc:   nil,
			want:  time.Date(2024, 3, 4, 2, 0, 0, 0, time.UTC),
		},
		{
			name:  "first of next month",
			expr:  "0 0 1 * *",
			after: time.Date(2024, 2, 15, 8, 0, 0, 0, time.UTC),
			loc:   nil,
			want:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "day of month or weekday",
			expr:  "0 0 15 * 1",
			after: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), // Friday
			loc:   nil,
			want:  time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), // Monday before the 15th
		},
		{
			name:  "half hour offset",
			expr:  "0 * * * *",
			after: time.Date(2024, 3, 1, 0, 10, 0, 0, time.UTC), // 05:40 at +05:30
			loc:   StoreLocation(5*time.Hour + 30*time.Minute),
			want:  time.Date(2024, 3, 1, 0, 30, 0, 0, time.UTC),
		},
		{
			name:  "never",
			expr:  "0 0 31 2 *",
			after: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			loc:   nil,
			want:  time.Time{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCron(tt.expr)
			if err != nil {
				t.Fatal(err)
			}
			got := c.NextRun(tt.after, tt.loc)
			if !got.Equal(tt.want) {
				t.Errorf("NextRun = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStoreLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		offset time.Duration
		name   string
	}{
		{9 * time.Hour, "UTC+09:00"},
		{0, "UTC+00:00"},
		{-3*time.Hour - 30*time.Minute, "UTC-03:30"},
		{5*time.Hour + 45*time.Minute, "UTC+05:45"},
	}
	for _, tt := range tests {
		loc := StoreLocation(tt.offset)
		if loc.String() != tt.name {
			t.Errorf("StoreLocation(%v) = %s, want %s", tt.offset, loc, tt.name)
		}
		_, off := time.Date(2024, 3, 1, 0, 0, 0, 0, loc).Zone()
		if off != int(tt.offset.Seconds()) {
			t.Errorf("offset = %d", off)
		}
	}
}
