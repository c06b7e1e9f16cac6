// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package scheduler triggers settlement runs on a cron schedule evaluated in
// store-local time.
package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CronExpression is a parsed 5-field cron expression:
// minute hour day-of-month month day-of-week.
type CronExpression struct {
	Minutes     []int // 0-59
	Hours       []int // 0-23
	DaysOfMonth []int // 1-31
	Months      []int // 1-12
	DaysOfWeek  []int // 0-6 (0 = Sunday)

	domAny, dowAny bool
}

type cronField struct {
	name     string
	min, max int
}

var cronFields = [5]cronField{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 7},
}

// ParseCron parses a standard 5-field cron expression. Each field accepts
// *, n, n-m, lists of those, and steps (*/s, n/s, n-m/s). Day-of-week 7 is
// Sunday.
//
//	"30 1 * * *"   daily at 01:30
//	"0 2 * * 1"    Mondays at 02:00
//	"*/15 * * * *" every 15 minutes
func ParseCron(expr string) (*CronExpression, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}

	var parsed [5][]int
	for i, f := range cronFields {
		values, err := parseField(fields[i], f.min, f.max)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", f.name, err)
		}
		parsed[i] = values
	}

	dow := parsed[4][:0:0]
	for _, d := range parsed[4] {
		dow = append(dow, d%7)
	}

	return &CronExpression{
		Minutes:     parsed[0],
		Hours:       parsed[1],
		DaysOfMonth: parsed[2],
		Months:      parsed[3],
		DaysOfWeek:  uniqueInts(dow),
		domAny:      fields[2] == "*",
		dowAny:      fields[4] == "*",
	}, nil
}

// NextRun returns the first matching minute strictly after after, evaluated
// in loc (UTC when nil). It returns the zero time if nothing matches within
// four years, e.g. "0 0 31 2 *".
func (c *CronExpression) NextRun(after time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := after.In(loc)
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()+1, 0, 0, loc)

	limit := t.AddDate(4, 0, 0)
	for !t.After(limit) {
		if !containsInt(c.Months, int(t.Month())) {
			// Jump to the first minute of the next month.
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, loc)
			continue
		}
		if !c.dayMatches(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
			continue
		}
		if !containsInt(c.Hours, t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
			continue
		}
		if containsInt(c.Minutes, t.Minute()) {
			return t
		}
		t = t.Add(time.Minute)
	}
	return time.Time{}
}

// dayMatches applies the cron rule that a restricted day-of-month and a
// restricted day-of-week are OR'd.
func (c *CronExpression) dayMatches(t time.Time) bool {
	dom := containsInt(c.DaysOfMonth, t.Day())
	dow := containsInt(c.DaysOfWeek, int(t.Weekday()))
	switch {
	case c.domAny && c.dowAny:
		return true
	case c.domAny:
		return dow
	case c.dowAny:
		return dom
	default:
		return dom || dow
	}
}

func parseField(field string, minVal, maxVal int) ([]int, error) {
	var result []int
	for _, part := range strings.Split(field, ",") {
		values, err := parsePart(part, minVal, maxVal)
		if err != nil {
			return nil, err
		}
		result = append(result, values...)
	}
	return uniqueInts(result), nil
}

// parsePart parses one list element: *, n, n-m, optionally followed by /step.
func parsePart(part string, minVal, maxVal int) ([]int, error) {
	base, stepStr, hasStep := strings.Cut(part, "/")
	step := 1
	if hasStep {
		var err error
		step, err = strconv.Atoi(stepStr)
		if err != nil || step <= 0 {
			return nil, fmt.Errorf("invalid step value: %s", stepStr)
		}
	}

	start, end := minVal, maxVal
	switch {
	case base == "*":
	case strings.Contains(base, "-"):
		lo, hi, _ := strings.Cut(base, "-")
		var err error
		if start, err = strconv.Atoi(lo); err != nil {
			return nil, fmt.Errorf("invalid range start: %s", lo)
		}
		if end, err = strconv.Atoi(hi); err != nil {
			return nil, fmt.Errorf("invalid range end: %s", hi)
		}
		if start > end {
			return nil, fmt.Errorf("invalid range: %d-%d", start, end)
		}
	default:
		v, err := strconv.Atoi(base)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %s", base)
		}
		start = v
		if !hasStep {
			end = v
		}
	}
	if start < minVal || end > maxVal {
		return nil, fmt.Errorf("value out of range: %s (min=%d, max=%d)", part, minVal, maxVal)
	}

	var result []int
	for i := start; i <= end; i += step {
		result = append(result, i)
	}
	return result, nil
}

func containsInt(slice []int, val int) bool {
	for _, v := range slice {
		if v == val {
			return true
		}
	}
	return false
}

// uniqueInts returns the sorted distinct values.
func uniqueInts(values []int) []int {
	seen := make(map[int]bool, len(values))
	result := make([]int, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	sort.Ints(result)
	return result
}

// StoreLocation returns a fixed zone for the store-region UTC offset,
// named like UTC+09:00.
func StoreLocation(offset time.Duration) *time.Location {
	sign := '+'
	abs := offset
	if offset < 0 {
		sign = '-'
		abs = -offset
	}
	name := fmt.Sprintf("UTC%c%02d:%02d", sign, int(abs.Hours()), int(abs.Minutes())%60)
	return time.FixedZone(name, int(offset.Seconds()))
}
