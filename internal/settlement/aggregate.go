// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package settlement

import (
	"sort"
	"time"

	"github.com/tomtom215/playledger/internal/models"
)

// DefaultDailyCap is the per-track daily cap used when none is configured.
const DefaultDailyCap = 10

// DayCount holds the counts of one (date, store) group.
type DayCount struct {
	Key       models.StatKey
	Raw       int
	Validated int
	Excluded  int // artist not allowed
	Capped    int // plays above the per-track cap
}

// Aggregation is the result of one aggregation pass.
type Aggregation struct {
	Counts     map[models.StatKey]*DayCount
	Exclusions []models.Exclusion
}

// trackKey separates the same title by different artists.
type trackKey struct {
	title  string
	artist string
}

// Aggregate groups canonical events by (LocalDate, StoreID), drops events
// whose artist is not allowed, caps each track's plays at dailyCap and sums
// the capped counts. A group whose events were all rejected still appears
// with Validated == 0. dailyCap <= 0 selects DefaultDailyCap.
func Aggregate(events []models.CanonicalEvent, allow AllowList, dailyCap int) *Aggregation {
	if dailyCap <= 0 {
		dailyCap = DefaultDailyCap
	}

	agg := &Aggregation{Counts: make(map[models.StatKey]*DayCount)}
	tracks := make(map[models.StatKey]map[trackKey][]*models.CanonicalEvent)

	for i := range events {
		e := &events[i]
		k := models.StatKey{Date: e.LocalDate, StoreID: e.StoreID}
		dc, ok := agg.Counts[k]
		if !ok {
			dc = &DayCount{Key: k}
			agg.Counts[k] = dc
			tracks[k] = make(map[trackKey][]*models.CanonicalEvent)
		}
		dc.Raw++

		if !allow.IsAllowed(e.Artist) {
			dc.Excluded++
			agg.Exclusions = append(agg.Exclusions, exclusion(e, models.ReasonArtistNotAllowed))
			continue
		}

		tk := trackKey{title: e.Track, artist: Normalize(e.Artist)}
		tracks[k][tk] = append(tracks[k][tk], e)
	}

	for k, byTrack := range tracks {
		dc := agg.Counts[k]
		for _, plays := range byTrack {
			if len(plays) <= dailyCap {
				dc.Validated += len(plays)
				continue
			}
			dc.Validated += dailyCap
			dc.Capped += len(plays) - dailyCap

			// The earliest plays count; later ones are the audited excess.
			sort.SliceStable(plays, func(i, j int) bool { return plays[i].PlayedAt.Before(plays[j].PlayedAt) })
			for _, e := range plays[dailyCap:] {
				agg.Exclusions = append(agg.Exclusions, exclusion(e, models.ReasonDailyCap))
			}
		}
	}

	sort.SliceStable(agg.Exclusions, func(i, j int) bool {
		a, b := agg.Exclusions[i], agg.Exclusions[j]
		if a.StoreID != b.StoreID {
			return a.StoreID < b.StoreID
		}
		return a.PlayedAt.Before(b.PlayedAt)
	})
	return agg
}

func exclusion(e *models.CanonicalEvent, reason string) models.Exclusion {
	return models.Exclusion{
		StoreID:   e.StoreID,
		LocalDate: e.LocalDate,
		PlayedAt:  e.PlayedAt,
		Artist:    e.Artist,
		Track:     e.Track,
		Reason:    reason,
	}
}

// TotalValidated sums validated plays across all groups.
func (a *Aggregation) TotalValidated() int {
	n := 0
	for _, dc := range a.Counts {
		n += dc.Validated
	}
	return n
}

// Totals returns the excluded and capped play counts across all groups.
func (a *Aggregation) Totals() (excluded, capped int) {
	for _, dc := range a.Counts {
		excluded += dc.Excluded
		capped += dc.Capped
	}
	return excluded, capped
}

// DailyStats converts the counts to persistable records, denormalizing store
// name and franchise from the registry snapshot. Records are sorted by
// (date, store) so chunk boundaries are deterministic.
func (a *Aggregation) DailyStats(stores map[string]models.MonitoredStore, now time.Time) []models.DailyStat {
	out := make([]models.DailyStat, 0, len(a.Counts))
	for k, dc := range a.Counts {
		s := stores[k.StoreID]
		out = append(out, models.DailyStat{
			Date:           k.Date,
			StoreID:        k.StoreID,
			ValidatedPlays: dc.Validated,
			StoreName:      s.Name,
			Franchise:      s.Franchise,
			RawPlays:       dc.Raw,
			ExcludedPlays:  dc.Excluded,
			CappedPlays:    dc.Capped,
			UpdatedAt:      now.UTC(),
		})
	}
	SortStats(out)
	return out
}

// SortStats orders stats by (date, store).
func SortStats(stats []models.DailyStat) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Date != stats[j].Date {
			return stats[i].Date < stats[j].Date
		}
		return stats[i].StoreID < stats[j].StoreID
	})
}
