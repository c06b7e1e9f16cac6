// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package revenue

import (
	"sort"

	"github.com/tomtom215/playledger/internal/models"
)

// StoreRevenue is one store's priced period.
type StoreRevenue struct {
	StoreID        string `json:"store_id"`
	StoreName      string `json:"store_name"`
	Franchise      string `json:"franchise"`
	Days           int    `json:"days"`
	ValidatedPlays int    `json:"validated_plays"`
	Amount         int64  `json:"amount"`
}

// Report is a priced period across stores.
type Report struct {
	From   string         `json:"from"`
	To     string         `json:"to"`
	Stores []StoreRevenue `json:"stores"`
	Total  int64          `json:"total"`
}

// Report sums validated plays per store over the given stats and prices each
// store's period total. Store name and franchise come from the most recent
// stat of each store.
func (c *Calculator) Report(from, to string, stats []models.DailyStat) *Report {
	byStore := make(map[string]*StoreRevenue)
	latest := make(map[string]string)

	for i := range stats {
		s := &stats[i]
		r, ok := byStore[s.StoreID]
		if !ok {
			r = &StoreRevenue{StoreID: s.StoreID}
			byStore[s.StoreID] = r
		}
		r.Days++
		r.ValidatedPlays += s.ValidatedPlays
		if s.Date >= latest[s.StoreID] {
			latest[s.StoreID] = s.Date
			r.StoreName = s.StoreName
			r.Franchise = s.Franchise
		}
	}

	rep := &Report{From: from, To: to, Stores: make([]StoreRevenue, 0, len(byStore))}
	for _, r := range byStore {
		r.Amount = c.RevenueFor(r.Franchise, r.ValidatedPlays)
		rep.Total += r.Amount
		rep.Stores = append(rep.Stores, *r)
	}
	sort.Slice(rep.Stores, func(i, j int) bool { return rep.Stores[i].StoreID < rep.Stores[j].StoreID })
	return rep
}
