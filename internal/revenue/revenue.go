// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package revenue maps validated play counts to stepped payout amounts.
//
// Amounts are computed at read time from persisted daily stats and are never
// stored, so a changed payout schedule applies retroactively to history
// without re-running aggregation.
package revenue

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/playledger/internal/config"
)

// Sentinel errors for table construction.
var (
	ErrEmptyTable        = errors.New("revenue table has no tiers")
	ErrTiersNotAscending = errors.New("revenue tier thresholds must be strictly ascending")
	ErrNegativeTier      = errors.New("revenue tier threshold and amount must not be negative")
)

// Tier pays Amount once the play count reaches MinPlays.
type Tier struct {
	MinPlays int   `json:"min_plays"`
	Amount   int64 `json:"amount"`
}

// Table is a stepped payout schedule, tiers sorted by MinPlays ascending.
type Table struct {
	Tiers []Tier `json:"tiers"`
}

// NewTable validates and copies tiers.
func NewTable(tiers ...Tier) (Table, error) {
	if len(tiers) == 0 {
		return Table{}, ErrEmptyTable
	}
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	for i, t := range out {
		if t.MinPlays < 0 || t.Amount < 0 {
			return Table{}, fmt.Errorf("tier %d: %w", i, ErrNegativeTier)
		}
		if i > 0 && t.MinPlays <= out[i-1].MinPlays {
			return Table{}, fmt.Errorf("tier %d (%d plays): %w", i, t.MinPlays, ErrTiersNotAscending)
		}
	}
	return Table{Tiers: out}, nil
}

// Amount returns the payout of the highest tier whose threshold is at most
// plays. A count exactly on a threshold belongs to that (upper) tier. Counts
// below the first threshold pay 0.
func (t Table) Amount(plays int) int64 {
	// First tier with MinPlays > plays; the one before it applies.
	i := sort.Search(len(t.Tiers), func(i int) bool { return t.Tiers[i].MinPlays > plays })
	if i == 0 {
		return 0
	}
	return t.Tiers[i-1].Amount
}

// DefaultFranchise prices stores with no table of their own.
const DefaultFranchise = "independent"

// DefaultTables are used when configuration defines none.
func DefaultTables() map[string]Table {
	return map[string]Table{
		"partner-a": {Tiers: []Tier{
			{MinPlays: 2500, Amount: 11000},
			{MinPlays: 5000, Amount: 16500},
			{MinPlays: 7500, Amount: 22000},
		}},
		DefaultFranchise: {Tiers: []Tier{
			{MinPlays: 2500, Amount: 8000},
			{MinPlays: 5000, Amount: 12000},
			{MinPlays: 7500, Amount: 16000},
		}},
	}
}

// Calculator holds one table per franchise classification.
type Calculator struct {
	tables   map[string]Table
	fallback string
}

// NewCalculator builds a calculator. fallback names the table used for
// franchises without one; if it has no table either, such stores earn 0.
func NewCalculator(tables map[string]Table, fallback string) *Calculator {
	m := make(map[string]Table, len(tables))
	for k, v := range tables {
		m[k] = v
	}
	return &Calculator{tables: m, fallback: fallback}
}

// NewCalculatorFromConfig builds tables from configuration, falling back to
// DefaultTables when none are configured.
func NewCalculatorFromConfig(cfg *config.RevenueConfig) (*Calculator, error) {
	fallback := cfg.DefaultFranchise
	if fallback == "" {
		fallback = DefaultFranchise
	}
	if len(cfg.Tables) == 0 {
		return NewCalculator(DefaultTables(), fallback), nil
	}

	tables := make(map[string]Table, len(cfg.Tables))
	for franchise, tiers := range cfg.Tables {
		ts := make([]Tier, 0, len(tiers))
		for _, t := range tiers {
			ts = append(ts, Tier{MinPlays: t.MinPlays, Amount: t.Amount})
		}
		table, err := NewTable(ts...)
		if err != nil {
			return nil, fmt.Errorf("franchise %q: %w", franchise, err)
		}
		tables[franchise] = table
	}
	return NewCalculator(tables, fallback), nil
}

// RevenueFor returns the payout for a validated play count under the
// franchise's table. It is pure.
func (c *Calculator) RevenueFor(franchise string, validatedPlays int) int64 {
	t, ok := c.tables[franchise]
	if !ok {
		t, ok = c.tables[c.fallback]
		if !ok {
			return 0
		}
	}
	return t.Amount(validatedPlays)
}

// Table returns the table applied to franchise and whether it was the fallback.
func (c *Calculator) Table(franchise string) (Table, bool) {
	if t, ok := c.tables[franchise]; ok {
		return t, false
	}
	return c.tables[c.fallback], true
}
