// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package persist

import (
	"context"

	"github.com/tomtom215/playledger/internal/models"
)

// TargetDailyStats labels daily stat commits.
const TargetDailyStats = "daily_stats"

// StatCommitter writes one chunk of daily stats atomically, upserting by
// (date, store). Re-writing a key overwrites it.
type StatCommitter interface {
	CommitDailyStats(ctx context.Context, chunk []models.DailyStat) error
}

// Persister writes daily stats in chunks no larger than MaxOpsPerCommit,
// each chunk its own transaction.
type Persister struct {
	committer       StatCommitter
	maxOpsPerCommit int
	parallelism     int
}

// NewPersister creates a persister. maxOpsPerCommit <= 0 commits everything
// at once; parallelism <= 1 commits chunks sequentially.
func NewPersister(c StatCommitter, maxOpsPerCommit, parallelism int) *Persister {
	return &Persister{committer: c, maxOpsPerCommit: maxOpsPerCommit, parallelism: parallelism}
}

// Result is what Persist committed.
type Result struct {
	Committed int `json:"committed"`
	Chunks    int `json:"chunks"`
	Total     int `json:"total_chunks"`
}

// Persist upserts stats. On failure Result still counts the chunks that
// committed, and the error carries a *ChunkError naming the failed chunk and
// its keys. Re-running Persist with the same stats is safe.
func (p *Persister) Persist(ctx context.Context, stats []models.DailyStat) (Result, error) {
	batch := Batch[models.DailyStat]{
		Target:      TargetDailyStats,
		MaxOps:      p.maxOpsPerCommit,
		Parallelism: p.parallelism,
		Key:         func(s models.DailyStat) string { return s.Key().String() },
		Commit:      p.committer.CommitDailyStats,
	}
	out, err := batch.Run(ctx, stats)
	return Result{Committed: out.Items, Chunks: out.Chunks, Total: out.Total}, err
}
