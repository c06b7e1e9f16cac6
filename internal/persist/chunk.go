// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package persist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/metrics"
)

// maxKeysInMessage bounds the keys printed by ChunkError.Error. The full
// list stays available in ChunkError.Keys.
const maxKeysInMessage = 5

// ChunkError reports a chunk whose commit failed. Chunks with a lower index
// committed before it (sequential mode) and stay committed.
type ChunkError struct {
	Target string
	Index  int
	Total  int
	Keys   []string
	Err    error
}

func (e *ChunkError) Error() string {
	keys := e.Keys
	more := ""
	if len(keys) > maxKeysInMessage {
		more = fmt.Sprintf(" (+%d more)", len(keys)-maxKeysInMessage)
		keys = keys[:maxKeysInMessage]
	}
	return fmt.Sprintf("%s chunk %d/%d failed for keys [%s]%s: %v",
		e.Target, e.Index+1, e.Total, strings.Join(keys, ", "), more, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Chunk slices items into consecutive chunks of at most limit items. limit <= 0
// yields a single chunk.
func Chunk[T any](items []T, limit int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if limit <= 0 || limit >= len(items) {
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+limit-1)/limit)
	for start := 0; start < len(items); start += limit {
		end := start + limit
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end:end])
	}
	return out
}

// Batch describes one chunked write.
type Batch[T any] struct {
	// Target labels logs, metrics and errors (e.g. "daily_stats").
	Target string

	// MaxOps is the per-commit item limit; <= 0 means unlimited.
	MaxOps int

	// Parallelism > 1 commits chunks concurrently. Chunks must hold disjoint keys.
	Parallelism int

	// Key renders an item's key for error reports.
	Key func(T) string

	// Commit writes one chunk as a single transaction.
	Commit func(ctx context.Context, chunk []T) error
}

// Outcome counts what a Batch committed.
type Outcome struct {
	Items  int
	Chunks int
	Total  int
}

// Run commits items chunk by chunk. In sequential mode the first failure
// stops the batch; in parallel mode no new chunk starts after a failure.
// Failed chunks are returned as *ChunkError values, lowest index first.
func (b Batch[T]) Run(ctx context.Context, items []T) (Outcome, error) {
	chunks := Chunk(items, b.MaxOps)
	out := Outcome{Total: len(chunks)}
	if len(chunks) == 0 {
		return out, nil
	}

	workers := b.Parallelism
	if workers < 1 {
		workers = 1
	}
	if workers > len(chunks) {
		workers = len(chunks)
	}

	var (
		mu     sync.Mutex
		failed []*ChunkError
		wg     sync.WaitGroup
	)
	sem := make(chan struct{}, workers)

	for i, chunk := range chunks {
		mu.Lock()
		stop := len(failed) > 0
		mu.Unlock()
		if stop || ctx.Err() != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, chunk []T) {
			defer wg.Done()
			defer func() { <-sem }()

			err := b.commitOne(ctx, i, len(chunks), chunk)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
				return
			}
			out.Items += len(chunk)
			out.Chunks++
		}(i, chunk)

		if workers == 1 {
			wg.Wait()
		}
	}
	wg.Wait()

	if len(failed) == 0 {
		if err := ctx.Err(); err != nil && out.Chunks < out.Total {
			return out, fmt.Errorf("%s batch interrupted after %d/%d chunks: %w", b.Target, out.Chunks, out.Total, err)
		}
		return out, nil
	}

	sort.Slice(failed, func(i, j int) bool { return failed[i].Index < failed[j].Index })
	if len(failed) == 1 {
		return out, failed[0]
	}
	errs := make([]error, len(failed))
	for i, f := range failed {
		errs[i] = f
	}
	return out, errors.Join(errs...)
}

func (b Batch[T]) commitOne(ctx context.Context, index, total int, chunk []T) *ChunkError {
	start := time.Now()
	err := b.Commit(ctx, chunk)
	metrics.RecordChunkCommit(b.Target, time.Since(start), err)

	if err == nil {
		logging.Ctx(ctx).Debug().
			Str("target", b.Target).
			Int("chunk", index+1).
			Int("chunks", total).
			Int("records", len(chunk)).
			Dur("duration", time.Since(start)).
			Msg("Chunk committed")
		return nil
	}

	keys := make([]string, 0, len(chunk))
	if b.Key != nil {
		for _, item := range chunk {
			keys = append(keys, b.Key(item))
		}
	}
	logging.Ctx(ctx).Error().Err(err).
		Str("target", b.Target).
		Int("chunk", index+1).
		Int("chunks", total).
		Int("records", len(chunk)).
		Msg("Chunk commit failed")
	return &ChunkError{Target: b.Target, Index: index, Total: total, Keys: keys, Err: err}
}
