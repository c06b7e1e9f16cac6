// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/playledger/internal/lastfm"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/metrics"
)

// retryWithBackoff runs fn up to RetryAttempts times, doubling the delay
// from RetryDelay after each failure. Errors lastfm.IsRetryable rejects,
// including context cancellation, return at once. Storage errors count as
// transient.
func (c *Collector) retryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	delay := c.opts.RetryDelay

	for attempt := 0; attempt < c.opts.RetryAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !lastfm.IsRetryable(err) {
			return err
		}

		if attempt < c.opts.RetryAttempts-1 {
			metrics.SourceRetries.Inc()
			logging.Ctx(ctx).Warn().Err(err).
				Int("attempt", attempt+1).
				Int("max_attempts", c.opts.RetryAttempts).
				Dur("delay", delay).
				Msg("Retry attempt")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("max retry attempts reached: %w", err)
}
