/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry computes the pause between commit attempts.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"time"
)

// Config configures the delay between attempts.
// The zero value retries immediately.
type Config struct {
	// BaseBackoff is the delay before the first retry. It doubles on every
	// further retry.
	BaseBackoff time.Duration
	// MaxBackoff caps the exponential delay. Zero means no cap.
	MaxBackoff time.Duration
	// MaxJitter is the maximum random jitter added to each delay.
	MaxJitter time.Duration
}

// Validate checks that the configuration has valid values.
func (c Config) Validate() error {
	if c.BaseBackoff < 0 {
		return errors.New("base backoff cannot be negative")
	}
	if c.MaxBackoff < 0 {
		return errors.New("max backoff cannot be negative")
	}
	if c.MaxJitter < 0 {
		return errors.New("max jitter cannot be negative")
	}
	return nil
}

// Delay returns how long to wait before retry number retry (1-based):
// BaseBackoff * 2^(retry-1), capped at MaxBackoff, plus jitter.
func (c Config) Delay(retry int) time.Duration {
	if retry < 1 {
		return 0
	}

	const ceiling = time.Duration(math.MaxInt64)
	var backoff time.Duration
	if c.BaseBackoff > 0 {
		// Past 30 doublings any sane base has long overflowed the cap.
		shift := min(retry-1, 30)
		if c.BaseBackoff > ceiling>>shift {
			backoff = ceiling
		} else {
			backoff = c.BaseBackoff << shift
		}
		if c.MaxBackoff > 0 && backoff > c.MaxBackoff {
			backoff = c.MaxBackoff
		}
	}

	if c.MaxJitter > 0 {
		// Leave room for the jitter below.
		backoff = min(backoff, ceiling-c.MaxJitter)
		n, err := rand.Int(rand.Reader, big.NewInt(int64(c.MaxJitter)))
		if err == nil {
			backoff += time.Duration(n.Int64())
		}
	}
	return backoff
}

// Wait blocks for Delay(retry) or until ctx is done.
func (c Config) Wait(ctx context.Context, retry int) error {
	d := c.Delay(retry)
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
