/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commit

import "chainguard.dev/imagedeployer/retry"

// DefaultMaxRetries is the number of attempts made when WithMaxRetries is not given.
const DefaultMaxRetries = 10

// Option configures an Engine.
type Option func(*Engine)

// WithMaxRetries sets the maximum number of fetch attempts per Commit.
func WithMaxRetries(n int) Option {
	return func(e *Engine) { e.maxRetries = n }
}

// WithRef sets the branch documents are read from and written to. Empty
// means the repository's default branch.
func WithRef(ref string) Option {
	return func(e *Engine) { e.ref = ref }
}

// WithBackoff sets the delay between attempts. Without it attempts follow
// each other immediately.
func WithBackoff(cfg retry.Config) Option {
	return func(e *Engine) { e.backoff = cfg }
}
