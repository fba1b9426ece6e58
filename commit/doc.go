/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package commit records an image reference in a YAML document held by a
// contentstore.Store, using the store's version tokens for optimistic
// concurrency.
//
// Every attempt starts from a fresh read:
//
//	fetch ──▶ decide ──▶ update ──▶ done
//	  │          └──▶ done (value already current)
//	  └──▶ create ──▶ done
//
// A failed write never reuses its version token. The next attempt re-reads
// the document and re-decides whether a write is still needed, so racing
// deployers converge on the same value and only one of them writes it.
//
// # Basic Usage
//
//	engine, err := commit.New(store, commit.WithRef("main"))
//	if err != nil {
//	    return err
//	}
//	out, err := engine.Commit(ctx, commit.Target{
//	    Image:   "gcr.io/acme/api:main-4f2c1e9",
//	    Branch:  "main",
//	    Persist: true,
//	}, *cfg)
//	if err != nil {
//	    return err
//	}
//	log.Print(out)
//
// # Failures
//
// Store errors are retried up to the configured number of attempts, after
// which Commit returns an *ExhaustedError wrapping the last one. Documents that
// are not YAML mappings fail immediately with ErrUnsupportedDocument, and
// store errors of kind contentstore.KindInvalid are returned without retrying.
//
// # Thread Safety
//
// An Engine holds no per-call state and may be shared between goroutines.
package commit
