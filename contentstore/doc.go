/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package contentstore defines the hosted file store that image documents are
// read from and committed to.
//
// A Store hands out a version token with every read. Update only succeeds when
// the token still names the current revision of the file, which is the sole
// synchronization primitive the commit engine relies on.
//
// Failures are reported as *Error values carrying a closed Kind so callers can
// branch on "missing", "stale" and "try again" without knowing anything about
// the transport:
//
//	doc, err := store.Get(ctx, "env/main.yaml", "main")
//	switch {
//	case contentstore.IsNotFound(err):
//	    // create the file
//	case err != nil:
//	    return err
//	}
package contentstore
