/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package contentstore

import "context"

// Document is a single revision of a stored file.
type Document struct {
	// Content holds the decoded file bytes.
	Content []byte
	// Version identifies this exact revision and must be passed to Update.
	Version string
}

// Committer identifies who a write is attributed to.
type Committer struct {
	Name  string
	Email string
}

// WriteOptions carries the commit metadata attached to Create and Update.
type WriteOptions struct {
	Message   string
	Committer Committer
	Branch    string
}

// Store reads and conditionally writes files in a hosted repository.
type Store interface {
	// Get returns the file at path as of ref. It fails with KindNotFound
	// when the path does not exist.
	Get(ctx context.Context, path, ref string) (*Document, error)

	// Create writes a new file. It fails with KindConflict when the file
	// already exists.
	Create(ctx context.Context, path string, content []byte, opts WriteOptions) error

	// Update replaces the file only if version still names its current
	// revision, and fails with KindConflict otherwise.
	Update(ctx context.Context, path string, content []byte, version string, opts WriteOptions) error
}
