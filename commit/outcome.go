/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commit

import "fmt"

// Result is what a successful Commit did.
type Result int

const (
	// Updated means the existing document was rewritten.
	Updated Result = iota + 1
	// NoChangeNeeded means the document already held the image.
	NoChangeNeeded
	// Created means the document did not exist and was created.
	Created
	// DryRunWouldUpdate means a rewrite was needed but not persisted.
	DryRunWouldUpdate
	// DryRunWouldCreate means a create was needed but not persisted.
	DryRunWouldCreate
)

func (r Result) String() string {
	switch r {
	case Updated:
		return "updated"
	case NoChangeNeeded:
		return "no_change"
	case Created:
		return "created"
	case DryRunWouldUpdate:
		return "dry_run_update"
	case DryRunWouldCreate:
		return "dry_run_create"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Wrote reports whether the store was written.
func (r Result) Wrote() bool { return r == Updated || r == Created }

// Outcome describes a completed Commit.
type Outcome struct {
	Result   Result
	Path     string
	Property string
	Image    string
	// Previous is the scalar value the property held before the commit, if any.
	Previous string
	// Content is the serialized document that was, or in a dry run would
	// have been, written. It is empty for NoChangeNeeded.
	Content []byte
	// Attempts is the number of fetch cycles used.
	Attempts int
}

func (o *Outcome) description() string {
	return fmt.Sprintf("committed %s: '%s' to %s", o.Property, o.Image, o.Path)
}

// String renders the outcome for humans.
func (o *Outcome) String() string {
	switch o.Result {
	case Updated, Created:
		return "Successfully " + o.description()
	case NoChangeNeeded:
		return fmt.Sprintf("No changes found for %s: '%s' to %s", o.Property, o.Image, o.Path)
	case DryRunWouldUpdate, DryRunWouldCreate:
		return "Commit disabled, but would have " + o.description()
	default:
		return o.Result.String()
	}
}
