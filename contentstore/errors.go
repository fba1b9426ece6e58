/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package contentstore

import (
	"errors"
	"fmt"
)

// Kind classifies store failures.
type Kind int

const (
	// KindTransient is a network, rate limit or server failure worth retrying.
	KindTransient Kind = iota
	// KindNotFound means the requested path does not exist.
	KindNotFound
	// KindConflict means a write was rejected because the file changed
	// (or appeared) since it was read.
	KindConflict
	// KindInvalid means the request can never succeed as issued, e.g. the
	// path names a directory or credentials are rejected.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error type returned by Store implementations.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with the given classification.
func NewError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the Kind of err. Errors that did not come from a Store are
// reported as KindTransient.
func KindOf(err error) Kind {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return KindTransient
}

// IsNotFound reports whether err means the path does not exist.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// IsConflict reports whether err is a rejected conditional write.
func IsConflict(err error) bool {
	return err != nil && KindOf(err) == KindConflict
}
