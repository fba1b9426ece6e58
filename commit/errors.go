/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commit

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedDocument is returned when the target document is not a
	// YAML mapping. It is never retried.
	ErrUnsupportedDocument = errors.New("only YAML mapping documents can be updated")

	// ErrExhaustedRetries matches every *ExhaustedError.
	ErrExhaustedRetries = errors.New("exhausted retries")
)

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	// Err is the error from the final attempt.
	Err error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("commit failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrExhaustedRetries) hold.
func (e *ExhaustedError) Is(target error) bool { return target == ErrExhaustedRetries }
