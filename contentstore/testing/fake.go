/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package testing provides an in-memory contentstore.Store for tests.
package testing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"chainguard.dev/imagedeployer/contentstore"
)

// Write records a successful write made through the Fake.
type Write struct {
	Op      string
	Path    string
	Content []byte
	Options contentstore.WriteOptions
}

// Fake is an in-memory Store that enforces optimistic concurrency the way a
// hosted store does: Update with a stale version and Create over an existing
// file both fail with contentstore.KindConflict.
//
// The hooks run before the operation is applied, without the Fake's lock
// held, so they may call back into the Fake to simulate a racing writer. A
// non-nil hook error is returned in place of the operation.
//
// The zero value is an empty Fake ready for use.
type Fake struct {
	OnGet    func(ctx context.Context, path string) error
	OnCreate func(ctx context.Context, path string, content []byte) error
	OnUpdate func(ctx context.Context, path string, content []byte, version string) error

	mu     sync.Mutex
	files  map[string][]byte
	calls  map[string]int
	writes []Write
}

var _ contentstore.Store = (*Fake)(nil)

// NewFake returns a Fake seeded with files (path to content).
func NewFake(files map[string]string) *Fake {
	f := &Fake{
		files: make(map[string][]byte, len(files)),
		calls: make(map[string]int),
	}
	for p, c := range files {
		f.files[p] = []byte(c)
	}
	return f
}

// Version returns the version token for content.
func Version(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get implements contentstore.Store.
func (f *Fake) Get(ctx context.Context, path, _ string) (*contentstore.Document, error) {
	f.count("get")
	if f.OnGet != nil {
		if err := f.OnGet(ctx, path); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.files[path]
	if !ok {
		return nil, contentstore.NewError(contentstore.KindNotFound, "get", path, errors.New("no such file"))
	}
	return &contentstore.Document{
		Content: append([]byte(nil), content...),
		Version: Version(content),
	}, nil
}

// Create implements contentstore.Store.
func (f *Fake) Create(ctx context.Context, path string, content []byte, opts contentstore.WriteOptions) error {
	f.count("create")
	if f.OnCreate != nil {
		if err := f.OnCreate(ctx, path, content); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[path]; ok {
		return contentstore.NewError(contentstore.KindConflict, "create", path, errors.New("file already exists"))
	}
	f.apply("create", path, content, opts)
	return nil
}

// Update implements contentstore.Store.
func (f *Fake) Update(ctx context.Context, path string, content []byte, version string, opts contentstore.WriteOptions) error {
	f.count("update")
	if f.OnUpdate != nil {
		if err := f.OnUpdate(ctx, path, content, version); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.files[path]
	if !ok || Version(current) != version {
		return contentstore.NewError(contentstore.KindConflict, "update", path, errors.New("version mismatch"))
	}
	f.apply("update", path, content, opts)
	return nil
}

// Put overwrites path unconditionally, bypassing hooks and call counts.
func (f *Fake) Put(path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	f.files[path] = []byte(content)
}

// Content returns the current content of path.
func (f *Fake) Content(path string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.files[path]
	return string(c), ok
}

// Calls returns how many times op ("get", "create" or "update") was invoked,
// including invocations rejected by a hook.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Writes returns the successful writes in the order they were applied.
func (f *Fake) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

func (f *Fake) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	f.calls[op]++
}

// init and apply must be called with mu held.
func (f *Fake) init() {
	if f.files == nil {
		f.files = make(map[string][]byte)
	}
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
}

func (f *Fake) apply(op, path string, content []byte, opts contentstore.WriteOptions) {
	f.init()
	c := append([]byte(nil), content...)
	f.files[path] = c
	f.writes = append(f.writes, Write{Op: op, Path: path, Content: c, Options: opts})
}
