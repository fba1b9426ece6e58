/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/imagedeployer/contentstore"
	"chainguard.dev/imagedeployer/manifest"
	"chainguard.dev/imagedeployer/retry"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Target is the image to record and where and how to record it.
type Target struct {
	// Image is the full image reference written into the document.
	Image string
	// Branch names the document: <path>/<registry>/<repository>/<branch>.yaml.
	// It never selects the git branch written to; reads and writes both go to
	// the Engine's ref (see WithRef).
	Branch string
	// Registry and Repository locate the document below the manifest path.
	Registry   string
	Repository string

	Committer contentstore.Committer
	// Message is the commit message. Empty means a generated one.
	Message string
	// Persist false is a dry run: everything but the write happens.
	Persist bool
}

// Engine commits image references to a store.
type Engine struct {
	store      contentstore.Store
	maxRetries int
	ref        string
	backoff    retry.Config
}

// New constructs an Engine.
func New(store contentstore.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	e := &Engine{
		store:      store,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxRetries < 1 {
		return nil, fmt.Errorf("max retries must be at least 1, got %d", e.maxRetries)
	}
	if err := e.backoff.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backoff: %w", err)
	}
	return e, nil
}

// Commit makes the document for target hold target.Image under cfg.Property.
func (e *Engine) Commit(ctx context.Context, target Target, cfg manifest.Config) (out *Outcome, err error) {
	if strings.TrimSpace(target.Image) == "" {
		return nil, errors.New("image is required")
	}
	if strings.TrimSpace(target.Branch) == "" {
		return nil, errors.New("branch is required")
	}
	if cfg.Property == "" {
		return nil, fmt.Errorf("%w: property is required", manifest.ErrInvalidManifest)
	}
	path := cfg.TargetPath(target.Registry, target.Repository, target.Branch)

	tr := otel.Tracer("chainguard.dev/imagedeployer/commit",
		oteltrace.WithInstrumentationVersion("1.0.0"))
	ctx, span := tr.Start(ctx, "imagedeployer.commit", oteltrace.WithAttributes(
		attribute.String("path", path),
		attribute.String("property", cfg.Property),
		attribute.String("image", target.Image),
		attribute.Bool("persist", target.Persist),
	))
	defer func() {
		if err != nil {
			commitCounter.WithLabelValues("failed").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			commitCounter.WithLabelValues(out.Result.String()).Inc()
			span.SetAttributes(
				attribute.String("outcome", out.Result.String()),
				attribute.Int("attempts", out.Attempts),
			)
		}
		span.End()
	}()

	log := clog.FromContext(ctx).With("path", path).With("property", cfg.Property).With("image", target.Image)
	ctx = clog.WithLogger(ctx, log)

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		if attempt > 1 {
			if err := e.backoff.Wait(ctx, attempt-1); err != nil {
				return nil, err
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := e.attempt(ctx, path, cfg.Property, target)
		if err == nil {
			attemptCounter.WithLabelValues(out.Result.String()).Inc()
			out.Attempts = attempt
			log.With("attempt", attempt).Infof("%s", out)
			return out, nil
		}
		attemptCounter.WithLabelValues(failureLabel(err)).Inc()

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrUnsupportedDocument) || contentstore.KindOf(err) == contentstore.KindInvalid {
			return nil, err
		}

		log.With("attempt", attempt).
			With("max_retries", e.maxRetries).
			With("error", err.Error()).
			Warn("Commit attempt failed, retrying from a fresh read")
		lastErr = err
	}

	return nil, &ExhaustedError{Attempts: e.maxRetries, Err: lastErr}
}

// attempt runs one fetch/decide/write cycle. Any version token it reads dies
// with it.
func (e *Engine) attempt(ctx context.Context, path, property string, target Target) (*Outcome, error) {
	out := &Outcome{
		Path:     path,
		Property: property,
		Image:    target.Image,
	}

	current, err := e.store.Get(ctx, path, e.ref)
	switch {
	case contentstore.IsNotFound(err):
		return e.create(ctx, out, target)
	case err != nil:
		return nil, err
	}

	doc, err := parseDocument(current.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prev, ok := stringValue(doc, property)
	out.Previous = prev
	if ok && prev == target.Image {
		out.Result = NoChangeNeeded
		return out, nil
	}

	if err := setString(doc, property, target.Image); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if out.Content, err = encodeDocument(doc); err != nil {
		return nil, err
	}
	if !target.Persist {
		out.Result = DryRunWouldUpdate
		return out, nil
	}

	if err := e.store.Update(ctx, path, out.Content, current.Version, e.writeOptions(out, target)); err != nil {
		return nil, err
	}
	out.Result = Updated
	return out, nil
}

func (e *Engine) create(ctx context.Context, out *Outcome, target Target) (*Outcome, error) {
	content, err := encodeDocument(newDocument(out.Property, target.Image))
	if err != nil {
		return nil, err
	}
	out.Content = content
	if !target.Persist {
		out.Result = DryRunWouldCreate
		return out, nil
	}

	if err := e.store.Create(ctx, out.Path, content, e.writeOptions(out, target)); err != nil {
		return nil, err
	}
	out.Result = Created
	return out, nil
}

func (e *Engine) writeOptions(out *Outcome, target Target) contentstore.WriteOptions {
	msg := target.Message
	if msg == "" {
		msg = out.description()
	}
	return contentstore.WriteOptions{
		Message:   msg,
		Committer: target.Committer,
		Branch:    e.ref,
	}
}

func failureLabel(err error) string {
	if errors.Is(err, ErrUnsupportedDocument) {
		return "unsupported"
	}
	return strings.ReplaceAll(contentstore.KindOf(err).String(), " ", "_")
}
