/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package githubstore implements contentstore.Store on top of the GitHub
// repository contents API. The blob SHA GitHub reports for a file is used as
// the version token, so an Update with a stale SHA is rejected by GitHub and
// surfaces as contentstore.KindConflict.
package githubstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"chainguard.dev/imagedeployer/contentstore"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

// Store reads and writes files in a single GitHub repository.
type Store struct {
	client *github.Client
	owner  string
	repo   string
}

var _ contentstore.Store = (*Store)(nil)

// New returns a Store for owner/repo using the provided client.
func New(client *github.Client, owner, repo string) *Store {
	return &Store{
		client: client,
		owner:  owner,
		repo:   repo,
	}
}

// Get implements contentstore.Store.
func (s *Store) Get(ctx context.Context, path, ref string) (*contentstore.Document, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}

	file, dir, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, path, opts)
	if err != nil {
		return nil, classify("get", path, err)
	}
	if file == nil {
		return nil, contentstore.NewError(contentstore.KindInvalid, "get", path,
			fmt.Errorf("path is a directory with %d entries", len(dir)))
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, contentstore.NewError(contentstore.KindInvalid, "get", path,
			fmt.Errorf("decoding %s content: %w", file.GetEncoding(), err))
	}

	clog.FromContext(ctx).With("path", path).
		With("ref", ref).
		With("sha", file.GetSHA()).
		Debug("Fetched file from GitHub")

	return &contentstore.Document{
		Content: []byte(content),
		Version: file.GetSHA(),
	}, nil
}

// Create implements contentstore.Store.
func (s *Store) Create(ctx context.Context, path string, content []byte, opts contentstore.WriteOptions) error {
	fileOpts := fileOptions(content, opts)
	if _, _, err := s.client.Repositories.CreateFile(ctx, s.owner, s.repo, path, fileOpts); err != nil {
		return classify("create", path, err)
	}
	clog.InfoContextf(ctx, "Created %s/%s:%s on branch %q", s.owner, s.repo, path, opts.Branch)
	return nil
}

// Update implements contentstore.Store.
func (s *Store) Update(ctx context.Context, path string, content []byte, version string, opts contentstore.WriteOptions) error {
	if version == "" {
		return contentstore.NewError(contentstore.KindInvalid, "update", path, errors.New("version is required"))
	}
	fileOpts := fileOptions(content, opts)
	fileOpts.SHA = github.Ptr(version)
	if _, _, err := s.client.Repositories.UpdateFile(ctx, s.owner, s.repo, path, fileOpts); err != nil {
		return classify("update", path, err)
	}
	clog.InfoContextf(ctx, "Updated %s/%s:%s on branch %q (was %s)", s.owner, s.repo, path, opts.Branch, version)
	return nil
}

func fileOptions(content []byte, opts contentstore.WriteOptions) *github.RepositoryContentFileOptions {
	fo := &github.RepositoryContentFileOptions{
		Message: github.Ptr(opts.Message),
		Content: content,
	}
	if opts.Branch != "" {
		fo.Branch = github.Ptr(opts.Branch)
	}
	if opts.Committer.Name != "" || opts.Committer.Email != "" {
		fo.Committer = &github.CommitAuthor{
			Name:  github.Ptr(opts.Committer.Name),
			Email: github.Ptr(opts.Committer.Email),
		}
	}
	return fo
}

// classify maps go-github errors onto contentstore kinds.
func classify(op, path string, err error) error {
	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		respErr  *github.ErrorResponse
	)
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return contentstore.NewError(contentstore.KindTransient, op, path, err)
	case errors.As(err, &respErr) && respErr.Response != nil:
		return contentstore.NewError(kindForStatus(respErr.Response.StatusCode), op, path, err)
	default:
		return contentstore.NewError(contentstore.KindTransient, op, path, err)
	}
}

func kindForStatus(code int) contentstore.Kind {
	switch {
	case code == http.StatusNotFound:
		return contentstore.KindNotFound
	// 409 is a stale SHA; 422 is a missing SHA, which GitHub returns when a
	// create races with another writer that already created the file.
	case code == http.StatusConflict, code == http.StatusUnprocessableEntity:
		return contentstore.KindConflict
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return contentstore.KindTransient
	// Any other client error repeats identically on retry.
	case code >= http.StatusBadRequest:
		return contentstore.KindInvalid
	default:
		return contentstore.KindTransient
	}
}
