/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package deployer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/imagedeployer/commit"
	"chainguard.dev/imagedeployer/contentstore"
	"chainguard.dev/imagedeployer/manifest"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-containerregistry/pkg/name"
)

// Config describes where images live and where the deploy repository keeps
// its manifest.
type Config struct {
	// Registry and Repository form the image name, e.g. gcr.io and acme/api.
	Registry   string
	Repository string
	// ManifestPath defaults to manifest.DefaultPath.
	ManifestPath string
	// Ref is the deploy repository branch read from and committed to.
	Ref string
}

// Request carries the per-deployment parameters.
type Request struct {
	Branch    string
	Committer contentstore.Committer
	Message   string
	// Persist false performs a dry run.
	Persist bool
}

// Deployer records deployed images in a deploy repository.
type Deployer struct {
	cfg      Config
	resolver *manifest.Resolver
	engine   *commit.Engine
}

// New constructs a Deployer. opts are passed to commit.New; WithRef is
// always derived from cfg.Ref.
func New(store contentstore.Store, cfg Config, opts ...commit.Option) (*Deployer, error) {
	if cfg.Registry != "" && cfg.Repository != "" {
		if _, err := name.NewRepository(cfg.Registry + "/" + cfg.Repository); err != nil {
			return nil, fmt.Errorf("invalid image repository: %w", err)
		}
	}

	engine, err := commit.New(store, append(append([]commit.Option(nil), opts...), commit.WithRef(cfg.Ref))...)
	if err != nil {
		return nil, fmt.Errorf("creating commit engine: %w", err)
	}

	return &Deployer{
		cfg:      cfg,
		resolver: manifest.NewResolver(store, cfg.ManifestPath, cfg.Ref),
		engine:   engine,
	}, nil
}

// ImageForCommit returns registry/repository:<branch>-<commitID>, with a
// single leading slash dropped from the branch.
func (d *Deployer) ImageForCommit(commitID, branch string) string {
	return d.cfg.Registry + "/" + d.cfg.Repository + ":" + strings.TrimPrefix(branch, "/") + "-" + commitID
}

// DeployCommitID deploys the image built from commitID on req.Branch.
func (d *Deployer) DeployCommitID(ctx context.Context, commitID string, req Request) (*commit.Outcome, error) {
	if d.cfg.Registry == "" || d.cfg.Repository == "" {
		return nil, errors.New("registry and repository must be configured to deploy by commit id")
	}
	if strings.TrimSpace(commitID) == "" {
		return nil, errors.New("commit id is required")
	}
	return d.DeployImage(ctx, d.ImageForCommit(commitID, req.Branch), req)
}

// DeployImage records image as the current deployment for req.Branch.
func (d *Deployer) DeployImage(ctx context.Context, image string, req Request) (*commit.Outcome, error) {
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("branch", req.Branch).With("persist", req.Persist))

	cfg, err := d.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest %s: %w", d.resolver.Path(), err)
	}

	return d.engine.Commit(ctx, commit.Target{
		Image:      image,
		Branch:     req.Branch,
		Registry:   d.cfg.Registry,
		Repository: d.cfg.Repository,
		Committer:  req.Committer,
		Message:    req.Message,
		Persist:    req.Persist,
	}, *cfg)
}
