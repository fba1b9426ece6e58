/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package manifest loads the routing manifest that tells the deployer which
// file to edit and which key inside it holds the image reference.
//
// The manifest is a YAML mapping stored in the deploy repository:
//
//	images:
//	  path: /env
//	  property: tag
package manifest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"chainguard.dev/imagedeployer/contentstore"
	"github.com/chainguard-dev/clog"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the manifest lives when no path is configured.
const DefaultPath = "kit.yaml"

// ErrInvalidManifest is returned when the manifest is not a mapping or is
// missing required fields.
var ErrInvalidManifest = errors.New("invalid manifest")

// Config is the parsed manifest.
type Config struct {
	// PathTemplate is the directory image documents live under.
	PathTemplate string
	// Property is the top-level key that holds the image reference.
	Property string
}

// TargetPath returns the document path for the given image location and
// branch: <PathTemplate>/<registry>/<repository>/<branch>.yaml, with the
// template's leading slash removed. Empty components are skipped.
func (c Config) TargetPath(registry, repository, branch string) string {
	return path.Join(strings.TrimPrefix(c.PathTemplate, "/"), registry, repository, branch+".yaml")
}

type document struct {
	Images struct {
		Path     string `yaml:"path"`
		Property string `yaml:"property"`
	} `yaml:"images"`
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document is not a mapping", ErrInvalidManifest)
	}

	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if doc.Images.Property == "" {
		return nil, fmt.Errorf("%w: images.property is required", ErrInvalidManifest)
	}
	if doc.Images.Path == "" {
		return nil, fmt.Errorf("%w: images.path is required", ErrInvalidManifest)
	}
	return &Config{
		PathTemplate: doc.Images.Path,
		Property:     doc.Images.Property,
	}, nil
}

// Resolver fetches and parses the manifest from a store.
type Resolver struct {
	store contentstore.Store
	path  string
	ref   string
}

// NewResolver returns a Resolver reading path at ref. An empty path means
// DefaultPath.
func NewResolver(store contentstore.Store, path, ref string) *Resolver {
	if path == "" {
		path = DefaultPath
	}
	return &Resolver{store: store, path: path, ref: ref}
}

// Path returns the manifest location.
func (r *Resolver) Path() string { return r.path }

// Resolve fetches the manifest. Store errors are returned as-is; a missing or
// malformed manifest is a configuration problem and is never retried.
func (r *Resolver) Resolve(ctx context.Context) (*Config, error) {
	doc, err := r.store.Get(ctx, r.path, r.ref)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.path, err)
	}
	clog.FromContext(ctx).With("manifest", r.path).
		With("path", cfg.PathTemplate).
		With("property", cfg.Property).
		Info("Resolved manifest")
	return cfg, nil
}
