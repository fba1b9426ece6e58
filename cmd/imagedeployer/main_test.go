/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	cstesting "chainguard.dev/imagedeployer/contentstore/testing"
	"chainguard.dev/imagedeployer/deployer"
	"github.com/stretchr/testify/require"
)

const kit = "images:\n  path: /env\n  property: tag\n"

func run(t *testing.T, store *cstesting.Fake, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(func(context.Context) (imageDeployer, error) {
		return deployer.New(store, deployer.Config{
			Registry:   "gcr.io",
			Repository: "acme/api",
			Ref:        "main",
		})
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommitCommand(t *testing.T) {
	store := cstesting.NewFake(map[string]string{"kit.yaml": kit})

	out, err := run(t, store, "commit", "4f2c1e9", "--branch", "main",
		"--committer-name", "CI", "--committer-email", "ci@example.com")
	require.NoError(t, err)

	want := "Successfully committed tag: 'gcr.io/acme/api:main-4f2c1e9' to env/gcr.io/acme/api/main.yaml\n"
	if out != want {
		t.Errorf("output: got = %q, wanted = %q", out, want)
	}
	writes := store.Writes()
	require.Len(t, writes, 1)
	if got, want := writes[0].Options.Committer.Email, "ci@example.com"; got != want {
		t.Errorf("committer email: got = %q, wanted = %q", got, want)
	}
}

func TestImageCommandDryRun(t *testing.T) {
	store := cstesting.NewFake(map[string]string{
		"kit.yaml":                      kit,
		"env/gcr.io/acme/api/main.yaml": "tag: gcr.io/acme/api:main-old\n",
	})

	out, err := run(t, store, "image", "gcr.io/acme/api:main-new", "-b", "main", "--dry-run")
	require.NoError(t, err)

	if !strings.HasPrefix(out, "Commit disabled, but would have committed") {
		t.Errorf("output: got = %q, wanted a dry-run description", out)
	}
	if got := store.Calls("update") + store.Calls("create"); got != 0 {
		t.Errorf("write calls: got = %d, wanted = 0", got)
	}
}

func TestCommandRequiresBranch(t *testing.T) {
	store := cstesting.NewFake(map[string]string{"kit.yaml": kit})

	if _, err := run(t, store, "image", "gcr.io/acme/api:v1"); err == nil {
		t.Error("missing --branch: got = nil, wanted = error")
	}
	if got := store.Calls("get"); got != 0 {
		t.Errorf("get calls: got = %d, wanted = 0", got)
	}
}

func TestCommandLoadError(t *testing.T) {
	want := errors.New("no credentials")
	cmd := newRootCommand(func(context.Context) (imageDeployer, error) { return nil, want })
	cmd.SetArgs([]string{"image", "v1", "--branch", "main"})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.ExecuteContext(context.Background()); !errors.Is(err, want) {
		t.Errorf("error: got = %v, wanted = %v", err, want)
	}
}

func TestHTTPClientRequiresCredentials(t *testing.T) {
	ctx := context.Background()
	if _, err := httpClient(ctx, config{}); err == nil {
		t.Error("no credentials: got = nil, wanted = error")
	}
	if _, err := httpClient(ctx, config{AppID: 1}); err == nil {
		t.Error("app without installation: got = nil, wanted = error")
	}
	hc, err := httpClient(ctx, config{Token: "t0ken"})
	require.NoError(t, err)
	require.NotNil(t, hc)
}
