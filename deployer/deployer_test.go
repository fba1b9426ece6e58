/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package deployer

import (
	"context"
	"errors"
	"testing"

	"chainguard.dev/imagedeployer/commit"
	"chainguard.dev/imagedeployer/contentstore"
	cstesting "chainguard.dev/imagedeployer/contentstore/testing"
	"chainguard.dev/imagedeployer/manifest"
	"github.com/stretchr/testify/require"
)

const kit = "images:\n  path: /env\n  property: tag\n"

func TestDeployImage(t *testing.T) {
	store := cstesting.NewFake(map[string]string{
		"kit.yaml":      kit,
		"env/main.yaml": "tag: v1\nowner: team-a\n",
	})
	d, err := New(store, Config{Ref: "main"})
	require.NoError(t, err)

	out, err := d.DeployImage(context.Background(), "v2", Request{Branch: "main", Persist: true})
	require.NoError(t, err)

	if got, want := out.Result, commit.Updated; got != want {
		t.Errorf("result: got = %v, wanted = %v", got, want)
	}
	if got, want := out.String(), "Successfully committed tag: 'v2' to env/main.yaml"; got != want {
		t.Errorf("outcome: got = %q, wanted = %q", got, want)
	}
	got, _ := store.Content("env/main.yaml")
	if want := "tag: v2\nowner: team-a\n"; got != want {
		t.Errorf("document: got = %q, wanted = %q", got, want)
	}
}

func TestDeployCommitID(t *testing.T) {
	store := cstesting.NewFake(map[string]string{"deploy/kit.yaml": kit})
	d, err := New(store, Config{
		Registry:     "gcr.io",
		Repository:   "acme/api",
		ManifestPath: "deploy/kit.yaml",
		Ref:          "main",
	})
	require.NoError(t, err)

	committer := contentstore.Committer{Name: "CI", Email: "ci@example.com"}
	out, err := d.DeployCommitID(context.Background(), "4f2c1e9", Request{
		Branch:    "staging",
		Committer: committer,
		Message:   "deploy 4f2c1e9",
		Persist:   true,
	})
	require.NoError(t, err)

	if got, want := out.Result, commit.Created; got != want {
		t.Errorf("result: got = %v, wanted = %v", got, want)
	}
	got, ok := store.Content("env/gcr.io/acme/api/staging.yaml")
	if !ok {
		t.Fatal("document not created")
	}
	if want := "tag: gcr.io/acme/api:staging-4f2c1e9\n"; got != want {
		t.Errorf("document: got = %q, wanted = %q", got, want)
	}
	writes := store.Writes()
	require.Len(t, writes, 1)
	if got := writes[0].Options.Committer; got != committer {
		t.Errorf("committer: got = %+v, wanted = %+v", got, committer)
	}
	if got, want := writes[0].Options.Branch, "main"; got != want {
		t.Errorf("branch: got = %q, wanted = %q", got, want)
	}
}

func TestImageForCommit(t *testing.T) {
	d, err := New(cstesting.NewFake(nil), Config{Registry: "gcr.io", Repository: "acme/api"})
	require.NoError(t, err)

	tests := []struct {
		branch string
		want   string
	}{
		{branch: "main", want: "gcr.io/acme/api:main-abc"},
		{branch: "/main", want: "gcr.io/acme/api:main-abc"},
		{branch: "//main", want: "gcr.io/acme/api:/main-abc"},
	}
	for _, tt := range tests {
		if got := d.ImageForCommit("abc", tt.branch); got != tt.want {
			t.Errorf("ImageForCommit(%q): got = %q, wanted = %q", tt.branch, got, tt.want)
		}
	}
}

func TestDeployDryRun(t *testing.T) {
	store := cstesting.NewFake(map[string]string{
		"kit.yaml":      kit,
		"env/main.yaml": "tag: v1\n",
	})
	d, err := New(store, Config{Ref: "main"})
	require.NoError(t, err)

	out, err := d.DeployImage(context.Background(), "v2", Request{Branch: "main"})
	require.NoError(t, err)
	if got, want := out.Result, commit.DryRunWouldUpdate; got != want {
		t.Errorf("result: got = %v, wanted = %v", got, want)
	}
	if got, want := out.String(), "Commit disabled, but would have committed tag: 'v2' to env/main.yaml"; got != want {
		t.Errorf("outcome: got = %q, wanted = %q", got, want)
	}
	if got := store.Calls("update") + store.Calls("create"); got != 0 {
		t.Errorf("write calls: got = %d, wanted = 0", got)
	}
}

func TestDeployManifestErrors(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		store := cstesting.NewFake(nil)
		d, err := New(store, Config{})
		require.NoError(t, err)

		_, err = d.DeployImage(context.Background(), "v2", Request{Branch: "main", Persist: true})
		if !contentstore.IsNotFound(err) {
			t.Errorf("error: got = %v, wanted = not found", err)
		}
		if got, want := store.Calls("get"), 1; got != want {
			t.Errorf("get calls: got = %d, wanted = %d", got, want)
		}
	})

	t.Run("invalid manifest", func(t *testing.T) {
		store := cstesting.NewFake(map[string]string{"kit.yaml": "images: nope\n"})
		d, err := New(store, Config{})
		require.NoError(t, err)

		_, err = d.DeployImage(context.Background(), "v2", Request{Branch: "main", Persist: true})
		if !errors.Is(err, manifest.ErrInvalidManifest) {
			t.Errorf("error: got = %v, wanted = %v", err, manifest.ErrInvalidManifest)
		}
		if got := store.Calls("create") + store.Calls("update"); got != 0 {
			t.Errorf("write calls: got = %d, wanted = 0", got)
		}
	})
}

func TestNewValidation(t *testing.T) {
	if _, err := New(cstesting.NewFake(nil), Config{Registry: "gcr.io", Repository: "Not Valid"}); err == nil {
		t.Error("invalid repository: got = nil, wanted = error")
	}
	if _, err := New(cstesting.NewFake(nil), Config{}, commit.WithMaxRetries(-1)); err == nil {
		t.Error("negative retries: got = nil, wanted = error")
	}
}

func TestDeployCommitIDRequiresImageLocation(t *testing.T) {
	d, err := New(cstesting.NewFake(map[string]string{"kit.yaml": kit}), Config{})
	require.NoError(t, err)

	if _, err := d.DeployCommitID(context.Background(), "abc", Request{Branch: "main"}); err == nil {
		t.Error("DeployCommitID without registry: got = nil, wanted = error")
	}
}
