/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the imagedeployer CLI, which records a freshly
// built image in the deploy repository so the matching environment picks it
// up.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainguard.dev/imagedeployer/commit"
	"chainguard.dev/imagedeployer/contentstore"
	"chainguard.dev/imagedeployer/contentstore/githubstore"
	"chainguard.dev/imagedeployer/deployer"
	"chainguard.dev/imagedeployer/retry"
	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/google/go-github/v84/github"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

type config struct {
	// Deploy repository
	Owner string `env:"GITHUB_OWNER,required"`
	Repo  string `env:"GITHUB_REPO,required"`
	Ref   string `env:"GITHUB_REF,default=main"`

	// Either a token or GitHub App installation credentials
	Token          string `env:"GITHUB_TOKEN"`
	AppID          int64  `env:"GITHUB_APP_ID"`
	InstallationID int64  `env:"GITHUB_INSTALLATION_ID"`
	PrivateKeyPath string `env:"GITHUB_APP_PRIVATE_KEY_PATH"`

	Registry     string `env:"DOCKER_REGISTRY"`
	Repository   string `env:"DOCKER_REPO"`
	ManifestPath string `env:"MANIFEST_PATH,default=kit.yaml"`

	MaxRetries  int           `env:"MAX_RETRIES,default=10"`
	BaseBackoff time.Duration `env:"RETRY_BASE_BACKOFF,default=0s"`
	MaxBackoff  time.Duration `env:"RETRY_MAX_BACKOFF,default=0s"`
	MaxJitter   time.Duration `env:"RETRY_MAX_JITTER,default=0s"`
}

// imageDeployer is the part of *deployer.Deployer the commands use.
type imageDeployer interface {
	DeployCommitID(ctx context.Context, commitID string, req deployer.Request) (*commit.Outcome, error)
	DeployImage(ctx context.Context, image string, req deployer.Request) (*commit.Outcome, error)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand(func(ctx context.Context) (imageDeployer, error) {
		var cfg config
		if err := envconfig.Process(ctx, &cfg); err != nil {
			return nil, fmt.Errorf("processing config: %w", err)
		}
		return newDeployer(ctx, cfg)
	})
	if err := cmd.ExecuteContext(ctx); err != nil {
		clog.FatalContextf(ctx, "imagedeployer: %v", err)
	}
}

func newDeployer(ctx context.Context, cfg config) (*deployer.Deployer, error) {
	hc, err := httpClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := githubstore.New(github.NewClient(hc), cfg.Owner, cfg.Repo)

	clog.InfoContextf(ctx, "Deploying to %s/%s@%s (manifest %s)", cfg.Owner, cfg.Repo, cfg.Ref, cfg.ManifestPath)
	return deployer.New(store, deployer.Config{
		Registry:     cfg.Registry,
		Repository:   cfg.Repository,
		ManifestPath: cfg.ManifestPath,
		Ref:          cfg.Ref,
	},
		commit.WithMaxRetries(cfg.MaxRetries),
		commit.WithBackoff(retry.Config{
			BaseBackoff: cfg.BaseBackoff,
			MaxBackoff:  cfg.MaxBackoff,
			MaxJitter:   cfg.MaxJitter,
		}),
	)
}

func httpClient(ctx context.Context, cfg config) (*http.Client, error) {
	switch {
	case cfg.AppID != 0:
		if cfg.InstallationID == 0 || cfg.PrivateKeyPath == "" {
			return nil, errors.New("GITHUB_APP_ID requires GITHUB_INSTALLATION_ID and GITHUB_APP_PRIVATE_KEY_PATH")
		}
		tr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, cfg.AppID, cfg.InstallationID, cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("loading GitHub App key: %w", err)
		}
		clog.InfoContextf(ctx, "Using GitHub App %d installation %d", cfg.AppID, cfg.InstallationID)
		return &http.Client{Transport: tr}, nil
	case cfg.Token != "":
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})), nil
	default:
		return nil, errors.New("one of GITHUB_TOKEN or GITHUB_APP_ID must be set")
	}
}

func newRootCommand(load func(context.Context) (imageDeployer, error)) *cobra.Command {
	var (
		req            deployer.Request
		committerName  string
		committerEmail string
		dryRun         bool
	)

	root := &cobra.Command{
		Use:           "imagedeployer",
		Short:         "Point a branch's deploy document at a new image",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			req.Committer = contentstore.Committer{Name: committerName, Email: committerEmail}
			req.Persist = !dryRun
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&req.Branch, "branch", "b", "", "branch whose deploy document is updated")
	flags.StringVarP(&req.Message, "message", "m", "", "commit message (generated when empty)")
	flags.StringVar(&committerName, "committer-name", "", "name recorded as the committer")
	flags.StringVar(&committerEmail, "committer-email", "", "email recorded as the committer")
	flags.BoolVar(&dryRun, "dry-run", false, "compute the change without writing it")
	_ = root.MarkPersistentFlagRequired("branch")

	deploy := func(run func(context.Context, imageDeployer, string) (*commit.Outcome, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			d, err := load(cmd.Context())
			if err != nil {
				return err
			}
			out, err := run(cmd.Context(), d, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "commit COMMIT_ID",
		Short: "Deploy the image built from a commit",
		Args:  cobra.ExactArgs(1),
		RunE: deploy(func(ctx context.Context, d imageDeployer, commitID string) (*commit.Outcome, error) {
			return d.DeployCommitID(ctx, commitID, req)
		}),
	})
	root.AddCommand(&cobra.Command{
		Use:   "image IMAGE",
		Short: "Deploy a fully qualified image reference",
		Args:  cobra.ExactArgs(1),
		RunE: deploy(func(ctx context.Context, d imageDeployer, image string) (*commit.Outcome, error) {
			return d.DeployImage(ctx, image, req)
		}),
	})
	return root
}
