/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements forksync, a one-shot maintenance command that
// syncs a forked repository's default branch with its upstream and rebases
// the currently checked-out branch onto it.
//
// The workflow is advisory: every internal failure degrades to a reported
// outcome and the process always exits 0, so it can be layered onto a
// session without ever blocking it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"chainguard.dev/forksync/forksyncer"
	"chainguard.dev/forksync/githubhost"
	"chainguard.dev/forksync/gitrepo"
	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

type config struct {
	// GitHubToken authenticates hosting API calls and HTTPS fetches.
	// Optional: without it, fork checks on public repositories still work
	// and the sync call degrades to a reported skip.
	GitHubToken string `env:"GITHUB_TOKEN"`

	// GitHubURL points at a GitHub Enterprise or proxy host.
	GitHubURL string `env:"GITHUB_URL"`

	Remote        string `env:"FORKSYNC_REMOTE,default=origin"`
	DefaultBranch string `env:"FORKSYNC_DEFAULT_BRANCH,default=main"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		clog.ErrorContextf(ctx, "forksync: %v", err)
	}
	// Always exit 0: the workflow augments a session but must never block it.
}

func newRootCommand() *cobra.Command {
	var (
		workdir       string
		remote        string
		defaultBranch string
		githubURL     string
	)

	cmd := &cobra.Command{
		Use:           "forksync",
		Short:         "Sync a fork's default branch with upstream and rebase the current branch onto it",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var cfg config
			if err := envconfig.Process(ctx, &cfg); err != nil {
				clog.ErrorContextf(ctx, "processing config: %v", err)
				return nil
			}

			// Flags win over environment.
			if cmd.Flags().Changed("remote") {
				cfg.Remote = remote
			}
			if cmd.Flags().Changed("default-branch") {
				cfg.DefaultBranch = defaultBranch
			}
			if cmd.Flags().Changed("github-url") {
				cfg.GitHubURL = githubURL
			}

			run(ctx, cfg, workdir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&workdir, "workdir", ".", "working directory to sync")
	flags.StringVar(&remote, "remote", forksyncer.DefaultRemote, "remote holding the fork")
	flags.StringVar(&defaultBranch, "default-branch", forksyncer.DefaultBranch, "upstream default branch name")
	flags.StringVar(&githubURL, "github-url", "", "GitHub Enterprise or proxy base URL")

	return cmd
}

func run(ctx context.Context, cfg config, workdir string) {
	var (
		hostOpts    []githubhost.Option
		tokenSource oauth2.TokenSource
	)
	if cfg.GitHubToken != "" {
		tokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHubToken})
		hostOpts = append(hostOpts, githubhost.WithTokenSource(tokenSource))
	}
	if cfg.GitHubURL != "" {
		hostOpts = append(hostOpts, githubhost.WithBaseURL(cfg.GitHubURL))
	}

	host, err := githubhost.New(ctx, hostOpts...)
	if err != nil {
		clog.ErrorContextf(ctx, "creating hosting client: %v", err)
		return
	}

	syncOpts := []forksyncer.Option{
		forksyncer.WithRemote(cfg.Remote),
		forksyncer.WithDefaultBranch(cfg.DefaultBranch),
	}
	if tokenSource != nil {
		syncOpts = append(syncOpts, forksyncer.WithOpener(func(dir string) (forksyncer.Repository, error) {
			return gitrepo.Open(dir, gitrepo.WithTokenSource(tokenSource))
		}))
	}

	syncer, err := forksyncer.New(host, syncOpts...)
	if err != nil {
		clog.ErrorContextf(ctx, "creating syncer: %v", err)
		return
	}

	outcome := syncer.Run(ctx, workdir)
	clog.InfoContextf(ctx, "Sync finished: %s", outcome)
}
