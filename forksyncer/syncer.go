/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package forksyncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/forksync/gitrepo"
	"chainguard.dev/forksync/repourl"
	"github.com/chainguard-dev/clog"
)

const (
	// DefaultRemote is the remote consulted when none is configured.
	DefaultRemote = "origin"

	// DefaultBranch is the fallback default-branch name when none is
	// configured.
	DefaultBranch = "main"

	// abortGrace bounds the best-effort rebase abort. The abort runs on a
	// context detached from the caller's so it is still attempted when the
	// run was canceled mid-rebase.
	abortGrace = 30 * time.Second
)

// Repository is the local version-control backend the workflow inspects and
// mutates. gitrepo.Repo implements it; tests substitute fakes.
type Repository interface {
	// RemoteURL returns the URL of the named remote, reporting false when
	// the remote is not configured.
	RemoteURL(name string) (string, bool)

	// CurrentBranch returns the checked-out branch name, reporting false
	// when HEAD is detached or unborn.
	CurrentBranch() (string, bool)

	// WorktreeClean reports whether there are no staged and no unstaged
	// modifications.
	WorktreeClean() (bool, error)

	// Fetch updates the remote-tracking ref for one branch of a remote.
	Fetch(ctx context.Context, remote, branch string) error

	// RebaseOnto reapplies the current branch onto ref.
	RebaseOnto(ctx context.Context, ref string) error

	// AbortRebase abandons an in-progress rebase, restoring the branch to
	// its pre-rebase tip.
	AbortRebase(ctx context.Context) error
}

// Host answers hosting-service questions about a repository identity.
// githubhost.Client implements it.
type Host interface {
	// IsFork reports whether the identified repository is registered as a
	// fork of another repository.
	IsFork(ctx context.Context, id repourl.Identity) (bool, error)

	// SyncFork syncs the named branch of the fork with its upstream.
	SyncFork(ctx context.Context, id repourl.Identity, branch string) error
}

// Opener resolves a working directory to a Repository.
type Opener func(dir string) (Repository, error)

// Syncer executes the fork sync workflow. It is stateless between runs.
type Syncer struct {
	host Host
	open Opener

	remote        string
	defaultBranch string
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithRemote overrides the remote name consulted for the repository
// identity and fetched from (default "origin").
func WithRemote(name string) Option {
	return func(s *Syncer) {
		s.remote = name
	}
}

// WithDefaultBranch overrides the upstream default-branch name
// (default "main").
func WithDefaultBranch(name string) Option {
	return func(s *Syncer) {
		s.defaultBranch = name
	}
}

// WithOpener overrides how working directories are resolved to
// repositories, e.g. to attach fetch credentials or substitute fakes.
func WithOpener(open Opener) Option {
	return func(s *Syncer) {
		s.open = open
	}
}

// New constructs a Syncer for the given hosting API.
func New(host Host, opts ...Option) (*Syncer, error) {
	if host == nil {
		return nil, errors.New("host cannot be nil")
	}

	s := &Syncer{
		host: host,
		open: func(dir string) (Repository, error) {
			return gitrepo.Open(dir)
		},
		remote:        DefaultRemote,
		defaultBranch: DefaultBranch,
	}
	for _, opt := range opts {
		opt(s)
	}

	if strings.TrimSpace(s.remote) == "" {
		return nil, errors.New("remote name cannot be empty")
	}
	if strings.TrimSpace(s.defaultBranch) == "" {
		return nil, errors.New("default branch name cannot be empty")
	}
	return s, nil
}

// Run executes the workflow against workingDirectory and returns a terminal
// Outcome. It performs at most one mutating action sequence (fork sync,
// fetch, rebase), never touches uncommitted work, and never returns an
// error: every failure degrades to a reported outcome.
func (s *Syncer) Run(ctx context.Context, workingDirectory string) Outcome {
	log := clog.FromContext(ctx)

	repo, err := s.open(workingDirectory)
	if err != nil {
		log.Infof("Not a repository, nothing to sync: %v", err)
		return skipped(ReasonNotARepository)
	}

	remoteURL, ok := repo.RemoteURL(s.remote)
	if !ok {
		log.Infof("No %s remote configured, nothing to sync", s.remote)
		return skipped(ReasonNoOriginRemote)
	}

	id, ok := repourl.Parse(remoteURL)
	if !ok {
		log.Warnf("Could not parse repository identity from %s remote %q", s.remote, remoteURL)
		return skipped(ReasonUnparsableRemote)
	}
	log = log.With("repo", id.String())

	isFork, err := s.host.IsFork(ctx, id)
	if err != nil {
		// An ambiguous answer is never treated as "is a fork".
		log.Warnf("Could not determine fork status: %v", err)
		return skipped(ReasonForkStatusUnknown)
	}
	if !isFork {
		log.Infof("Repository is not a fork, nothing to sync")
		return skipped(ReasonNotAFork)
	}

	log.Infof("Syncing fork with upstream %s", s.defaultBranch)
	if err := s.host.SyncFork(ctx, id, s.defaultBranch); err != nil {
		log.Warnf("Fork sync failed: %v", err)
		return skipped(ReasonForkSyncFailed)
	}

	branch, ok := repo.CurrentBranch()
	if !ok {
		log.Infof("Detached HEAD, skipping rebase")
		return withoutRebase(ReasonOnDefaultBranch)
	}
	if branch == s.defaultBranch {
		log.Infof("Already on %s, skipping rebase", s.defaultBranch)
		return withoutRebase(ReasonOnDefaultBranch)
	}

	clean, err := repo.WorktreeClean()
	if err != nil {
		log.Warnf("Could not verify working tree state, skipping rebase: %v", err)
		return withoutRebase(ReasonUnknownCleanState)
	}
	if !clean {
		log.Infof("Uncommitted changes present, skipping rebase")
		return withoutRebase(ReasonDirtyWorktree)
	}

	if err := repo.Fetch(ctx, s.remote, s.defaultBranch); err != nil {
		log.Warnf("Fetch failed: %v", err)
		return skipped(ReasonFetchFailed)
	}

	target := fmt.Sprintf("refs/remotes/%s/%s", s.remote, s.defaultBranch)
	if err := repo.RebaseOnto(ctx, target); err != nil {
		log.Warnf("Rebase of %s onto %s failed: %v", branch, target, err)
		s.abortRebase(ctx, repo)
		return withoutRebase(ReasonRebaseAborted)
	}

	log.Infof("Rebased %s onto %s", branch, target)
	return completed()
}

// abortRebase is the compensating action for a failed rebase. It is
// best-effort: it runs on a context detached from the caller's cancellation
// so the repository is not left mid-rebase when the run is being torn down,
// and its own failure is reported as a secondary warning rather than
// replacing the primary one.
func (s *Syncer) abortRebase(ctx context.Context, repo Repository) {
	abortCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortGrace)
	defer cancel()

	if err := repo.AbortRebase(abortCtx); err != nil {
		clog.FromContext(ctx).Warnf("Aborting rebase also failed, repository may need manual recovery: %v", err)
	}
}
