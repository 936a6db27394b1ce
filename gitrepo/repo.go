/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"golang.org/x/oauth2"
)

// ErrNotARepository is returned by Open when the directory is not inside a
// git working tree.
var ErrNotARepository = errors.New("not a git repository")

// Repo provides inspection and mutation of a single local git repository.
type Repo struct {
	repo *git.Repository
	root string

	tokenSource oauth2.TokenSource
}

// Option configures a Repo at Open time.
type Option func(*Repo)

// WithTokenSource supplies an OAuth2 token source used as HTTP basic auth
// when fetching over HTTP(S). Remotes on other transports (SSH, local
// paths) fetch with their own credentials; the token source is never
// consulted for them.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(r *Repo) {
		r.tokenSource = ts
	}
}

// Open locates the repository enclosing dir and returns a handle to it.
// Returns ErrNotARepository when dir is not under version control.
func Open(dir string, opts ...Option) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotARepository
		}
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no working tree to sync or rebase.
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, ErrNotARepository
		}
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	r := &Repo{
		repo: repo,
		root: worktree.Filesystem.Root(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Root returns the absolute path of the repository's working tree.
func (r *Repo) Root() string {
	return r.root
}

// RemoteURL returns the first configured URL of the named remote, reporting
// false when no such remote exists.
func (r *Repo) RemoteURL(name string) (string, bool) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return "", false
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", false
	}
	return urls[0], true
}

// CurrentBranch returns the short name of the branch HEAD points at,
// reporting false when HEAD is detached or unborn.
func (r *Repo) CurrentBranch() (string, bool) {
	head, err := r.repo.Head()
	if err != nil {
		return "", false
	}
	if !head.Name().IsBranch() {
		return "", false
	}
	return head.Name().Short(), true
}

// WorktreeClean reports whether the working tree has no staged and no
// unstaged modifications.
func (r *Repo) WorktreeClean() (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("getting worktree status: %w", err)
	}
	return status.IsClean(), nil
}

// Fetch updates the remote-tracking ref for a single branch of the named
// remote. An already up to date ref is not an error.
func (r *Repo) Fetch(ctx context.Context, remote, branch string) error {
	fetchOpts := &git.FetchOptions{
		RemoteName: remote,
		RefSpecs: []gitconfig.RefSpec{
			gitconfig.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remote, branch)),
		},
	}

	// The token is HTTP basic auth; go-git's other transports (SSH, local
	// paths) reject it, so only attach it where it can be presented.
	if url, ok := r.RemoteURL(remote); ok && r.tokenSource != nil && httpRemote(url) {
		token, err := r.tokenSource.Token()
		if err != nil {
			return fmt.Errorf("getting token: %w", err)
		}
		fetchOpts.Auth = &githttp.BasicAuth{
			Username: "unused-when-using-access-tokens",
			Password: token.AccessToken,
		}
	}

	clog.FromContext(ctx).Infof("Fetching %s/%s", remote, branch)
	if err := r.repo.FetchContext(ctx, fetchOpts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetching %s/%s: %w", remote, branch, err)
	}
	return nil
}

// httpRemote reports whether a remote URL uses the HTTP(S) transport.
func httpRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
