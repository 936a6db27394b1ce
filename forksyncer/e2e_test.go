/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package forksyncer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"chainguard.dev/forksync/gitrepo"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// originOverride stands in for a clone whose origin points at github.com
// while fetches are served from a local fixture repository.
type originOverride struct {
	*gitrepo.Repo
}

func (originOverride) RemoteURL(string) (string, bool) {
	return "https://github.com/alice/uv.git", true
}

// TestRunAgainstRealRepository drives the full pipeline over real git
// repositories with only the hosting API faked: the fork's upstream gains a
// commit, the local feature branch is rebased onto it.
func TestRunAgainstRealRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	ctx := context.Background()

	upstreamRepo, upstreamDir := initRepo(t)
	commit(t, upstreamRepo, upstreamDir, "README.md", "hello\n", "initial")

	localDir := cloneRepo(t, upstreamDir)
	localRepo, err := git.PlainOpen(localDir)
	require.NoError(t, err)

	localWT, err := localRepo.Worktree()
	require.NoError(t, err)
	require.NoError(t, localWT.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature-x"),
		Create: true,
	}))
	commit(t, localRepo, localDir, "feature.txt", "feature\n", "feature work")

	// Upstream advances after the fork was cloned.
	upstreamHead := commit(t, upstreamRepo, upstreamDir, "docs.txt", "docs\n", "upstream advances")

	host := &fakeHost{fork: true}
	s, err := New(host, WithOpener(func(dir string) (Repository, error) {
		repo, err := gitrepo.Open(dir)
		if err != nil {
			return nil, err
		}
		return originOverride{repo}, nil
	}))
	require.NoError(t, err)

	got := s.Run(ctx, localDir)
	require.Equal(t, completed(), got)
	require.Equal(t, 1, host.syncCalls)

	head, err := localRepo.Head()
	require.NoError(t, err)
	require.Equal(t, "feature-x", head.Name().Short())

	rebased, err := localRepo.CommitObject(head.Hash())
	require.NoError(t, err)
	require.Equal(t, "feature work", rebased.Message)
	require.Equal(t, []plumbing.Hash{upstreamHead}, rebased.ParentHashes)

	// Both the upstream and local changes are present in the tree.
	for _, name := range []string{"docs.txt", "feature.txt"} {
		_, err := os.Stat(filepath.Join(localDir, name))
		require.NoError(t, err, "expected %s in rebased tree", name)
	}
}

// TestRunConflictLeavesBranchUntouched verifies the recovery path: a
// conflicting rebase is aborted and the branch tip is exactly what it was
// before the run.
func TestRunConflictLeavesBranchUntouched(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	ctx := context.Background()

	upstreamRepo, upstreamDir := initRepo(t)
	commit(t, upstreamRepo, upstreamDir, "file.txt", "base\n", "initial")

	localDir := cloneRepo(t, upstreamDir)
	localRepo, err := git.PlainOpen(localDir)
	require.NoError(t, err)

	localWT, err := localRepo.Worktree()
	require.NoError(t, err)
	require.NoError(t, localWT.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature-x"),
		Create: true,
	}))
	featureTip := commit(t, localRepo, localDir, "file.txt", "feature\n", "feature change")

	commit(t, upstreamRepo, upstreamDir, "file.txt", "upstream\n", "upstream change")

	host := &fakeHost{fork: true}
	s, err := New(host, WithOpener(func(dir string) (Repository, error) {
		repo, err := gitrepo.Open(dir)
		if err != nil {
			return nil, err
		}
		return originOverride{repo}, nil
	}))
	require.NoError(t, err)

	got := s.Run(ctx, localDir)
	require.Equal(t, withoutRebase(ReasonRebaseAborted), got)

	head, err := localRepo.Head()
	require.NoError(t, err)
	require.Equal(t, "feature-x", head.Name().Short())
	require.Equal(t, featureTip, head.Hash())

	// No rebase left in progress.
	_, err = os.Stat(filepath.Join(localDir, ".git", "rebase-merge"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func initRepo(t *testing.T) (*git.Repository, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, repo.Storer.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))))

	configureIdentity(t, repo)
	return repo, dir
}

func cloneRepo(t *testing.T, url string) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainClone(dir, false, &git.CloneOptions{URL: url})
	require.NoError(t, err)

	configureIdentity(t, repo)
	return dir
}

// configureIdentity writes a committer identity so the git binary can
// create commits during rebase.
func configureIdentity(t *testing.T, repo *git.Repository) {
	t.Helper()

	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Test"
	cfg.User.Email = "test@example.com"
	require.NoError(t, repo.SetConfig(cfg))
}

func commit(t *testing.T, repo *git.Repository, dir, name, content, message string) plumbing.Hash {
	t.Helper()

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	_, err = worktree.Add(name)
	require.NoError(t, err)

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return hash
}
