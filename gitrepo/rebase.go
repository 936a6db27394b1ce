/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/chainguard-dev/clog"
)

// RebaseOnto reapplies the current branch onto ref. go-git has no rebase
// support, so this shells out to the git binary with the repository's
// working tree as the command directory. On failure (conflicts included)
// the returned error carries git's combined output, and the repository is
// left mid-rebase until AbortRebase is called.
func (r *Repo) RebaseOnto(ctx context.Context, ref string) error {
	clog.FromContext(ctx).Infof("Rebasing onto %s", ref)
	return r.git(ctx, "rebase", ref)
}

// AbortRebase abandons an in-progress rebase, restoring the branch to its
// pre-rebase tip.
func (r *Repo) AbortRebase(ctx context.Context) error {
	clog.FromContext(ctx).Infof("Aborting in-progress rebase")
	return r.git(ctx, "rebase", "--abort")
}

func (r *Repo) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root

	out := &bytes.Buffer{}
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(out.String()))
	}
	return nil
}
