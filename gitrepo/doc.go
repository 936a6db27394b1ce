/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package gitrepo is the local version-control backend for the fork sync
// workflow. It wraps a go-git repository handle for inspection and fetching
// (remote URLs, current branch, working tree cleanliness), and shells out to
// the git binary for the rebase operations go-git does not implement.
//
// A Repo is opened against a working directory with Open, which detects the
// enclosing repository the same way the git CLI does (walking up to find a
// .git directory). All mutations are scoped to that repository.
package gitrepo
