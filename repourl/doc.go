/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package repourl parses git remote URLs into hosted repository identities.
//
// Remotes come in several shapes depending on how a clone was created:
//
//   - "https://github.com/owner/repo.git"
//   - "ssh://git@github.com/owner/repo.git"
//   - "git@github.com:owner/repo.git"
//   - "https://goproxy.internal/git/owner/repo" (internal git proxy)
//
// Parsing is pure and deterministic: no network access, no filesystem
// access. A URL that does not unambiguously resolve to an owner/repo pair
// yields no identity at all, never a partially populated one.
package repourl
