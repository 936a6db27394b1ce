/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package forksyncer keeps a local clone of a GitHub fork up to date with
// its upstream. A Syncer runs a fixed sequence of guarded steps against a
// working directory: discover the origin remote, parse the repository
// identity from its URL, confirm the repository is a fork, sync the fork's
// default branch with upstream, fetch it locally, and rebase the currently
// checked-out branch onto it.
//
// The workflow is advisory automation: every step that can fail
// short-circuits into a descriptive Outcome instead of an error, uncommitted
// work is never touched, and a failed rebase is immediately aborted so the
// repository is never left mid-rebase. Run never fails the calling process.
package forksyncer
