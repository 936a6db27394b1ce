/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package githubhost answers hosting-service questions for the fork sync
// workflow through the GitHub REST API: whether a repository is a fork, and
// syncing a fork's branch with its upstream ("merge upstream").
//
// The client works anonymously for fork checks on public repositories; a
// token source is required for fork sync and for anything private. An
// alternate base URL supports GitHub Enterprise and internal proxy hosts.
package githubhost
