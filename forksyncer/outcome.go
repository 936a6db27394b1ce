/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package forksyncer

import "fmt"

// Status classifies the terminal result of a sync run.
type Status string

const (
	// StatusSkipped means a precondition for syncing was not met and
	// nothing was mutated.
	StatusSkipped Status = "skipped"

	// StatusCompleted means the fork was synced and the current branch was
	// rebased onto the refreshed default branch.
	StatusCompleted Status = "completed"

	// StatusCompletedWithoutRebase means the fork was synced but the rebase
	// step did not (or could not) run.
	StatusCompletedWithoutRebase Status = "completed-without-rebase"
)

// Reason strings carried by Outcomes. Each terminal outcome has exactly one,
// so operators can grep automated runs for a specific exit path.
const (
	ReasonNotARepository    = "not a repository"
	ReasonNoOriginRemote    = "no origin remote"
	ReasonUnparsableRemote  = "could not parse repository identity"
	ReasonForkStatusUnknown = "could not determine fork status"
	ReasonNotAFork          = "not a fork"
	ReasonForkSyncFailed    = "fork sync failed"
	ReasonFetchFailed       = "fetch failed"
	ReasonOnDefaultBranch   = "already on default branch"
	ReasonDirtyWorktree     = "uncommitted changes present"
	ReasonUnknownCleanState = "could not verify working tree"
	ReasonRebaseAborted     = "rebase failed, aborted"
)

// Outcome describes what a sync run did. It is the only result Run returns;
// failures never propagate as errors.
type Outcome struct {
	Status Status
	Reason string
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return string(o.Status)
	}
	return fmt.Sprintf("%s (%s)", o.Status, o.Reason)
}

func skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

func completed() Outcome {
	return Outcome{Status: StatusCompleted}
}

func withoutRebase(reason string) Outcome {
	return Outcome{Status: StatusCompletedWithoutRebase, Reason: reason}
}
