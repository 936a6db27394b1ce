/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package repourl

import (
	"net/url"
	"strings"
)

// Identity identifies a hosted repository by its owner and name.
type Identity struct {
	// Owner is the user or organization that owns the repository.
	Owner string

	// Name is the repository name, without any ".git" suffix.
	Name string
}

// String returns the identity in its canonical "owner/name" form.
func (id Identity) String() string {
	return id.Owner + "/" + id.Name
}

// Parse extracts an Identity from a git remote URL. It accepts
// scheme-qualified HTTP(S) and SSH URLs, scp-like "user@host:path" remotes,
// and the internal proxy form whose path ends in "git/{owner}/{repo}".
// The ".git" suffix and trailing slashes are stripped. The second return
// value reports whether the remote resolved to an identity.
func Parse(remote string) (Identity, bool) {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return Identity{}, false
	}

	path, ok := remotePath(remote)
	if !ok {
		return Identity{}, false
	}

	segs := strings.Split(strings.Trim(path, "/"), "/")
	last := len(segs) - 1
	segs[last] = strings.TrimSuffix(segs[last], ".git")

	var owner, name string
	switch {
	case len(segs) == 2:
		owner, name = segs[0], segs[1]
	case len(segs) >= 3 && segs[len(segs)-3] == "git":
		// Proxy form: the final "git/{owner}/{repo}" segments win,
		// whatever prefix the proxy mounts them under.
		owner, name = segs[len(segs)-2], segs[last]
	default:
		return Identity{}, false
	}

	if owner == "" || name == "" {
		return Identity{}, false
	}

	return Identity{Owner: owner, Name: name}, true
}

// remotePath returns the path portion of a remote URL, handling both
// scheme-qualified URLs and scp-like "user@host:path" remotes.
func remotePath(remote string) (string, bool) {
	if strings.Contains(remote, "://") {
		u, err := url.Parse(remote)
		if err != nil {
			return "", false
		}
		return u.Path, true
	}

	// scp-like syntax: "git@host:owner/repo.git". The "@" must precede the
	// ":" or we are looking at something else entirely.
	at := strings.Index(remote, "@")
	colon := strings.Index(remote, ":")
	if at < 0 || colon < at {
		return "", false
	}

	return remote[colon+1:], true
}
