/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubhost

import (
	"context"
	"fmt"
	"net/http"

	"chainguard.dev/forksync/repourl"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/oauth2"
)

// Client wraps a go-github client with the two operations the sync workflow
// needs.
type Client struct {
	gh *github.Client
}

type options struct {
	tokenSource oauth2.TokenSource
	baseURL     string
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*options)

// WithTokenSource authenticates API calls with the given OAuth2 token
// source.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) {
		o.tokenSource = ts
	}
}

// WithBaseURL points the client at a GitHub Enterprise or proxy host
// instead of github.com.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithHTTPClient overrides the underlying HTTP client. Takes precedence
// over WithTokenSource.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// New constructs a Client. Without a token source or HTTP client the
// resulting client is anonymous.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if hc == nil && o.tokenSource != nil {
		hc = oauth2.NewClient(ctx, o.tokenSource)
	}

	gh := github.NewClient(hc)
	if o.baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(o.baseURL, o.baseURL)
		if err != nil {
			return nil, fmt.Errorf("setting base URL: %w", err)
		}
	}

	return &Client{gh: gh}, nil
}

// IsFork reports whether the identified repository is registered as a fork.
// Any API failure propagates as an error; an ambiguous answer is never
// treated as "is a fork".
func (c *Client) IsFork(ctx context.Context, id repourl.Identity) (bool, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, id.Owner, id.Name)
	if err != nil {
		return false, fmt.Errorf("getting repository %s: %w", id, err)
	}
	return repo.GetFork(), nil
}

// SyncFork asks GitHub to sync the named branch of the fork with its
// upstream repository.
func (c *Client) SyncFork(ctx context.Context, id repourl.Identity, branch string) error {
	result, _, err := c.gh.Repositories.MergeUpstream(ctx, id.Owner, id.Name, &github.RepoMergeUpstreamRequest{
		Branch: github.Ptr(branch),
	})
	if err != nil {
		return fmt.Errorf("syncing fork %s with upstream: %w", id, err)
	}

	clog.FromContext(ctx).Infof("Synced %s branch %s with upstream (%s)", id, branch, result.GetMergeType())
	return nil
}
