// Package gateway adapts the hosting platforms' REST APIs to a uniform
// repository/commit listing contract.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/0xshariq/timeline/internal/domain"
)

// Platform selects which provider implementation handles a run.
type Platform string

const (
	GitHub    Platform = "github"
	GitLab    Platform = "gitlab"
	Bitbucket Platform = "bitbucket"
	SourceHut Platform = "sourcehut"
)

// ParsePlatform validates a platform name from user input.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case GitHub, GitLab, Bitbucket, SourceHut:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q (expected github, gitlab, bitbucket or sourcehut)", s)
}

const (
	perPage = 100

	// maxPages bounds the page walk for any single listing. Partial history
	// past the cap is acceptable; unbounded request volume is not.
	maxPages = 10

	requestTimeout = 30 * time.Second
)

// Provider lists a user's repositories and per-repository commit history on
// one hosting platform. Implementations classify failures into the typed
// errors in this package; an empty repository yields an empty commit slice,
// not an error.
type Provider interface {
	Platform() Platform
	ListRepositories(ctx context.Context, identity string) ([]domain.Repository, error)
	ListCommits(ctx context.Context, identity, repository string) ([]domain.Commit, error)
}

// Options configures a provider. The zero value is usable: anonymous access
// against the platform's public endpoint.
type Options struct {
	// Token is the platform credential. Empty means anonymous access,
	// subject to stricter rate limits.
	Token string

	// BaseURL overrides the platform API root, mainly for tests.
	BaseURL string

	// HTTPClient overrides the provider's HTTP client.
	HTTPClient *http.Client

	// IncludeMergeCommits keeps commits with more than one parent. Ignored
	// on platforms that expose no parent metadata.
	IncludeMergeCommits bool

	Logger *logrus.Logger
}

func (o Options) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: requestTimeout}
}

// New constructs the provider for a platform.
func New(platform Platform, opts Options) (Provider, error) {
	switch platform {
	case GitHub:
		return newGitHubProvider(opts)
	case GitLab:
		return newGitLabProvider(opts), nil
	case Bitbucket:
		return newBitbucketProvider(opts), nil
	case SourceHut:
		return newSourceHutProvider(opts), nil
	}
	return nil, fmt.Errorf("unknown platform %q", platform)
}
