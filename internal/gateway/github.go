package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/0xshariq/timeline/internal/domain"
)

// githubProvider talks to the GitHub REST API through the typed go-github
// client, with a secondary-rate-limit waiter on the transport.
type githubProvider struct {
	client        *github.Client
	logger        *logrus.Logger
	includeMerges bool
}

func newGitHubProvider(opts Options) (*githubProvider, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil)
		if err != nil {
			return nil, fmt.Errorf("create rate limit waiter: %w", err)
		}
		httpClient = &http.Client{Transport: rateLimitWaiter, Timeout: requestTimeout}
		if opts.Token != "" {
			httpClient.Transport = &oauth2.Transport{
				Base:   rateLimitWaiter,
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
			}
		}
	}

	client := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		client.BaseURL = base
	}

	return &githubProvider{
		client:        client,
		logger:        opts.logger(),
		includeMerges: opts.IncludeMergeCommits,
	}, nil
}

func (p *githubProvider) Platform() Platform {
	return GitHub
}

// ListRepositories returns the user's repositories in GitHub's listing
// order, excluding forks and empty (size 0) repositories.
func (p *githubProvider) ListRepositories(ctx context.Context, identity string) ([]domain.Repository, error) {
	opts := &github.RepositoryListByUserOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var result []domain.Repository
	for page := 0; page < maxPages; page++ {
		repos, resp, err := p.client.Repositories.ListByUser(ctx, identity, opts)
		if err != nil {
			return nil, p.classify(identity, err)
		}
		if len(repos) == 0 {
			break
		}
		for _, r := range repos {
			if r.GetFork() || r.GetSize() == 0 {
				continue
			}
			result = append(result, domain.Repository{
				Name:          r.GetName(),
				FullName:      r.GetFullName(),
				URL:           r.GetHTMLURL(),
				Description:   r.GetDescription(),
				DefaultBranch: r.GetDefaultBranch(),
			})
		}
		p.logger.WithFields(logrus.Fields{"page": page + 1, "repositories": len(repos)}).Debug("github: fetched repository page")
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

// ListCommits walks the repository's commit history page by page. A 409
// response is GitHub's signal for an empty repository and yields an empty
// slice, not an error.
func (p *githubProvider) ListCommits(ctx context.Context, identity, repository string) ([]domain.Commit, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var result []domain.Commit
	for page := 0; page < maxPages; page++ {
		commits, resp, err := p.client.Repositories.ListCommits(ctx, identity, repository, opts)
		if err != nil {
			var errResp *github.ErrorResponse
			if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusConflict {
				return nil, nil
			}
			return nil, p.classify(identity+"/"+repository, err)
		}
		if len(commits) == 0 {
			break
		}
		for _, c := range commits {
			if !p.includeMerges && len(c.Parents) > 1 {
				continue
			}
			result = append(result, domain.Commit{
				ID:        c.GetSHA(),
				Message:   c.GetCommit().GetMessage(),
				Author:    c.GetCommit().GetAuthor().GetName(),
				Timestamp: c.GetCommit().GetAuthor().GetDate().Time.UTC(),
			})
		}
		p.logger.WithFields(logrus.Fields{"repository": repository, "page": page + 1, "commits": len(commits)}).Debug("github: fetched commit page")
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

// classify maps go-github's typed errors onto the gateway taxonomy.
func (p *githubProvider) classify(subject string, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &RateLimitError{Platform: GitHub, Remaining: rateErr.Rate.Remaining, ResetTime: rateErr.Rate.Reset.Time}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		rl := &RateLimitError{Platform: GitHub}
		if abuseErr.RetryAfter != nil {
			rl.ResetTime = time.Now().Add(*abuseErr.RetryAfter)
		}
		return rl
	}
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		switch errResp.Response.StatusCode {
		case http.StatusNotFound:
			return &NotFoundError{Platform: GitHub, Subject: subject}
		case http.StatusForbidden, http.StatusTooManyRequests:
			return rateLimitFromHeaders(GitHub, errResp.Response)
		}
		return &ProviderError{Platform: GitHub, StatusCode: errResp.Response.StatusCode, Message: errResp.Message, Err: err}
	}
	return &ProviderError{Platform: GitHub, Message: "request failed", Err: err}
}
