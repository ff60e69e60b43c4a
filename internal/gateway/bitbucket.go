package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/0xshariq/timeline/internal/domain"
)

const defaultBitbucketBaseURL = "https://api.bitbucket.org/2.0"

// bitbucketProvider talks to the Bitbucket 2.0 REST API. Pagination is
// cursor-based: each response carries an opaque "next" URL that must be
// followed as-is.
type bitbucketProvider struct {
	client        *http.Client
	baseURL       string
	token         string
	logger        *logrus.Logger
	includeMerges bool
}

func newBitbucketProvider(opts Options) *bitbucketProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBitbucketBaseURL
	}
	return &bitbucketProvider{
		client:        opts.httpClient(),
		baseURL:       baseURL,
		token:         opts.Token,
		logger:        opts.logger(),
		includeMerges: opts.IncludeMergeCommits,
	}
}

func (p *bitbucketProvider) Platform() Platform {
	return Bitbucket
}

func (p *bitbucketProvider) applyAuth(req *http.Request) {
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
}

type bitbucketRepo struct {
	Slug        string `json:"slug"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Size        int64  `json:"size"`
	Links       struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"links"`
	MainBranch struct {
		Name string `json:"name"`
	} `json:"mainbranch"`
}

type bitbucketRepoPage struct {
	Values []bitbucketRepo `json:"values"`
	Next   string          `json:"next"`
}

type bitbucketCommit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Author  struct {
		Raw  string `json:"raw"`
		User struct {
			DisplayName string `json:"display_name"`
		} `json:"user"`
	} `json:"author"`
	Parents []struct {
		Hash string `json:"hash"`
	} `json:"parents"`
}

type bitbucketCommitPage struct {
	Values []bitbucketCommit `json:"values"`
	Next   string            `json:"next"`
}

// ListRepositories pages through the workspace's repositories by following
// each response's next link. Repositories of size 0 are excluded.
func (p *bitbucketProvider) ListRepositories(ctx context.Context, identity string) ([]domain.Repository, error) {
	next := fmt.Sprintf("%s/repositories/%s?pagelen=%d", p.baseURL, url.PathEscape(identity), perPage)

	var result []domain.Repository
	for page := 0; page < maxPages && next != ""; page++ {
		var envelope bitbucketRepoPage
		if err := getJSON(ctx, p.client, Bitbucket, identity, next, p.applyAuth, &envelope); err != nil {
			return nil, err
		}
		if len(envelope.Values) == 0 {
			break
		}
		for _, r := range envelope.Values {
			if r.Size == 0 {
				continue
			}
			result = append(result, domain.Repository{
				// Name carries the slug so commit lookups can build the
				// API path from it.
				Name:          r.Slug,
				FullName:      r.FullName,
				URL:           r.Links.HTML.Href,
				Description:   r.Description,
				DefaultBranch: r.MainBranch.Name,
			})
		}
		p.logger.WithFields(logrus.Fields{"page": page + 1, "repositories": len(envelope.Values)}).Debug("bitbucket: fetched repository page")
		next = envelope.Next
	}
	return result, nil
}

// ListCommits pages through a repository's commit history by following
// next links.
func (p *bitbucketProvider) ListCommits(ctx context.Context, identity, repository string) ([]domain.Commit, error) {
	subject := identity + "/" + repository
	next := fmt.Sprintf("%s/repositories/%s/%s/commits?pagelen=%d",
		p.baseURL, url.PathEscape(identity), url.PathEscape(repository), perPage)

	var result []domain.Commit
	for page := 0; page < maxPages && next != ""; page++ {
		var envelope bitbucketCommitPage
		if err := getJSON(ctx, p.client, Bitbucket, subject, next, p.applyAuth, &envelope); err != nil {
			return nil, err
		}
		if len(envelope.Values) == 0 {
			break
		}
		for _, c := range envelope.Values {
			if !p.includeMerges && len(c.Parents) > 1 {
				continue
			}
			author := c.Author.User.DisplayName
			if author == "" {
				author = c.Author.Raw
			}
			result = append(result, domain.Commit{
				ID:        c.Hash,
				Message:   c.Message,
				Author:    author,
				Timestamp: c.Date.UTC(),
			})
		}
		p.logger.WithFields(logrus.Fields{"repository": repository, "page": page + 1, "commits": len(envelope.Values)}).Debug("bitbucket: fetched commit page")
		next = envelope.Next
	}
	return result, nil
}
