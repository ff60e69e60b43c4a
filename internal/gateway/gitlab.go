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

const defaultGitLabBaseURL = "https://gitlab.com/api/v4"

// gitlabProvider talks to the GitLab v4 REST API. Usernames must be
// resolved to a numeric account id before projects can be listed.
type gitlabProvider struct {
	client        *http.Client
	baseURL       string
	token         string
	logger        *logrus.Logger
	includeMerges bool
}

func newGitLabProvider(opts Options) *gitlabProvider {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultGitLabBaseURL
	}
	return &gitlabProvider{
		client:        opts.httpClient(),
		baseURL:       baseURL,
		token:         opts.Token,
		logger:        opts.logger(),
		includeMerges: opts.IncludeMergeCommits,
	}
}

func (p *gitlabProvider) Platform() Platform {
	return GitLab
}

func (p *gitlabProvider) applyAuth(req *http.Request) {
	if p.token != "" {
		req.Header.Set("PRIVATE-TOKEN", p.token)
	}
}

type gitlabUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type gitlabProject struct {
	Path              string `json:"path"`
	PathWithNamespace string `json:"path_with_namespace"`
	WebURL            string `json:"web_url"`
	Description       string `json:"description"`
	DefaultBranch     string `json:"default_branch"`
	EmptyRepo         bool   `json:"empty_repo"`
}

type gitlabCommit struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
	ParentIDs  []string  `json:"parent_ids"`
}

// resolveUserID looks up the numeric account id for a username. GitLab
// answers the lookup with an array; an empty array means no such user.
func (p *gitlabProvider) resolveUserID(ctx context.Context, identity string) (int, error) {
	endpoint := fmt.Sprintf("%s/users?username=%s", p.baseURL, url.QueryEscape(identity))

	var users []gitlabUser
	if err := getJSON(ctx, p.client, GitLab, identity, endpoint, p.applyAuth, &users); err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, &NotFoundError{Platform: GitLab, Subject: identity}
	}
	return users[0].ID, nil
}

// ListRepositories resolves the identity to an account id, then pages
// through the user's projects. Projects with an empty repository are
// excluded.
func (p *gitlabProvider) ListRepositories(ctx context.Context, identity string) ([]domain.Repository, error) {
	userID, err := p.resolveUserID(ctx, identity)
	if err != nil {
		return nil, err
	}

	var result []domain.Repository
	for page := 1; page <= maxPages; page++ {
		endpoint := fmt.Sprintf("%s/users/%d/projects?per_page=%d&page=%d&order_by=last_activity_at&sort=desc",
			p.baseURL, userID, perPage, page)

		var projects []gitlabProject
		if err := getJSON(ctx, p.client, GitLab, identity, endpoint, p.applyAuth, &projects); err != nil {
			return nil, err
		}
		if len(projects) == 0 {
			break
		}
		for _, proj := range projects {
			if proj.EmptyRepo {
				continue
			}
			// Name carries the URL path segment, not the display name.
			// Project lookups use it to build the API path.
			result = append(result, domain.Repository{
				Name:          proj.Path,
				FullName:      proj.PathWithNamespace,
				URL:           proj.WebURL,
				Description:   proj.Description,
				DefaultBranch: proj.DefaultBranch,
			})
		}
		p.logger.WithFields(logrus.Fields{"page": page, "projects": len(projects)}).Debug("gitlab: fetched project page")
	}
	return result, nil
}

// ListCommits pages through a project's commit history. The project is
// addressed by its URL-encoded "owner/repo" path.
func (p *gitlabProvider) ListCommits(ctx context.Context, identity, repository string) ([]domain.Commit, error) {
	subject := identity + "/" + repository
	projectPath := url.PathEscape(subject)

	var result []domain.Commit
	for page := 1; page <= maxPages; page++ {
		endpoint := fmt.Sprintf("%s/projects/%s/repository/commits?per_page=%d&page=%d",
			p.baseURL, projectPath, perPage, page)

		var commits []gitlabCommit
		if err := getJSON(ctx, p.client, GitLab, subject, endpoint, p.applyAuth, &commits); err != nil {
			return nil, err
		}
		if len(commits) == 0 {
			break
		}
		for _, c := range commits {
			if !p.includeMerges && len(c.ParentIDs) > 1 {
				continue
			}
			result = append(result, domain.Commit{
				ID:        c.ID,
				Message:   c.Message,
				Author:    c.AuthorName,
				Timestamp: c.CreatedAt.UTC(),
			})
		}
		p.logger.WithFields(logrus.Fields{"repository": repository, "page": page, "commits": len(commits)}).Debug("gitlab: fetched commit page")
	}
	return result, nil
}
