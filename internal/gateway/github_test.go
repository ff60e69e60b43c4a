package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xshariq/timeline/internal/domain"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// setupGitHubProvider creates a githubProvider that communicates with a
// mock HTTP server.
func setupGitHubProvider(t *testing.T, handler http.Handler, includeMerges bool) (*githubProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return &githubProvider{client: client, logger: discardLogger(), includeMerges: includeMerges}, server
}

func TestGitHubProvider_ListRepositories(t *testing.T) {
	testCases := []struct {
		name        string
		handlerFunc func(w http.ResponseWriter, r *http.Request)
		expected    []domain.Repository
		expectErr   func(t *testing.T, err error)
	}{
		{
			name: "filters forks and empty repositories",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				assert.Contains(t, r.URL.Path, "/users/any-user/repos")
				fmt.Fprint(w, `[
					{"name":"keep","full_name":"any-user/keep","html_url":"https://github.com/any-user/keep","description":"a repo","default_branch":"main","size":12,"fork":false},
					{"name":"forked","full_name":"any-user/forked","size":40,"fork":true},
					{"name":"hollow","full_name":"any-user/hollow","size":0,"fork":false}
				]`)
			},
			expected: []domain.Repository{{
				Name: "keep", FullName: "any-user/keep", URL: "https://github.com/any-user/keep",
				Description: "a repo", DefaultBranch: "main",
			}},
		},
		{
			name: "unknown identity maps to NotFound",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"message": "Not Found"}`)
			},
			expectErr: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
				assert.Contains(t, err.Error(), "any-user")
			},
		},
		{
			name: "exhausted quota maps to RateLimited with reset detail",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-RateLimit-Limit", "60")
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
			},
			expectErr: func(t *testing.T, err error) {
				assert.True(t, IsRateLimited(err))
				assert.Contains(t, err.Error(), "rate limit")
				assert.Contains(t, err.Error(), "resets at")
			},
		},
		{
			name: "server error maps to ProviderError",
			handlerFunc: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message": "Internal Server Error"}`)
			},
			expectErr: func(t *testing.T, err error) {
				assert.False(t, IsNotFound(err))
				assert.False(t, IsRateLimited(err))
				var provErr *ProviderError
				assert.ErrorAs(t, err, &provErr)
				assert.Equal(t, http.StatusInternalServerError, provErr.StatusCode)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			provider, _ := setupGitHubProvider(t, http.HandlerFunc(tc.handlerFunc), false)

			repos, err := provider.ListRepositories(context.Background(), "any-user")

			if tc.expectErr != nil {
				require.Error(t, err)
				tc.expectErr(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, repos)
		})
	}
}

func TestGitHubProvider_ListCommits_EmptyRepository(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		// GitHub answers 409 for a repository with no commits.
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message": "Git Repository is empty."}`)
	}
	provider, _ := setupGitHubProvider(t, http.HandlerFunc(handler), false)

	commits, err := provider.ListCommits(context.Background(), "any-user", "empty-repo")

	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestGitHubProvider_ListCommits_MergeFilter(t *testing.T) {
	body := `[
		{"sha":"aaa","commit":{"message":"plain","author":{"name":"dev","date":"2024-01-01T10:00:00Z"}},"parents":[{"sha":"p1"}]},
		{"sha":"bbb","commit":{"message":"merge","author":{"name":"dev","date":"2024-01-01T11:00:00Z"}},"parents":[{"sha":"p1"},{"sha":"p2"}]}
	]`
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}

	t.Run("merge commits dropped by default", func(t *testing.T) {
		provider, _ := setupGitHubProvider(t, http.HandlerFunc(handler), false)
		commits, err := provider.ListCommits(context.Background(), "any-user", "repo")
		require.NoError(t, err)
		require.Len(t, commits, 1)
		assert.Equal(t, "aaa", commits[0].ID)
	})

	t.Run("merge commits kept when requested", func(t *testing.T) {
		provider, _ := setupGitHubProvider(t, http.HandlerFunc(handler), true)
		commits, err := provider.ListCommits(context.Background(), "any-user", "repo")
		require.NoError(t, err)
		assert.Len(t, commits, 2)
	})
}

// TestGitHubProvider_ListCommits_PageCap asserts the page walk stops at the
// cap even when the server keeps advertising further pages.
func TestGitHubProvider_ListCommits_PageCap(t *testing.T) {
	requests := 0
	var serverURL string
	handler := func(w http.ResponseWriter, r *http.Request) {
		requests++
		page := r.URL.Query().Get("page")
		if page == "" {
			page = "1"
		}
		next, _ := strconv.Atoi(page)
		w.Header().Set("Link", fmt.Sprintf(`<%s%s?page=%d>; rel="next"`, serverURL, r.URL.Path, next+1))
		fmt.Fprintf(w, `[{"sha":"sha-%s","commit":{"message":"m","author":{"name":"dev","date":"2024-01-01T10:00:00Z"}},"parents":[{"sha":"p"}]}]`, page)
	}
	provider, server := setupGitHubProvider(t, http.HandlerFunc(handler), false)
	serverURL = server.URL

	commits, err := provider.ListCommits(context.Background(), "any-user", "endless")

	require.NoError(t, err)
	assert.Equal(t, 10, requests)
	assert.Len(t, commits, 10)
}
