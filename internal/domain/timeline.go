// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Repository describes one repository discovered on a hosting platform.
// Instances are created by a gateway provider and are read-only afterwards.
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	URL           string `json:"url"`
	Description   string `json:"description,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
}

// Commit is a single commit as reported by a platform API.
type Commit struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// DailySeries is one repository's commit activity bucketed per UTC calendar
// day. Labels are "2006-01-02" dates in strictly ascending order; Counts has
// the same length and every entry is at least 1; days without commits are
// omitted rather than zero-filled.
type DailySeries struct {
	Repository string   `json:"repository"`
	Labels     []string `json:"labels"`
	Counts     []int    `json:"counts"`
}

// Total returns the number of commits in the series.
func (s DailySeries) Total() int {
	total := 0
	for _, c := range s.Counts {
		total += c
	}
	return total
}

// SkipRecord explains why a repository contributed no data to the result.
type SkipRecord struct {
	Repository string `json:"repository"`
	Reason     string `json:"reason"`
}

// IngestionResult is the output of one complete sweep. Series excludes
// repositories that yielded no usable commits; those appear in Skipped
// with a reason instead.
type IngestionResult struct {
	Series       []DailySeries `json:"series"`
	TotalCommits int           `json:"total_commits_analyzed"`
	Skipped      []SkipRecord  `json:"skipped_repositories,omitempty"`
	Processed    int           `json:"processed_count"`
}

// DateRange is the global label span across all series in a result.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// RepositoryTotal pairs a repository with its commit total, for rankings.
type RepositoryTotal struct {
	Repository string `json:"repository"`
	Commits    int    `json:"commits"`
}

// Summary is a derived, read-only view over an IngestionResult. It is
// recomputed on demand and never persisted.
type Summary struct {
	TotalCommits     int               `json:"total_commits"`
	RepositoryCount  int               `json:"repository_count"`
	DateRange        *DateRange        `json:"date_range,omitempty"`
	TopRepositories  []RepositoryTotal `json:"top_repositories"`
	AvgPerRepository int               `json:"avg_commits_per_repository"`
	AvgPerDay        float64           `json:"avg_commits_per_day"`
}
