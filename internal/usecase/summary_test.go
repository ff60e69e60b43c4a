package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xshariq/timeline/internal/domain"
)

func seriesWith(repo string, labels []string, counts []int) domain.DailySeries {
	return domain.DailySeries{Repository: repo, Labels: labels, Counts: counts}
}

func TestSummarize(t *testing.T) {
	result := &domain.IngestionResult{
		Series: []domain.DailySeries{
			seriesWith("small", []string{"2024-01-01", "2024-01-03"}, []int{4, 6}),
			seriesWith("big", []string{"2024-01-02", "2024-01-11"}, []int{20, 10}),
		},
		TotalCommits: 40,
	}

	summary := Summarize(result)

	assert.Equal(t, 40, summary.TotalCommits)
	assert.Equal(t, 2, summary.RepositoryCount)
	require.Len(t, summary.TopRepositories, 2)
	assert.Equal(t, "big", summary.TopRepositories[0].Repository)
	assert.Equal(t, 30, summary.TopRepositories[0].Commits)
	assert.Equal(t, "small", summary.TopRepositories[1].Repository)
	assert.Equal(t, 20, summary.AvgPerRepository)
	require.NotNil(t, summary.DateRange)
	assert.Equal(t, "2024-01-01", summary.DateRange.Start)
	assert.Equal(t, "2024-01-11", summary.DateRange.End)
	assert.Equal(t, 10, summary.DateRange.Days)
	assert.InDelta(t, 4.0, summary.AvgPerDay, 0.001)
}

// TestSummarize_StableRanking asserts equal totals keep their original
// input order in the top-repository ranking.
func TestSummarize_StableRanking(t *testing.T) {
	result := &domain.IngestionResult{
		Series: []domain.DailySeries{
			seriesWith("first", []string{"2024-01-01"}, []int{5}),
			seriesWith("second", []string{"2024-01-01"}, []int{5}),
			seriesWith("third", []string{"2024-01-01"}, []int{9}),
			seriesWith("fourth", []string{"2024-01-01"}, []int{5}),
		},
	}

	summary := Summarize(result)

	names := make([]string, len(summary.TopRepositories))
	for i, r := range summary.TopRepositories {
		names[i] = r.Repository
	}
	assert.Equal(t, []string{"third", "first", "second", "fourth"}, names)
}

func TestSummarize_TruncatesToTopFive(t *testing.T) {
	result := &domain.IngestionResult{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		result.Series = append(result.Series, seriesWith(name, []string{"2024-01-01"}, []int{1}))
	}

	summary := Summarize(result)

	assert.Len(t, summary.TopRepositories, 5)
	assert.Equal(t, 7, summary.RepositoryCount)
}

func TestSummarize_SingleDaySpan(t *testing.T) {
	result := &domain.IngestionResult{
		Series: []domain.DailySeries{
			seriesWith("solo", []string{"2024-04-04"}, []int{3}),
		},
	}

	summary := Summarize(result)

	require.NotNil(t, summary.DateRange)
	assert.Equal(t, 0, summary.DateRange.Days)
	// A zero-day span means no per-day average, not a division by zero.
	assert.Zero(t, summary.AvgPerDay)
}

func TestSummarize_Rounding(t *testing.T) {
	result := &domain.IngestionResult{
		Series: []domain.DailySeries{
			seriesWith("a", []string{"2024-01-01", "2024-01-04"}, []int{1, 1}),
			seriesWith("b", []string{"2024-01-02"}, []int{3}),
			seriesWith("c", []string{"2024-01-03"}, []int{3}),
		},
	}

	summary := Summarize(result)

	// 8 commits over 3 repositories rounds to 3 per repository.
	assert.Equal(t, 3, summary.AvgPerRepository)
	// 8 commits over a 3-day span rounds to 2.67 per day.
	assert.InDelta(t, 2.67, summary.AvgPerDay, 0.001)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(&domain.IngestionResult{})

	assert.Zero(t, summary.TotalCommits)
	assert.Zero(t, summary.RepositoryCount)
	assert.Nil(t, summary.DateRange)
	assert.Empty(t, summary.TopRepositories)
	assert.Zero(t, summary.AvgPerRepository)
	assert.Zero(t, summary.AvgPerDay)
}
