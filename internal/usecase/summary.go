package usecase

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/0xshariq/timeline/internal/domain"
)

const topRepositoryCount = 5

// Summarize computes the derived statistics view over an ingestion result:
// totals, top repositories, date span and per-repository/per-day averages.
func Summarize(result *domain.IngestionResult) domain.Summary {
	summary := domain.Summary{
		RepositoryCount: len(result.Series),
		TopRepositories: []domain.RepositoryTotal{},
	}
	if len(result.Series) == 0 {
		return summary
	}

	totals := make([]domain.RepositoryTotal, len(result.Series))
	perRepo := make([]float64, len(result.Series))
	for i, s := range result.Series {
		totals[i] = domain.RepositoryTotal{Repository: s.Repository, Commits: s.Total()}
		perRepo[i] = float64(totals[i].Commits)
	}

	total, _ := stats.Sum(perRepo)
	summary.TotalCommits = int(total)

	// Stable sort keeps input order for equal totals.
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Commits > totals[j].Commits
	})
	if len(totals) > topRepositoryCount {
		totals = totals[:topRepositoryCount]
	}
	summary.TopRepositories = totals

	labels := UnionLabels(result.Series)
	start, end := labels[0], labels[len(labels)-1]
	days := daysBetween(start, end)
	summary.DateRange = &domain.DateRange{Start: start, End: end, Days: days}

	mean, _ := stats.Mean(perRepo)
	avgRepo, _ := stats.Round(mean, 0)
	summary.AvgPerRepository = int(avgRepo)

	if days > 0 {
		avgDay, _ := stats.Round(total/float64(days), 2)
		summary.AvgPerDay = avgDay
	}

	return summary
}

func daysBetween(start, end string) int {
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return 0
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
