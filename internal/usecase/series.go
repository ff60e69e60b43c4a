package usecase

import (
	"sort"

	"github.com/0xshariq/timeline/internal/domain"
)

const dateLayout = "2006-01-02"

// BucketCommits groups a repository's commits by UTC calendar day and
// returns the per-day series with labels in ascending date order. Two
// commits on the same UTC day always share a bucket regardless of
// time-of-day.
func BucketCommits(repository string, commits []domain.Commit) domain.DailySeries {
	byDay := make(map[string]int, len(commits))
	for _, c := range commits {
		byDay[c.Timestamp.UTC().Format(dateLayout)]++
	}

	labels := make([]string, 0, len(byDay))
	for day := range byDay {
		labels = append(labels, day)
	}
	// ISO dates sort lexicographically in chronological order.
	sort.Strings(labels)

	counts := make([]int, len(labels))
	for i, day := range labels {
		counts[i] = byDay[day]
	}

	return domain.DailySeries{Repository: repository, Labels: labels, Counts: counts}
}

// UnionLabels returns the sorted, deduplicated union of every series'
// labels, used to align all series on one time axis. It is recomputed on
// demand, never cached.
func UnionLabels(series []domain.DailySeries) []string {
	seen := make(map[string]struct{})
	for _, s := range series {
		for _, label := range s.Labels {
			seen[label] = struct{}{}
		}
	}

	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
