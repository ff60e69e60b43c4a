// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/0xshariq/timeline/internal/domain"
	"github.com/0xshariq/timeline/internal/gateway"
)

const skipReasonEmpty = "no commits found"

// NoDataError is the run-level failure raised when every repository was
// empty or failed. Its message separates the two cases using the recorded
// skip reasons.
type NoDataError struct {
	Skipped  []domain.SkipRecord
	Failures int
}

func (e *NoDataError) Error() string {
	var b strings.Builder
	switch {
	case e.Failures == 0:
		fmt.Fprintf(&b, "no data: all %d repositories were empty", len(e.Skipped))
	case e.Failures == len(e.Skipped):
		fmt.Fprintf(&b, "no data: all %d repositories failed", len(e.Skipped))
	default:
		fmt.Fprintf(&b, "no data: %d of %d repositories failed, the rest had no commits", e.Failures, len(e.Skipped))
	}
	for _, s := range e.Skipped {
		fmt.Fprintf(&b, "\n  %s: %s", s.Repository, s.Reason)
	}
	return b.String()
}

// Ingestor drives one sweep: repository discovery, per-repository commit
// fetching with failure isolation, and series aggregation.
//
// Lifecycle per run: discovery (skipped when an explicit repository list is
// given), then one commit fetch per repository in input order, then
// aggregation.
// A repository failure becomes a skip record and never aborts siblings;
// only a discovery failure or a fully empty outcome fails the run.
type Ingestor struct {
	provider    gateway.Provider
	logger      *logrus.Logger
	reporter    Reporter
	concurrency int
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithReporter wires a progress observer into the sweep.
func WithReporter(r Reporter) IngestorOption {
	return func(ing *Ingestor) {
		if r != nil {
			ing.reporter = r
		}
	}
}

// WithConcurrency bounds how many repositories are fetched at once.
// Values below 1 are treated as 1, the sequential default.
func WithConcurrency(n int) IngestorOption {
	return func(ing *Ingestor) {
		ing.concurrency = n
	}
}

// NewIngestor creates a new Ingestor instance.
func NewIngestor(provider gateway.Provider, logger *logrus.Logger, opts ...IngestorOption) *Ingestor {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	ing := &Ingestor{
		provider:    provider,
		logger:      logger,
		reporter:    NopReporter(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(ing)
	}
	if ing.concurrency < 1 {
		ing.concurrency = 1
	}
	return ing
}

// outcome holds the result of one repository's fetch, keyed by its input
// position so the final series order is deterministic at any concurrency.
type outcome struct {
	series  *domain.DailySeries
	commits int
	skip    *domain.SkipRecord
}

// Run executes one sweep for an identity. When repositories is non-empty,
// discovery is skipped and the given names are processed in that order;
// otherwise the provider's repository listing supplies the order.
func (ing *Ingestor) Run(ctx context.Context, identity string, repositories []string) (*domain.IngestionResult, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity must not be empty")
	}
	platform := ing.provider.Platform()

	names := repositories
	if len(names) == 0 {
		ing.reporter.ResolvingRepositories(string(platform), identity)
		ing.logger.WithFields(logrus.Fields{
			"platform": platform,
			"identity": identity,
		}).Debug("resolving repositories")

		repos, err := ing.provider.ListRepositories(ctx, identity)
		if err != nil {
			return nil, fmt.Errorf("resolving repositories for %s on %s: %w", identity, platform, err)
		}
		if len(repos) == 0 {
			return nil, fmt.Errorf("no repositories found for %s on %s", identity, platform)
		}
		names = make([]string, len(repos))
		for i, r := range repos {
			names[i] = r.Name
		}
	}

	outcomes := make([]outcome, len(names))

	var mu sync.Mutex // serializes reporter events under concurrency
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(ing.concurrency)

	for i, name := range names {
		eg.Go(func() error {
			// Honor cancellation between repositories; in-flight fetches
			// finish on their own.
			if err := egCtx.Err(); err != nil {
				return err
			}

			mu.Lock()
			ing.reporter.ProcessingRepository(i+1, len(names), name)
			mu.Unlock()

			commits, err := ing.provider.ListCommits(egCtx, identity, name)
			switch {
			case err != nil:
				ing.logger.WithError(err).WithField("repository", name).Warn("repository skipped")
				outcomes[i].skip = &domain.SkipRecord{Repository: name, Reason: err.Error()}
				mu.Lock()
				ing.reporter.RepositorySkipped(name, err.Error())
				mu.Unlock()
			case len(commits) == 0:
				outcomes[i].skip = &domain.SkipRecord{Repository: name, Reason: skipReasonEmpty}
				mu.Lock()
				ing.reporter.RepositorySkipped(name, skipReasonEmpty)
				mu.Unlock()
			default:
				series := BucketCommits(name, commits)
				outcomes[i].series = &series
				outcomes[i].commits = len(commits)
				mu.Lock()
				ing.reporter.RepositoryDone(name, len(commits))
				mu.Unlock()
			}
			return nil
		})
	}

	// Goroutines only ever return the context error, so a failing
	// repository cannot cancel its siblings.
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &domain.IngestionResult{Processed: len(names)}
	failures := 0
	for _, o := range outcomes {
		if o.skip != nil {
			if o.skip.Reason != skipReasonEmpty {
				failures++
			}
			result.Skipped = append(result.Skipped, *o.skip)
			continue
		}
		result.Series = append(result.Series, *o.series)
		result.TotalCommits += o.commits
	}

	if len(result.Series) == 0 {
		return nil, &NoDataError{Skipped: result.Skipped, Failures: failures}
	}

	ing.logger.WithFields(logrus.Fields{
		"repositories": len(result.Series),
		"commits":      result.TotalCommits,
		"skipped":      len(result.Skipped),
	}).Debug("sweep complete")
	return result, nil
}
