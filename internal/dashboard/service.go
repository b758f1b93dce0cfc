// Package dashboard turns the loaded dataset and a selection into render-ready
// views. Views are memoized per dataset version and selection.
package dashboard

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"loanlens/domain/loan"
	"loanlens/internal"
	"loanlens/internal/aggregate"
	"loanlens/internal/distribution"
	"loanlens/internal/errors"
	"loanlens/ports"
)

// View names used in cache keys
const (
	ViewOverview     = "overview"
	ViewPerformance  = "performance"
	ViewDistribution = "distribution"
)

// DefaultBuildTimeout bounds one shared view build
const DefaultBuildTimeout = 30 * time.Second

// DatasetProvider hands out the current immutable dataset
type DatasetProvider interface {
	Current() (*loan.Dataset, error)
}

// Options tunes what the views contain
type Options struct {
	// OverviewDistribution adds the distribution section to the overview page
	OverviewDistribution bool
	Bins                 int
	// BuildTimeout bounds a view build; zero means DefaultBuildTimeout
	BuildTimeout time.Duration
}

// Service builds dashboard views
type Service struct {
	datasets             DatasetProvider
	cache                ports.ViewCache
	analyzer             *distribution.Analyzer
	group                singleflight.Group
	logger               *internal.Logger
	overviewDistribution bool
	buildTimeout         time.Duration
}

// NewService creates a view service. A nil cache disables memoization.
func NewService(datasets DatasetProvider, cache ports.ViewCache, opts Options, logger *internal.Logger) *Service {
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if opts.BuildTimeout <= 0 {
		opts.BuildTimeout = DefaultBuildTimeout
	}
	return &Service{
		datasets:             datasets,
		cache:                cache,
		analyzer:             distribution.NewAnalyzer(opts.Bins),
		logger:               logger,
		overviewDistribution: opts.OverviewDistribution,
		buildTimeout:         opts.BuildTimeout,
	}
}

// OverviewDistribution reports whether the overview page shows the distribution section
func (s *Service) OverviewDistribution() bool {
	return s.overviewDistribution
}

// DatasetInfo describes the dataset currently served
func (s *Service) DatasetInfo(ctx context.Context) (loan.Info, error) {
	ds, err := s.datasets.Current()
	if err != nil {
		return loan.Info{}, err
	}
	return ds.Info(), nil
}

// Overview builds the overview page view
func (s *Service) Overview(ctx context.Context) (*OverviewView, error) {
	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	return memo(ctx, s, cacheKey(ds, ViewOverview, ""), func(ctx context.Context) (*OverviewView, error) {
		return s.buildOverview(ctx, ds)
	})
}

// Performance builds the performance page view for one condition
func (s *Service) Performance(ctx context.Context, condition loan.Condition) (*PerformanceView, error) {
	if !condition.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown loan condition %q", condition))
	}
	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	return memo(ctx, s, cacheKey(ds, ViewPerformance, string(condition)), func(ctx context.Context) (*PerformanceView, error) {
		return s.buildPerformance(ctx, ds, condition)
	})
}

// Distribution builds only the distribution section for one condition
func (s *Service) Distribution(ctx context.Context, condition loan.Condition) (*DistributionView, error) {
	if !condition.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown loan condition %q", condition))
	}
	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	return memo(ctx, s, cacheKey(ds, ViewDistribution, string(condition)), func(ctx context.Context) (*DistributionView, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		view := s.distribution(ds.Records(), condition)
		return &view, nil
	})
}

// Invalidate drops every memoized view
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Purge(ctx); err != nil {
		s.logger.Warn("[Dashboard] failed to purge view cache: %v", err)
		return
	}
	s.logger.Debug("[Dashboard] view cache purged")
}

func (s *Service) buildOverview(ctx context.Context, ds *loan.Dataset) (*OverviewView, error) {
	records := ds.Records()
	view := &OverviewView{Dataset: ds.Info()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.Summary = aggregate.Summarize(records)
		return gctx.Err()
	})
	g.Go(func() error {
		view.LoansIssued = aggregate.CountByDate(records)
		return gctx.Err()
	})
	g.Go(func() error {
		view.LoanAmount = aggregate.SumByDate(records)
		return gctx.Err()
	})
	g.Go(func() error {
		view.Weekdays = aggregate.WeekdayCounts(records)
		return gctx.Err()
	})
	g.Go(func() error {
		view.Conditions = aggregate.ConditionCounts(records)
		view.Grades = aggregate.GradeCounts(records)
		return gctx.Err()
	})
	if s.overviewDistribution {
		g.Go(func() error {
			d := s.distribution(records, DefaultCondition)
			view.Distribution = &d
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to build overview")
	}
	return view, nil
}

func (s *Service) buildPerformance(ctx context.Context, ds *loan.Dataset, condition loan.Condition) (*PerformanceView, error) {
	records := ds.Records()
	view := &PerformanceView{
		Dataset: ds.Info(),
		Options: append([]loan.Condition(nil), loan.Conditions...),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.Conditions = aggregate.ConditionCounts(records)
		return gctx.Err()
	})
	g.Go(func() error {
		view.Grades = aggregate.GradeCounts(records)
		return gctx.Err()
	})
	g.Go(func() error {
		view.Distribution = s.distribution(records, condition)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to build performance view")
	}
	return view, nil
}

func (s *Service) distribution(records []loan.Record, condition loan.Condition) DistributionView {
	subset := aggregate.FilterByCondition(records, condition)
	return DistributionView{
		Condition: condition,
		Records:   len(subset),
		Histogram: s.analyzer.Histogram(subset),
		BoxPlots:  s.analyzer.BoxPlots(subset),
	}
}

func cacheKey(ds *loan.Dataset, view, selection string) string {
	return fmt.Sprintf("view:%s:%s:%s", ds.Version(), view, selection)
}

// memo serves key from the cache or builds it once, however many callers ask
// concurrently. The shared build runs detached from every caller's
// cancellation, bounded by the build timeout; each caller stops waiting when
// its own context ends. Cache failures are logged and never fail the request.
func memo[T any](ctx context.Context, s *Service, key string, build func(context.Context) (*T, error)) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
		s.logger.Warn("[Dashboard] discarding undecodable cache entry %s", key)
	case !stderrors.Is(err, ports.ErrCacheMiss):
		s.logger.Warn("[Dashboard] view cache read failed for %s: %v", key, err)
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.buildTimeout)
		defer cancel()

		view, err := build(bctx)
		if err != nil {
			return nil, err
		}
		if encoded, err := json.Marshal(view); err != nil {
			s.logger.Warn("[Dashboard] failed to encode %s: %v", key, err)
		} else if err := s.cache.Set(bctx, key, encoded); err != nil {
			s.logger.Warn("[Dashboard] view cache write failed for %s: %v", key, err)
		}
		return view, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*T), nil
	}
}
