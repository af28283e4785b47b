package content

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds parallel bundle reads.
const DefaultFetchConcurrency = 4

// Fetcher builds a content pool for a subject and grade from a Source.
type Fetcher struct {
	source Source
	logger *zap.Logger
	limit  int
}

// NewFetcher creates a Fetcher. A nil logger discards output.
func NewFetcher(source Source, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{source: source, logger: logger, limit: DefaultFetchConcurrency}
}

// FetchPool reads every bundle for (subject, grade) concurrently and
// concatenates the results in bundle order. When the bundles yield
// nothing, it falls back to the direct subject+grade query. Failures are
// logged and count as zero candidates, so the result may be empty.
func (f *Fetcher) FetchPool(ctx context.Context, subject string, grade int) []Item {
	log := f.logger.With(zap.String("subject", subject), zap.Int("grade", grade))

	var pool []Item
	bundles, err := f.source.ListBundles(ctx, subject, grade)
	if err != nil {
		log.Warn("listing bundles failed", zap.Error(err))
	} else if len(bundles) > 0 {
		results := make([][]Item, len(bundles))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(f.limit)
		for i, b := range bundles {
			g.Go(func() error {
				items, err := f.source.BundleDetail(gctx, b.ID)
				if err != nil {
					log.Warn("fetching bundle failed", zap.String("bundle", b.ID), zap.Error(err))
					return nil
				}
				results[i] = items
				return nil
			})
		}
		_ = g.Wait()

		for _, items := range results {
			pool = append(pool, items...)
		}
	}

	if len(pool) == 0 {
		items, err := f.source.QueryBySubjectAndGrade(ctx, subject, grade)
		if err != nil {
			log.Warn("direct content query failed", zap.Error(err))
			return nil
		}
		pool = items
	}
	return dedupe(pool)
}

// dedupe drops repeated item ids, keeping first occurrences.
func dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
