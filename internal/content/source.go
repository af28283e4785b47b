package content

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrBundleNotFound is returned by BundleDetail for an unknown bundle id.
var ErrBundleNotFound = errors.New("bundle not found")

// Bundle is a named group of items for one subject and grade.
type Bundle struct {
	ID        string `json:"id" yaml:"id"`
	Subject   string `json:"subject" yaml:"subject"`
	Grade     int    `json:"grade" yaml:"grade"`
	Title     string `json:"title" yaml:"title"`
	ItemCount int    `json:"item_count" yaml:"-"`
}

// Source is a read-only content pool.
type Source interface {
	// ListBundles returns the bundles for a subject and grade.
	ListBundles(ctx context.Context, subject string, grade int) ([]Bundle, error)
	// BundleDetail returns every item of one bundle.
	BundleDetail(ctx context.Context, bundleID string) ([]Item, error)
	// QueryBySubjectAndGrade returns items directly, without bundles.
	QueryBySubjectAndGrade(ctx context.Context, subject string, grade int) ([]Item, error)
}

// Multi merges several sources. A failing source is logged and skipped;
// calls fail only when every source fails.
type Multi struct {
	sources []Source
	logger  *zap.Logger
}

// NewMulti combines sources in priority order.
func NewMulti(logger *zap.Logger, sources ...Source) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{sources: sources, logger: logger}
}

func (m *Multi) ListBundles(ctx context.Context, subject string, grade int) ([]Bundle, error) {
	var out []Bundle
	var errs []error
	for i, s := range m.sources {
		bundles, err := s.ListBundles(ctx, subject, grade)
		if err != nil {
			m.logger.Warn("list bundles failed", zap.Int("source", i), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		out = append(out, bundles...)
	}
	if len(m.sources) > 0 && len(errs) == len(m.sources) {
		return nil, fmt.Errorf("list bundles: %w", errors.Join(errs...))
	}
	return out, nil
}

func (m *Multi) BundleDetail(ctx context.Context, bundleID string) ([]Item, error) {
	var errs []error
	for _, s := range m.sources {
		items, err := s.BundleDetail(ctx, bundleID)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, ErrBundleNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("bundle %s: %w", bundleID, errors.Join(errs...))
	}
	return nil, fmt.Errorf("bundle %s: %w", bundleID, ErrBundleNotFound)
}

func (m *Multi) QueryBySubjectAndGrade(ctx context.Context, subject string, grade int) ([]Item, error) {
	var out []Item
	var errs []error
	for i, s := range m.sources {
		items, err := s.QueryBySubjectAndGrade(ctx, subject, grade)
		if err != nil {
			m.logger.Warn("query content failed", zap.Int("source", i), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		out = append(out, items...)
	}
	if len(m.sources) > 0 && len(errs) == len(m.sources) {
		return nil, fmt.Errorf("query content: %w", errors.Join(errs...))
	}
	return out, nil
}
