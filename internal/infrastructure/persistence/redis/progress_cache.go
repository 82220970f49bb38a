package redis

import (
	"context"
	"errors"
	"time"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
)

// PrefixProgress namespaces cached progress reports.
const PrefixProgress = "progress:"

// TTLProgress is the default lifetime of a cached report.
const TTLProgress = 5 * time.Minute

// allViews lists every view a report may be cached under.
var allViews = []audit.View{audit.ViewAll, audit.ViewCompleted, audit.ViewInProgress}

// ProgressKey generates the cache key of a report.
func ProgressKey(planCode string, view audit.View) string {
	return PrefixProgress + planCode + ":" + string(view)
}

// ProgressCache caches audit reports per plan and view.
type ProgressCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewProgressCache creates a ProgressCache. A non-positive ttl uses TTLProgress.
func NewProgressCache(cache *Cache, ttl time.Duration) *ProgressCache {
	if ttl <= 0 {
		ttl = TTLProgress
	}
	return &ProgressCache{cache: cache, ttl: ttl}
}

// GetProgress returns the cached report, or nil on a miss.
func (p *ProgressCache) GetProgress(ctx context.Context, planCode string, view audit.View) (*audit.Report, error) {
	var report audit.Report
	if err := p.cache.Get(ctx, ProgressKey(planCode, view), &report); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// SetProgress stores a report.
func (p *ProgressCache) SetProgress(ctx context.Context, planCode string, view audit.View, report *audit.Report) error {
	if report == nil {
		return ErrCacheNilValue
	}
	return p.cache.Set(ctx, ProgressKey(planCode, view), report, p.ttl)
}

// InvalidatePlan drops the reports of one plan under every view.
func (p *ProgressCache) InvalidatePlan(ctx context.Context, planCode string) error {
	keys := make([]string, 0, len(allViews))
	for _, v := range allViews {
		keys = append(keys, ProgressKey(planCode, v))
	}
	return p.cache.Delete(ctx, keys...)
}

// InvalidateAll drops every cached report, e.g. after a catalog reload.
func (p *ProgressCache) InvalidateAll(ctx context.Context) error {
	return p.cache.DeleteByPattern(ctx, PrefixProgress+"*")
}
