// Package rollup computes read-only analytics over the immutable event
// log: totals with derived rates, calendar time series, per-platform
// breakdowns and campaign performance. Results are cached briefly and the
// cache is purged whenever new events are recorded.
package rollup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
	"github.com/ganeshsabale-99/DMP-Project/pkg/cache"
)

const (
	DefaultTopPosts = 10
	MaxTopPosts     = 100
)

// Overview is the summed metrics of a filter plus the derived ratios.
// Ratios are fractions; presentation happens at the HTTP layer.
type Overview struct {
	Totals         domain.Metrics `json:"totals"`
	Events         int64          `json:"events"`
	CTR            float64        `json:"ctr"`
	EngagementRate float64        `json:"engagementRate"`
	ConversionRate float64        `json:"conversionRate"`
	CPC            float64        `json:"cpc"`
}

// Point is one time-series bucket
type Point struct {
	Key     string         `json:"key"`
	Start   time.Time      `json:"start"`
	Metrics domain.Metrics `json:"metrics"`
	Events  int64          `json:"events"`
}

// PlatformStat is one row of the platform breakdown
type PlatformStat struct {
	Platform domain.Platform `json:"platform"`
	Metrics  domain.Metrics  `json:"metrics"`
	Events   int64           `json:"events"`
}

// CampaignPerformance joins the stored snapshot with live data
type CampaignPerformance struct {
	CampaignID      string                    `json:"campaignId"`
	Name            string                    `json:"name"`
	Status          domain.CampaignStatus     `json:"status"`
	Budget          float64                   `json:"budget"`
	Spent           float64                   `json:"spent"`
	Snapshot        domain.PerformanceMetrics `json:"snapshot"`
	Posts           int                       `json:"posts"`
	Engagement      domain.Engagement         `json:"engagement"`
	TotalEngagement int64                     `json:"totalEngagement"`
	Events          Overview                  `json:"events"`
}

// Dashboard bundles the three main rollups over one filter
type Dashboard struct {
	Overview    Overview       `json:"overview"`
	Granularity string         `json:"granularity"`
	Series      []Point        `json:"series"`
	Platforms   []PlatformStat `json:"platforms"`
}

// Options configure caching and instrumentation
type Options struct {
	TTL                  time.Duration
	StaleWhileRevalidate time.Duration
	MaxEntries           int
	CacheHooks           cache.MetricsHooks
	// OnQuery observes every uncached aggregate
	OnQuery func(kind string, took time.Duration, err error)
}

// Engine answers analytics queries
type Engine struct {
	events    store.EventStore
	posts     store.PostStore
	campaigns store.CampaignStore
	cache     *cache.Cache[any]
	onQuery   func(string, time.Duration, error)
}

func New(events store.EventStore, posts store.PostStore, campaigns store.CampaignStore, opts Options) *Engine {
	e := &Engine{events: events, posts: posts, campaigns: campaigns, onQuery: opts.OnQuery}
	if opts.TTL > 0 {
		e.cache = cache.New[any](cache.Options{
			TTL:                  opts.TTL,
			StaleWhileRevalidate: opts.StaleWhileRevalidate,
			MaxEntries:           opts.MaxEntries,
		}, opts.CacheHooks)
	}
	return e
}

// Record stores already validated events and drops cached rollups
func (e *Engine) Record(ctx context.Context, events ...domain.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := e.events.InsertEvents(ctx, events...); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	e.Invalidate()
	return nil
}

// Invalidate empties the rollup cache
func (e *Engine) Invalidate() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

func (e *Engine) Overview(ctx context.Context, f domain.EventFilter) (Overview, error) {
	if err := f.Validate(); err != nil {
		return Overview{}, err
	}
	return cached(ctx, e, "overview|"+filterKey(f), func(ctx context.Context) (Overview, error) {
		groups, err := e.aggregate(ctx, "overview", f, domain.GroupBy{Dimension: domain.ByNone})
		if err != nil {
			return Overview{}, err
		}
		var total domain.Metrics
		var count int64
		for _, g := range groups {
			total = total.Add(g.Metrics)
			count += g.Count
		}
		return summarize(total, count), nil
	})
}

func (e *Engine) TimeSeries(ctx context.Context, f domain.EventFilter, g domain.Granularity) ([]Point, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if g == "" {
		g = domain.GranularityDay
	}
	key := fmt.Sprintf("series|%s|%s", g, filterKey(f))
	return cached(ctx, e, key, func(ctx context.Context) ([]Point, error) {
		groups, err := e.aggregate(ctx, "timeseries", f, domain.GroupBy{Dimension: domain.ByTime, Granularity: g})
		if err != nil {
			return nil, err
		}
		// backends bucket in the database; merge by key in case two
		// starts land in one calendar bucket
		byKey := make(map[string]*Point)
		for _, gr := range groups {
			k := domain.BucketKey(gr.Start, g)
			p, ok := byKey[k]
			if !ok {
				p = &Point{Key: k, Start: domain.BucketStart(gr.Start, g)}
				byKey[k] = p
			}
			p.Metrics = p.Metrics.Add(gr.Metrics)
			p.Events += gr.Count
		}
		points := make([]Point, 0, len(byKey))
		for _, p := range byKey {
			points = append(points, *p)
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Start.Before(points[j].Start) })
		return points, nil
	})
}

// PlatformBreakdown sorts by engagement descending, then platform name
func (e *Engine) PlatformBreakdown(ctx context.Context, f domain.EventFilter) ([]PlatformStat, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return cached(ctx, e, "platforms|"+filterKey(f), func(ctx context.Context) ([]PlatformStat, error) {
		groups, err := e.aggregate(ctx, "platforms", f, domain.GroupBy{Dimension: domain.ByPlatform})
		if err != nil {
			return nil, err
		}
		stats := make([]PlatformStat, 0, len(groups))
		for _, g := range groups {
			stats = append(stats, PlatformStat{Platform: g.Platform, Metrics: g.Metrics, Events: g.Count})
		}
		sort.Slice(stats, func(i, j int) bool {
			if stats[i].Metrics.Engagement != stats[j].Metrics.Engagement {
				return stats[i].Metrics.Engagement > stats[j].Metrics.Engagement
			}
			return stats[i].Platform < stats[j].Platform
		})
		return stats, nil
	})
}

// Dashboard computes overview, series and breakdown concurrently
func (e *Engine) Dashboard(ctx context.Context, f domain.EventFilter, g domain.Granularity) (Dashboard, error) {
	if g == "" {
		g = domain.GranularityDay
	}
	d := Dashboard{Granularity: string(g)}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		d.Overview, err = e.Overview(ctx, f)
		return err
	})
	eg.Go(func() error {
		var err error
		d.Series, err = e.TimeSeries(ctx, f, g)
		return err
	})
	eg.Go(func() error {
		var err error
		d.Platforms, err = e.PlatformBreakdown(ctx, f)
		return err
	})
	if err := eg.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// CampaignPerformance reads the campaign, the live engagement of its posts
// and the event totals attributed to it. Posts deleted since they were
// attached are skipped.
func (e *Engine) CampaignPerformance(ctx context.Context, campaignID string) (CampaignPerformance, error) {
	c, err := e.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return CampaignPerformance{}, err
	}
	perf := CampaignPerformance{
		CampaignID: c.ID,
		Name:       c.Name,
		Status:     c.Status,
		Budget:     c.Budget,
		Spent:      c.Spent,
		Snapshot:   c.PerformanceMetrics,
	}
	for _, id := range c.PostIDs {
		p, err := e.posts.GetPost(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return CampaignPerformance{}, fmt.Errorf("load campaign post %s: %w", id, err)
		}
		perf.Posts++
		perf.Engagement = perf.Engagement.Add(p.Engagement)
	}
	perf.TotalEngagement = perf.Engagement.Total()

	perf.Events, err = e.Overview(ctx, domain.EventFilter{CampaignID: c.ID})
	if err != nil {
		return CampaignPerformance{}, err
	}
	return perf, nil
}

// TopPosts returns published posts by total engagement. limit is clamped
// to [1, MaxTopPosts] with DefaultTopPosts for zero.
func (e *Engine) TopPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	switch {
	case limit <= 0:
		limit = DefaultTopPosts
	case limit > MaxTopPosts:
		limit = MaxTopPosts
	}
	return e.posts.TopPosts(ctx, limit)
}

func (e *Engine) aggregate(ctx context.Context, kind string, f domain.EventFilter, g domain.GroupBy) ([]domain.Group, error) {
	start := time.Now()
	groups, err := e.events.AggregateEvents(ctx, f, g)
	if e.onQuery != nil {
		e.onQuery(kind, time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", kind, err)
	}
	return groups, nil
}

func summarize(m domain.Metrics, events int64) Overview {
	return Overview{
		Totals:         m,
		Events:         events,
		CTR:            ratio(float64(m.Clicks), float64(m.Impressions)),
		EngagementRate: ratio(float64(m.Engagement), float64(m.Reach)),
		ConversionRate: ratio(float64(m.Conversions), float64(m.Clicks)),
		CPC:            ratio(m.Spend, float64(m.Clicks)),
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func filterKey(f domain.EventFilter) string {
	ts := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s", ts(f.From), ts(f.To), f.Platform, f.CampaignID, f.PostID)
}

func cached[T any](ctx context.Context, e *Engine, key string, load func(context.Context) (T, error)) (T, error) {
	if e.cache == nil {
		return load(ctx)
	}
	v, err := e.cache.Get(ctx, key, func(ctx context.Context, _ string) (any, error) {
		return load(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
