// Package clickhouse is an EventStore backed by a ReplacingMergeTree table.
// Replayed event ids collapse on merge; queries read FINAL so duplicates
// awaiting a merge are not double counted.
package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
)

var _ store.EventStore = (*EventStore)(nil)

var columns = []string{
	"id", "event_date", "platform", "campaign_id", "post_id",
	"impressions", "reach", "engagement", "clicks", "conversions", "spend", "created_at",
}

var insertSQL = "INSERT INTO analytics_events (" + strings.Join(columns, ", ") + ")"

var metricSums = []string{
	"toInt64(count()) AS cnt",
	"sum(impressions)",
	"sum(reach)",
	"sum(engagement)",
	"sum(clicks)",
	"sum(conversions)",
	"sum(spend)",
}

type EventStore struct {
	db *sql.DB
}

func New(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// InsertEvents sends every event in one batch
func (s *EventStore) InsertEvents(ctx context.Context, events ...domain.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.Date.UTC(), string(e.Platform), e.CampaignID, e.PostID,
			e.Metrics.Impressions, e.Metrics.Reach, e.Metrics.Engagement,
			e.Metrics.Clicks, e.Metrics.Conversions, e.Metrics.Spend, e.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("append event %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("send batch of %d events: %w", len(events), err)
	}
	return nil
}

// bucketExpr truncates event_date in UTC. toMonday yields ISO week starts.
func bucketExpr(g domain.Granularity) (string, error) {
	switch g {
	case domain.GranularityHour:
		return "toStartOfHour(event_date, 'UTC')", nil
	case domain.GranularityDay:
		return "toStartOfDay(event_date, 'UTC')", nil
	case domain.GranularityWeek:
		return "toDateTime(toMonday(event_date, 'UTC'), 'UTC')", nil
	case domain.GranularityMonth:
		return "toDateTime(toStartOfMonth(event_date, 'UTC'), 'UTC')", nil
	}
	return "", fmt.Errorf("%w: granularity %q", domain.ErrInvalidInput, g)
}

func where(f domain.EventFilter) sq.And {
	w := sq.And{}
	if f.From != nil {
		w = append(w, sq.GtOrEq{"event_date": f.From.UTC()})
	}
	if f.To != nil {
		w = append(w, sq.LtOrEq{"event_date": f.To.UTC()})
	}
	if f.Platform != "" {
		w = append(w, sq.Eq{"platform": string(f.Platform)})
	}
	if f.CampaignID != "" {
		w = append(w, sq.Eq{"campaign_id": f.CampaignID})
	}
	if f.PostID != "" {
		w = append(w, sq.Eq{"post_id": f.PostID})
	}
	return w
}

func aggregateQuery(f domain.EventFilter, g domain.GroupBy) (string, []any, error) {
	b := sq.Select().From("analytics_events FINAL").Where(where(f))
	switch g.Dimension {
	case domain.ByTime:
		expr, err := bucketExpr(g.Granularity)
		if err != nil {
			return "", nil, err
		}
		b = b.Column(expr + " AS bucket").GroupBy("bucket").OrderBy("bucket ASC")
	case domain.ByPlatform:
		b = b.Column("platform").GroupBy("platform")
	}
	return b.Columns(metricSums...).ToSql()
}

func (s *EventStore) AggregateEvents(ctx context.Context, f domain.EventFilter, g domain.GroupBy) ([]domain.Group, error) {
	query, args, err := aggregateQuery(f, g)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate events: %w", err)
	}
	defer rows.Close()

	var out []domain.Group
	for rows.Next() {
		var grp domain.Group
		var bucket time.Time
		var platform string
		var dest []any
		switch g.Dimension {
		case domain.ByTime:
			dest = append(dest, &bucket)
		case domain.ByPlatform:
			dest = append(dest, &platform)
		}
		m := &grp.Metrics
		dest = append(dest, &grp.Count, &m.Impressions, &m.Reach, &m.Engagement, &m.Clicks, &m.Conversions, &m.Spend)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		if grp.Count == 0 {
			continue
		}
		grp.Start = bucket.UTC()
		if g.Dimension != domain.ByTime {
			grp.Start = time.Time{}
		}
		grp.Platform = domain.Platform(platform)
		out = append(out, grp)
	}
	return out, rows.Err()
}
