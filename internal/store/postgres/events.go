package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
)

const eventsTable = "analytics_events"

var eventColumns = []string{
	"id", "event_date", "platform", "campaign_id", "post_id",
	"impressions", "reach", "engagement", "clicks", "conversions", "spend", "created_at",
}

// metricSums is shared by every aggregate query; SUM over BIGINT yields
// NUMERIC so the counters are cast back.
var metricSums = []string{
	"COUNT(*)",
	"COALESCE(SUM(impressions), 0)::BIGINT",
	"COALESCE(SUM(reach), 0)::BIGINT",
	"COALESCE(SUM(engagement), 0)::BIGINT",
	"COALESCE(SUM(clicks), 0)::BIGINT",
	"COALESCE(SUM(conversions), 0)::BIGINT",
	"COALESCE(SUM(spend), 0)",
}

func (s *Store) InsertEvents(ctx context.Context, events ...domain.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	b := psql.Insert(eventsTable).Columns(eventColumns...)
	for _, e := range events {
		b = b.Values(
			e.ID, e.Date.UTC(), string(e.Platform), nullString(e.CampaignID), nullString(e.PostID),
			e.Metrics.Impressions, e.Metrics.Reach, e.Metrics.Engagement,
			e.Metrics.Clicks, e.Metrics.Conversions, e.Metrics.Spend, e.CreatedAt.UTC(),
		)
	}
	query, args, err := b.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build insert events: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %d events: %w", len(events), err)
	}
	return nil
}

func eventWhere(f domain.EventFilter) sq.And {
	where := sq.And{}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"event_date": f.From.UTC()})
	}
	if f.To != nil {
		where = append(where, sq.LtOrEq{"event_date": f.To.UTC()})
	}
	if f.Platform != "" {
		where = append(where, sq.Eq{"platform": string(f.Platform)})
	}
	if f.CampaignID != "" {
		where = append(where, sq.Eq{"campaign_id": f.CampaignID})
	}
	if f.PostID != "" {
		where = append(where, sq.Eq{"post_id": f.PostID})
	}
	return where
}

// truncUnit maps a granularity onto a date_trunc field. Postgres weeks
// start on Monday, matching ISO weeks.
func truncUnit(g domain.Granularity) (string, error) {
	switch g {
	case domain.GranularityHour, domain.GranularityDay, domain.GranularityWeek, domain.GranularityMonth:
		return string(g), nil
	}
	return "", fmt.Errorf("%w: granularity %q", domain.ErrInvalidInput, g)
}

func (s *Store) AggregateEvents(ctx context.Context, f domain.EventFilter, g domain.GroupBy) ([]domain.Group, error) {
	b := psql.Select().From(eventsTable).Where(eventWhere(f))
	switch g.Dimension {
	case domain.ByTime:
		unit, err := truncUnit(g.Granularity)
		if err != nil {
			return nil, err
		}
		b = b.Column(fmt.Sprintf("date_trunc('%s', event_date AT TIME ZONE 'UTC') AS bucket", unit)).
			GroupBy("bucket").OrderBy("bucket ASC")
	case domain.ByPlatform:
		b = b.Column("platform").GroupBy("platform")
	}
	b = b.Columns(metricSums...)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build aggregate: %w", err)
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
		dest := []any{}
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
		if g.Dimension == domain.ByTime {
			y, mo, d := bucket.Date()
			grp.Start = time.Date(y, mo, d, bucket.Hour(), 0, 0, 0, time.UTC)
		}
		grp.Platform = domain.Platform(platform)
		out = append(out, grp)
	}
	return out, rows.Err()
}
