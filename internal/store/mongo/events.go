package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
)

func (s *Store) InsertEvents(ctx context.Context, events ...domain.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]any, len(events))
	for i, e := range events {
		docs[i] = e
	}
	_, err := s.db.Collection(eventsColl).InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !isDuplicate(err) {
		return fmt.Errorf("insert %d events: %w", len(events), err)
	}
	return nil
}

func eventMatch(f domain.EventFilter) bson.D {
	d := bson.D{}
	date := bson.D{}
	if f.From != nil {
		date = append(date, bson.E{Key: "$gte", Value: f.From.UTC()})
	}
	if f.To != nil {
		date = append(date, bson.E{Key: "$lte", Value: f.To.UTC()})
	}
	if len(date) > 0 {
		d = append(d, bson.E{Key: "date", Value: date})
	}
	if f.Platform != "" {
		d = append(d, bson.E{Key: "platform", Value: f.Platform})
	}
	if f.CampaignID != "" {
		d = append(d, bson.E{Key: "campaignId", Value: f.CampaignID})
	}
	if f.PostID != "" {
		d = append(d, bson.E{Key: "postId", Value: f.PostID})
	}
	return d
}

// groupKey is the $group _id expression for g. Weeks start on Monday to
// line up with ISO weeks.
func groupKey(g domain.GroupBy) (any, error) {
	switch g.Dimension {
	case domain.ByPlatform:
		return "$platform", nil
	case domain.ByTime:
		trunc := bson.D{
			{Key: "date", Value: "$date"},
			{Key: "timezone", Value: "UTC"},
		}
		switch g.Granularity {
		case domain.GranularityHour, domain.GranularityDay, domain.GranularityMonth:
			trunc = append(trunc, bson.E{Key: "unit", Value: string(g.Granularity)})
		case domain.GranularityWeek:
			trunc = append(trunc, bson.E{Key: "unit", Value: "week"}, bson.E{Key: "startOfWeek", Value: "monday"})
		default:
			return nil, fmt.Errorf("%w: granularity %q", domain.ErrInvalidInput, g.Granularity)
		}
		return bson.D{{Key: "$dateTrunc", Value: trunc}}, nil
	}
	return nil, nil
}

func aggregatePipeline(f domain.EventFilter, g domain.GroupBy) (mongo.Pipeline, error) {
	key, err := groupKey(g)
	if err != nil {
		return nil, err
	}
	sum := func(field string) bson.D { return bson.D{{Key: "$sum", Value: "$metrics." + field}} }
	p := mongo.Pipeline{
		{{Key: "$match", Value: eventMatch(f)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: key},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "impressions", Value: sum("impressions")},
			{Key: "reach", Value: sum("reach")},
			{Key: "engagement", Value: sum("engagement")},
			{Key: "clicks", Value: sum("clicks")},
			{Key: "conversions", Value: sum("conversions")},
			{Key: "spend", Value: sum("spend")},
		}}},
	}
	if g.Dimension == domain.ByTime {
		p = append(p, bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}})
	}
	return p, nil
}

type groupRow struct {
	ID          bson.RawValue `bson:"_id"`
	Count       int64         `bson:"count"`
	Impressions int64         `bson:"impressions"`
	Reach       int64         `bson:"reach"`
	Engagement  int64         `bson:"engagement"`
	Clicks      int64         `bson:"clicks"`
	Conversions int64         `bson:"conversions"`
	Spend       float64       `bson:"spend"`
}

func (r groupRow) toGroup(d domain.Dimension) (domain.Group, error) {
	grp := domain.Group{
		Count: r.Count,
		Metrics: domain.Metrics{
			Impressions: r.Impressions,
			Reach:       r.Reach,
			Engagement:  r.Engagement,
			Clicks:      r.Clicks,
			Conversions: r.Conversions,
			Spend:       r.Spend,
		},
	}
	switch d {
	case domain.ByTime:
		var t time.Time
		if err := r.ID.Unmarshal(&t); err != nil {
			return grp, fmt.Errorf("decode bucket: %w", err)
		}
		grp.Start = t.UTC()
	case domain.ByPlatform:
		var p string
		if err := r.ID.Unmarshal(&p); err != nil {
			return grp, fmt.Errorf("decode platform: %w", err)
		}
		grp.Platform = domain.Platform(p)
	}
	return grp, nil
}

func (s *Store) AggregateEvents(ctx context.Context, f domain.EventFilter, g domain.GroupBy) ([]domain.Group, error) {
	pipeline, err := aggregatePipeline(f, g)
	if err != nil {
		return nil, err
	}
	cur, err := s.db.Collection(eventsColl).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate events: %w", err)
	}
	var rows []groupRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode aggregate: %w", err)
	}
	out := make([]domain.Group, 0, len(rows))
	for _, r := range rows {
		grp, err := r.toGroup(g.Dimension)
		if err != nil {
			return nil, err
		}
		out = append(out, grp)
	}
	return out, nil
}
