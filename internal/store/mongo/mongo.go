// Package mongo stores entities as native documents in MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

var (
	_ store.Store      = (*Store)(nil)
	_ store.EventStore = (*Store)(nil)
)

const (
	postsColl     = "posts"
	leadsColl     = "leads"
	campaignsColl = "campaigns"
	messagesColl  = "messages"
	eventsColl    = "analytics_events"

	duplicateKeyCode = 11000
)

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	return s.db.Client().Disconnect(context.Background())
}

// EnsureIndexes creates the indexes the queries rely on, including the
// unique lead email. Safe to run on every start.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		postsColl: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
			{Keys: bson.D{{Key: "campaignId", Value: 1}}},
		},
		leadsColl: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "assignedTo", Value: 1}}},
		},
		campaignsColl: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		messagesColl: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		eventsColl: {
			{Keys: bson.D{{Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "platform", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "campaignId", Value: 1}}},
		},
	}
	for coll, models := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// collection describes one entity type's collection
type collection[T any] struct {
	name       string
	kind       string
	id         func(T) string
	version    func(T) int64
	setVersion func(*T, int64)
	sorts      []string
}

func isDuplicate(err error) bool {
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		if bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
			return false
		}
		for _, we := range bwe.WriteErrors {
			if we.Code != duplicateKeyCode {
				return false
			}
		}
		return true
	}
	return mongo.IsDuplicateKeyError(err)
}

func insert[T any](ctx context.Context, db *mongo.Database, c collection[T], v T) (T, error) {
	c.setVersion(&v, 1)
	if _, err := db.Collection(c.name).InsertOne(ctx, v); err != nil {
		return v, err
	}
	return v, nil
}

func findOne[T any](ctx context.Context, db *mongo.Database, c collection[T], filter bson.D, what string) (T, error) {
	var v T
	err := db.Collection(c.name).FindOne(ctx, filter).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return v, fmt.Errorf("%s %s: %w", c.kind, what, domain.ErrNotFound)
	}
	if err != nil {
		return v, fmt.Errorf("get %s %s: %w", c.kind, what, err)
	}
	return v, nil
}

// sortSpec turns page into a sort document with _id as the tie-breaker.
// Unknown fields fall back to createdAt.
func sortSpec(page pagination.Params, allowed []string) bson.D {
	field := "createdAt"
	for _, f := range allowed {
		if f == page.SortBy {
			field = f
		}
	}
	dir := 1
	if page.SortDesc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func find[T any](ctx context.Context, db *mongo.Database, c collection[T], filter bson.D, page pagination.Params) ([]T, int, error) {
	coll := db.Collection(c.name)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", c.kind, err)
	}
	opts := options.Find().SetSort(sortSpec(page, c.sorts)).SetSkip(int64(page.Skip))
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", c.kind, err)
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", c.kind, err)
	}
	return out, int(total), nil
}

// replace writes v only if the stored version still equals v's version
func replace[T any](ctx context.Context, db *mongo.Database, c collection[T], v T) (T, error) {
	var zero T
	id, expected := c.id(v), c.version(v)
	c.setVersion(&v, expected+1)
	coll := db.Collection(c.name)
	res, err := coll.ReplaceOne(ctx, versionFilter(id, expected), v)
	if err != nil {
		return zero, err
	}
	if res.MatchedCount == 1 {
		return v, nil
	}
	n, err := coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", c.kind, id, err)
	}
	if n == 0 {
		return zero, fmt.Errorf("%s %s: %w", c.kind, id, domain.ErrNotFound)
	}
	return zero, fmt.Errorf("%s %s not at version %d: %w", c.kind, id, expected, domain.ErrStaleVersion)
}

func versionFilter(id string, version int64) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "version", Value: version}}
}

func remove(ctx context.Context, db *mongo.Database, name, kind, id string) error {
	res, err := db.Collection(name).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
