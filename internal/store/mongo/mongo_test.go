package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

func TestSortSpec(t *testing.T) {
	got := sortSpec(pagination.Params{SortBy: "score", SortDesc: true}, store.LeadSortFields)
	assert.Equal(t, bson.D{{Key: "score", Value: -1}, {Key: "_id", Value: -1}}, got)

	got = sortSpec(pagination.Params{SortBy: "password"}, store.LeadSortFields)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}, got)
}

func TestLeadFilter(t *testing.T) {
	minScore := 40
	got := leadFilter(domain.LeadFilter{Status: domain.LeadContacted, MinScore: &minScore, Email: " A@X.com"})
	assert.Equal(t, bson.D{
		{Key: "status", Value: domain.LeadContacted},
		{Key: "score", Value: bson.D{{Key: "$gte", Value: 40}}},
		{Key: "email", Value: "a@x.com"},
	}, got)

	assert.Empty(t, leadFilter(domain.LeadFilter{}))
}

func TestPostFilter(t *testing.T) {
	got := postFilter(domain.PostFilter{Platform: domain.PlatformTikTok, CampaignID: "c1"})
	assert.Equal(t, bson.D{
		{Key: "platform", Value: domain.PlatformTikTok},
		{Key: "campaignId", Value: "c1"},
	}, got)
}

func TestEventMatch(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got := eventMatch(domain.EventFilter{From: &from, Platform: domain.PlatformInstagram})
	assert.Equal(t, bson.D{
		{Key: "date", Value: bson.D{{Key: "$gte", Value: from}}},
		{Key: "platform", Value: domain.PlatformInstagram},
	}, got)
}

func TestAggregatePipeline(t *testing.T) {
	t.Run("weekly buckets start on monday and sort", func(t *testing.T) {
		p, err := aggregatePipeline(domain.EventFilter{}, domain.GroupBy{Dimension: domain.ByTime, Granularity: domain.GranularityWeek})
		require.NoError(t, err)
		require.Len(t, p, 3)

		group := p[1][0].Value.(bson.D)
		key := group[0].Value.(bson.D)[0]
		assert.Equal(t, "$dateTrunc", key.Key)
		assert.Contains(t, key.Value.(bson.D), bson.E{Key: "startOfWeek", Value: "monday"})
		assert.Contains(t, key.Value.(bson.D), bson.E{Key: "timezone", Value: "UTC"})
		assert.Equal(t, "$sort", p[2][0].Key)
	})

	t.Run("platform grouping is unsorted", func(t *testing.T) {
		p, err := aggregatePipeline(domain.EventFilter{}, domain.GroupBy{Dimension: domain.ByPlatform})
		require.NoError(t, err)
		require.Len(t, p, 2)
		group := p[1][0].Value.(bson.D)
		assert.Equal(t, bson.E{Key: "_id", Value: "$platform"}, group[0])
	})

	t.Run("totals group everything", func(t *testing.T) {
		p, err := aggregatePipeline(domain.EventFilter{}, domain.GroupBy{})
		require.NoError(t, err)
		group := p[1][0].Value.(bson.D)
		assert.Equal(t, bson.E{Key: "_id", Value: nil}, group[0])
	})

	t.Run("unknown granularity", func(t *testing.T) {
		_, err := aggregatePipeline(domain.EventFilter{}, domain.GroupBy{Dimension: domain.ByTime, Granularity: "decade"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestTopPostsPipeline(t *testing.T) {
	p := topPostsPipeline(3)
	require.Len(t, p, 5)
	assert.Equal(t, bson.D{{Key: "$limit", Value: 3}}, p[3])

	assert.Len(t, topPostsPipeline(0), 4)
}

func TestGroupRowToGroup(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: start},
		{Key: "count", Value: int32(2)},
		{Key: "impressions", Value: int64(300)},
		{Key: "spend", Value: 4.5},
	})
	require.NoError(t, err)

	var row groupRow
	require.NoError(t, bson.Unmarshal(raw, &row))
	grp, err := row.toGroup(domain.ByTime)
	require.NoError(t, err)
	assert.True(t, start.Equal(grp.Start))
	assert.Equal(t, int64(2), grp.Count)
	assert.Equal(t, int64(300), grp.Metrics.Impressions)
	assert.Equal(t, 4.5, grp.Metrics.Spend)

	raw, err = bson.Marshal(bson.D{{Key: "_id", Value: "LINKEDIN"}, {Key: "count", Value: int32(1)}})
	require.NoError(t, err)
	row = groupRow{}
	require.NoError(t, bson.Unmarshal(raw, &row))
	grp, err = row.toGroup(domain.ByPlatform)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformLinkedIn, grp.Platform)
}

func TestIsDuplicate(t *testing.T) {
	dup := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{{WriteError: mongo.WriteError{Code: duplicateKeyCode}}}}
	assert.True(t, isDuplicate(dup))

	mixed := mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
		{WriteError: mongo.WriteError{Code: duplicateKeyCode}},
		{WriteError: mongo.WriteError{Code: 121}},
	}}
	assert.False(t, isDuplicate(mixed))

	single := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: duplicateKeyCode}}}
	assert.True(t, isDuplicate(single))

	assert.False(t, isDuplicate(errors.New("network")))
	assert.False(t, isDuplicate(nil))
}

func TestEntityDocumentsUseStringIDs(t *testing.T) {
	raw, err := bson.Marshal(domain.Post{ID: "p1", Status: domain.PostDraft, Version: 3})
	require.NoError(t, err)
	var back domain.Post
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, "p1", back.ID)
	assert.Equal(t, int64(3), back.Version)
	assert.Equal(t, "p1", bson.Raw(raw).Lookup("_id").StringValue())
}
