package clickhouse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
)

func newMock(t *testing.T) (*EventStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

var day5 = time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

func TestInsertEventsBatch(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO analytics_events \\(id, event_date, platform")
	prep.ExpectExec().WithArgs("e1", day5, "INSTAGRAM", "c1", "", int64(100), int64(0), int64(0), int64(0), int64(0), 0.0, day5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.InsertEvents(context.Background(),
		domain.AnalyticsEvent{ID: "e1", Date: day5, Platform: domain.PlatformInstagram, CampaignID: "c1", Metrics: domain.Metrics{Impressions: 100}, CreatedAt: day5},
		domain.AnalyticsEvent{ID: "e2", Date: day5, Platform: domain.PlatformTwitter, CreatedAt: day5},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertEventsRollsBackOnFailure(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO analytics_events")
	prep.ExpectExec().WillReturnError(errors.New("type mismatch"))
	mock.ExpectRollback()

	err := s.InsertEvents(context.Background(), domain.AnalyticsEvent{ID: "e1", Date: day5, Platform: domain.PlatformInstagram})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append event e1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateQuery(t *testing.T) {
	from := day5
	query, args, err := aggregateQuery(
		domain.EventFilter{From: &from, Platform: domain.PlatformInstagram},
		domain.GroupBy{Dimension: domain.ByTime, Granularity: domain.GranularityWeek},
	)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT toDateTime(toMonday(event_date, 'UTC'), 'UTC') AS bucket, toInt64(count()) AS cnt, sum(impressions), sum(reach), sum(engagement), sum(clicks), sum(conversions), sum(spend) "+
			"FROM analytics_events FINAL WHERE (event_date >= ? AND platform = ?) GROUP BY bucket ORDER BY bucket ASC",
		query)
	assert.Equal(t, []any{from, "INSTAGRAM"}, args)

	_, _, err = aggregateQuery(domain.EventFilter{}, domain.GroupBy{Dimension: domain.ByTime, Granularity: "minute"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAggregateEventsDaily(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("SELECT toStartOfDay\\(event_date, 'UTC'\\) AS bucket").
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "cnt", "i", "r", "e", "c", "cv", "s"}).
			AddRow(day5, int64(1), int64(100), int64(0), int64(0), int64(0), int64(0), 0.0).
			AddRow(day5.AddDate(0, 0, 1), int64(1), int64(200), int64(0), int64(0), int64(0), int64(0), 0.0))

	groups, err := s.AggregateEvents(context.Background(), domain.EventFilter{}, domain.GroupBy{Dimension: domain.ByTime, Granularity: domain.GranularityDay})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, day5, groups[0].Start)
	assert.Equal(t, int64(200), groups[1].Metrics.Impressions)
}

func TestAggregateEventsEmptyTotals(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery("FROM analytics_events FINAL").
		WillReturnRows(sqlmock.NewRows([]string{"cnt", "i", "r", "e", "c", "cv", "s"}).
			AddRow(int64(0), int64(0), int64(0), int64(0), int64(0), int64(0), 0.0))

	groups, err := s.AggregateEvents(context.Background(), domain.EventFilter{}, domain.GroupBy{})
	require.NoError(t, err)
	assert.Empty(t, groups)
}
