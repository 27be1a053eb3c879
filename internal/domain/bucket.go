package domain

import (
	"fmt"
	"time"
)

// BucketStart truncates t (in UTC) to the start of its calendar bucket.
// Weeks are ISO weeks starting on Monday.
func BucketStart(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch g {
	case GranularityHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, time.UTC)
	case GranularityWeek:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GranularityMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

// BucketKey labels the bucket containing t. Keys sort in the same order
// as bucket start times within one granularity.
func BucketKey(t time.Time, g Granularity) string {
	t = t.UTC()
	switch g {
	case GranularityHour:
		return t.Format("2006-01-02T15")
	case GranularityWeek:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case GranularityMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}
