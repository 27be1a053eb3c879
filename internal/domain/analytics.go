package domain

import (
	"fmt"
	"math"
	"time"
)

// Metrics are the six additive quantities carried by every event
type Metrics struct {
	Impressions int64   `json:"impressions" bson:"impressions"`
	Reach       int64   `json:"reach" bson:"reach"`
	Engagement  int64   `json:"engagement" bson:"engagement"`
	Clicks      int64   `json:"clicks" bson:"clicks"`
	Conversions int64   `json:"conversions" bson:"conversions"`
	Spend       float64 `json:"spend" bson:"spend"`
}

func (m Metrics) Add(o Metrics) Metrics {
	return Metrics{
		Impressions: m.Impressions + o.Impressions,
		Reach:       m.Reach + o.Reach,
		Engagement:  m.Engagement + o.Engagement,
		Clicks:      m.Clicks + o.Clicks,
		Conversions: m.Conversions + o.Conversions,
		Spend:       m.Spend + o.Spend,
	}
}

func (m Metrics) Validate() error {
	if m.Impressions < 0 || m.Reach < 0 || m.Engagement < 0 || m.Clicks < 0 || m.Conversions < 0 {
		return fmt.Errorf("%w: metrics must be >= 0", ErrOutOfRange)
	}
	if m.Spend < 0 || math.IsNaN(m.Spend) || math.IsInf(m.Spend, 0) {
		return fmt.Errorf("%w: spend must be a finite number >= 0", ErrOutOfRange)
	}
	return nil
}

// AnalyticsEvent is an immutable per-event metric record
type AnalyticsEvent struct {
	ID         string    `json:"id" bson:"_id"`
	Date       time.Time `json:"date" bson:"date"`
	Platform   Platform  `json:"platform" bson:"platform"`
	Metrics    Metrics   `json:"metrics" bson:"metrics"`
	CampaignID string    `json:"campaignId,omitempty" bson:"campaignId,omitempty"`
	PostID     string    `json:"postId,omitempty" bson:"postId,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

func (e AnalyticsEvent) Validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if _, err := ParsePlatform(string(e.Platform)); err != nil {
		return err
	}
	return e.Metrics.Validate()
}

// EventFilter selects events for a rollup. From and To are inclusive.
type EventFilter struct {
	From       *time.Time
	To         *time.Time
	Platform   Platform
	CampaignID string
	PostID     string
}

func (f EventFilter) Matches(e AnalyticsEvent) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	return (f.Platform == "" || e.Platform == f.Platform) &&
		(f.CampaignID == "" || e.CampaignID == f.CampaignID) &&
		(f.PostID == "" || e.PostID == f.PostID)
}

// Validate rejects inverted ranges and unknown platforms
func (f EventFilter) Validate() error {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	if f.Platform != "" {
		if _, err := ParsePlatform(string(f.Platform)); err != nil {
			return err
		}
	}
	return nil
}

// Dimension is the grouping expression of an aggregate query
type Dimension int

const (
	ByNone Dimension = iota
	ByTime
	ByPlatform
)

// GroupBy describes how an EventStore aggregate groups its sums
type GroupBy struct {
	Dimension   Dimension
	Granularity Granularity
}

// Group is one row of an aggregate result. Start is set for ByTime,
// Platform for ByPlatform.
type Group struct {
	Start    time.Time
	Platform Platform
	Metrics  Metrics
	Count    int64
}
