package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type PerformanceMetrics struct {
	Impressions int64   `json:"impressions" bson:"impressions"`
	Clicks      int64   `json:"clicks" bson:"clicks"`
	Conversions int64   `json:"conversions" bson:"conversions"`
	CTR         float64 `json:"ctr" bson:"ctr"`
	CPC         float64 `json:"cpc" bson:"cpc"`
	ROAS        float64 `json:"roas" bson:"roas"`
}

// Merge applies the recognised keys of partial and ignores the rest.
// Counter keys must be non-negative whole numbers; rate keys non-negative.
func (m PerformanceMetrics) Merge(partial map[string]any) (PerformanceMetrics, error) {
	out := m
	for key, raw := range partial {
		var counter *int64
		var rate *float64
		switch key {
		case "impressions":
			counter = &out.Impressions
		case "clicks":
			counter = &out.Clicks
		case "conversions":
			counter = &out.Conversions
		case "ctr":
			rate = &out.CTR
		case "cpc":
			rate = &out.CPC
		case "roas":
			rate = &out.ROAS
		default:
			continue
		}
		v, ok := toFloat(raw)
		if !ok || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return m, fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidInput, key)
		}
		if counter != nil {
			if v != math.Trunc(v) {
				return m, fmt.Errorf("%w: %s must be a whole number", ErrInvalidInput, key)
			}
			// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
			if v >= math.MaxInt64 {
				return m, fmt.Errorf("%w: %s exceeds %d", ErrOutOfRange, key, int64(math.MaxInt64))
			}
			*counter = int64(v)
		} else {
			*rate = v
		}
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

type Campaign struct {
	ID                 string             `json:"id" bson:"_id"`
	Name               string             `json:"name" bson:"name"`
	Description        string             `json:"description,omitempty" bson:"description,omitempty"`
	Type               CampaignType       `json:"type" bson:"type"`
	Status             CampaignStatus     `json:"status" bson:"status"`
	Budget             float64            `json:"budget" bson:"budget"`
	Spent              float64            `json:"spent" bson:"spent"`
	StartDate          time.Time          `json:"startDate" bson:"startDate"`
	EndDate            *time.Time         `json:"endDate,omitempty" bson:"endDate,omitempty"`
	TargetAudience     string             `json:"targetAudience,omitempty" bson:"targetAudience,omitempty"`
	PostIDs            []string           `json:"postIds" bson:"postIds"`
	LeadIDs            []string           `json:"leadIds" bson:"leadIds"`
	PerformanceMetrics PerformanceMetrics `json:"performanceMetrics" bson:"performanceMetrics"`
	CreatedBy          string             `json:"createdBy" bson:"createdBy"`
	Version            int64              `json:"version" bson:"version"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Validate checks the money and date invariants that survive every edit
func (c Campaign) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := ParseCampaignType(string(c.Type)); err != nil {
		return err
	}
	if _, err := ParseCampaignStatus(string(c.Status)); err != nil {
		return err
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("%w: startDate is required", ErrInvalidInput)
	}
	if c.Budget < 0 {
		return fmt.Errorf("%w: budget must be >= 0", ErrInvalidInput)
	}
	if c.Spent < 0 {
		return fmt.Errorf("%w: spent must be >= 0", ErrInvalidInput)
	}
	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: endDate before startDate", ErrInvalidInput)
	}
	return nil
}

type NewCampaign struct {
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Type           CampaignType `json:"type"`
	Budget         float64      `json:"budget"`
	StartDate      time.Time    `json:"startDate"`
	EndDate        *time.Time   `json:"endDate"`
	TargetAudience string       `json:"targetAudience"`
}

type CampaignPatch struct {
	Name           *string         `json:"name"`
	Description    *string         `json:"description"`
	Type           *CampaignType   `json:"type"`
	Status         *CampaignStatus `json:"status"`
	Budget         *float64        `json:"budget"`
	Spent          *float64        `json:"spent"`
	StartDate      *time.Time      `json:"startDate"`
	EndDate        *time.Time      `json:"endDate"`
	TargetAudience *string         `json:"targetAudience"`
}

type CampaignFilter struct {
	Status    CampaignStatus
	Type      CampaignType
	CreatedBy string
}

func (f CampaignFilter) Matches(c Campaign) bool {
	return (f.Status == "" || c.Status == f.Status) &&
		(f.Type == "" || c.Type == f.Type) &&
		(f.CreatedBy == "" || c.CreatedBy == f.CreatedBy)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveID drops id from ids preserving order; ok is false when absent
func RemoveID(ids []string, id string) (out []string, ok bool) {
	for i, v := range ids {
		if v == id {
			out := make([]string, 0, len(ids)-1)
			out = append(out, ids[:i]...)
			return append(out, ids[i+1:]...), true
		}
	}
	return ids, false
}

// HasPost reports membership in the post association set
func (c Campaign) HasPost(id string) bool { return containsID(c.PostIDs, id) }

// HasLead reports membership in the lead association set
func (c Campaign) HasLead(id string) bool { return containsID(c.LeadIDs, id) }
