package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/policy"
	"github.com/ganeshsabale-99/DMP-Project/internal/rollup"
	"github.com/ganeshsabale-99/DMP-Project/internal/suggest"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
)

// opAnalyticsIngest records events arriving from the event topic
const opAnalyticsIngest policy.Operation = "analytics.ingest"

// RecordEvents validates every event before storing any of them
func (s *Service) RecordEvents(ctx context.Context, pr domain.Principal, events []domain.AnalyticsEvent) ([]domain.AnalyticsEvent, error) {
	if err := s.policy.Authorize(pr, policy.AnalyticsRecord); err != nil {
		return nil, s.done("event", policy.AnalyticsRecord, pr, "", err)
	}
	out, err := s.record(ctx, events)
	return out, s.done("event", policy.AnalyticsRecord, pr, "", err)
}

// IngestEvents is RecordEvents for trusted pipeline input. It has no
// principal; the topic is the authority.
func (s *Service) IngestEvents(ctx context.Context, events ...domain.AnalyticsEvent) error {
	out, err := s.record(ctx, events)
	if err != nil {
		return s.done("event", opAnalyticsIngest, domain.Principal{ID: "pipeline"}, "", err)
	}
	s.logger.WithField("events", len(out)).Debug("Ingested analytics events")
	return nil
}

func (s *Service) record(ctx context.Context, events []domain.AnalyticsEvent) ([]domain.AnalyticsEvent, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: no events", domain.ErrInvalidInput)
	}
	out := make([]domain.AnalyticsEvent, 0, len(events))
	for i, raw := range events {
		ev, err := s.engine.NewEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		out = append(out, ev)
	}
	if err := s.rollup.Record(ctx, out...); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) authorizeRead(pr domain.Principal) error {
	if err := s.policy.Authorize(pr, policy.AnalyticsRead); err != nil {
		return s.done("analytics", policy.AnalyticsRead, pr, "", err)
	}
	return nil
}

func (s *Service) Overview(ctx context.Context, pr domain.Principal, f domain.EventFilter) (rollup.Overview, error) {
	if err := s.authorizeRead(pr); err != nil {
		return rollup.Overview{}, err
	}
	return s.rollup.Overview(ctx, f)
}

func (s *Service) TimeSeries(ctx context.Context, pr domain.Principal, f domain.EventFilter, g domain.Granularity) ([]rollup.Point, error) {
	if err := s.authorizeRead(pr); err != nil {
		return nil, err
	}
	return s.rollup.TimeSeries(ctx, f, g)
}

func (s *Service) PlatformBreakdown(ctx context.Context, pr domain.Principal, f domain.EventFilter) ([]rollup.PlatformStat, error) {
	if err := s.authorizeRead(pr); err != nil {
		return nil, err
	}
	return s.rollup.PlatformBreakdown(ctx, f)
}

func (s *Service) Dashboard(ctx context.Context, pr domain.Principal, f domain.EventFilter, g domain.Granularity) (rollup.Dashboard, error) {
	if err := s.authorizeRead(pr); err != nil {
		return rollup.Dashboard{}, err
	}
	return s.rollup.Dashboard(ctx, f, g)
}

func (s *Service) TopPosts(ctx context.Context, pr domain.Principal, limit int) ([]domain.Post, error) {
	if err := s.authorizeRead(pr); err != nil {
		return nil, err
	}
	return s.rollup.TopPosts(ctx, limit)
}

// SuggestContent fails Unavailable when no suggestion backend is configured
func (s *Service) SuggestContent(ctx context.Context, pr domain.Principal, req suggest.Request) (suggest.Suggestion, error) {
	if err := s.policy.Authorize(pr, policy.ContentSuggest); err != nil {
		return suggest.Suggestion{}, s.done("content", policy.ContentSuggest, pr, "", err)
	}
	if s.suggester == nil {
		return suggest.Suggestion{}, fmt.Errorf("%w: content suggestions are not configured", domain.ErrUnavailable)
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return suggest.Suggestion{}, err
	}
	out, err := s.suggester.Suggest(ctx, req)
	if err != nil {
		s.logger.WithFields(logging.Fields{
			"principal_id": pr.ID,
			"platform":     req.Platform,
			"error":        err,
		}).Warn("Content suggestion failed")
		return suggest.Suggestion{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return out, nil
}

// DefaultChannels are the channels a new notification subscriber joins:
// its own user channel plus the team channel when it approves posts.
func (s *Service) DefaultChannels(pr domain.Principal) []string {
	channels := []string{domain.UserChannel(pr.ID)}
	if s.CanSubscribe(pr, domain.ChannelMarketingHead) {
		channels = append(channels, domain.ChannelMarketingHead)
	}
	return channels
}

// CanSubscribe allows a principal onto its own user channel, and onto the
// team channel when its role may approve posts or is elevated.
func (s *Service) CanSubscribe(pr domain.Principal, channel string) bool {
	if s.policy.Authorize(pr, policy.NotificationsSubscribe) != nil {
		return false
	}
	switch {
	case channel == domain.UserChannel(pr.ID):
		return pr.ID != ""
	case channel == domain.ChannelMarketingHead:
		return s.policy.IsElevated(pr.Role) || s.policy.Authorize(pr, policy.PostApprove) == nil
	case strings.HasPrefix(channel, domain.UserChannel("")):
		return s.policy.IsElevated(pr.Role)
	default:
		return false
	}
}
