package lifecycle

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
)

// CreatePost builds a new post owned by creator. A post created with a
// schedule starts SCHEDULED, otherwise DRAFT.
func (e *Engine) CreatePost(n domain.NewPost, creator string) (domain.Post, error) {
	if err := n.Validate(); err != nil {
		return domain.Post{}, err
	}
	platform, _ := domain.ParsePlatform(string(n.Platform))
	now := e.Now()
	p := domain.Post{
		ID:         e.NewID(),
		Title:      strings.TrimSpace(n.Title),
		Content:    n.Content,
		Platform:   platform,
		Status:     domain.PostDraft,
		Hashtags:   nonNil(n.Hashtags),
		MediaURLs:  nonNil(n.MediaURLs),
		CampaignID: n.CampaignID,
		CreatedBy:  creator,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if n.ScheduledAt != nil {
		at := n.ScheduledAt.UTC()
		p.ScheduledAt = &at
		p.Status = domain.PostScheduled
	}
	return p, nil
}

// SubmitForApproval moves a DRAFT post to PENDING_APPROVAL and asks the
// marketing head to review it.
func (e *Engine) SubmitForApproval(p domain.Post) (domain.Post, []domain.Notification, error) {
	if p.Status != domain.PostDraft {
		return p, nil, invalidTransition(p.Status, domain.PostPendingApproval)
	}
	now := e.Now()
	p.Status = domain.PostPendingApproval
	p.UpdatedAt = now
	n := domain.Notification{
		Channel:   domain.ChannelMarketingHead,
		Type:      domain.NotifyPostSubmitted,
		Payload:   postPayload(p),
		Timestamp: now,
	}
	return p, []domain.Notification{n}, nil
}

// Approve schedules a pending post and records the single approver
func (e *Engine) Approve(p domain.Post, approver string) (domain.Post, error) {
	if p.Status != domain.PostPendingApproval {
		return p, invalidTransition(p.Status, domain.PostScheduled)
	}
	p.Status = domain.PostScheduled
	p.ApprovedBy = approver
	p.UpdatedAt = e.Now()
	return p, nil
}

// Publish marks a scheduled post live and tells its creator
func (e *Engine) Publish(p domain.Post) (domain.Post, []domain.Notification, error) {
	if p.Status != domain.PostScheduled {
		return p, nil, invalidTransition(p.Status, domain.PostPublished)
	}
	now := e.Now()
	p.Status = domain.PostPublished
	p.PublishedAt = &now
	p.UpdatedAt = now
	n := domain.Notification{
		Channel:   domain.UserChannel(p.CreatedBy),
		Type:      domain.NotifyPostPublished,
		Payload:   postPayload(p),
		Timestamp: now,
	}
	return p, []domain.Notification{n}, nil
}

// Fail moves a non-terminal post to FAILED with a reason
func (e *Engine) Fail(p domain.Post, reason string) (domain.Post, error) {
	if p.Status.Terminal() {
		return p, invalidTransition(p.Status, domain.PostFailed)
	}
	p.Status = domain.PostFailed
	p.FailureReason = strings.TrimSpace(reason)
	p.UpdatedAt = e.Now()
	return p, nil
}

// Archive moves a non-terminal post to ARCHIVED
func (e *Engine) Archive(p domain.Post) (domain.Post, error) {
	if p.Status.Terminal() {
		return p, invalidTransition(p.Status, domain.PostArchived)
	}
	p.Status = domain.PostArchived
	p.UpdatedAt = e.Now()
	return p, nil
}

// UpdatePostFields applies a direct edit. Setting scheduledAt forces the
// post into SCHEDULED.
func (e *Engine) UpdatePostFields(p domain.Post, patch domain.PostPatch) (domain.Post, error) {
	if !p.Status.Editable() {
		return p, fmt.Errorf("%w: post %s is %s", domain.ErrImmutable, p.ID, p.Status)
	}
	if err := patch.Validate(); err != nil {
		return p, err
	}
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Platform != nil {
		p.Platform, _ = domain.ParsePlatform(string(*patch.Platform))
	}
	if patch.Hashtags != nil {
		p.Hashtags = nonNil(*patch.Hashtags)
	}
	if patch.MediaURLs != nil {
		p.MediaURLs = nonNil(*patch.MediaURLs)
	}
	if patch.CampaignID != nil {
		p.CampaignID = *patch.CampaignID
	}
	if patch.ScheduledAt != nil {
		at := patch.ScheduledAt.UTC()
		p.ScheduledAt = &at
		p.Status = domain.PostScheduled
	}
	p.UpdatedAt = e.Now()
	return p, nil
}

// RecordEngagement adds non-negative deltas in any status
func (e *Engine) RecordEngagement(p domain.Post, delta domain.Engagement) (domain.Post, error) {
	if delta.Negative() {
		return p, fmt.Errorf("%w: engagement deltas must be >= 0", domain.ErrOutOfRange)
	}
	if p.Engagement.Overflows(delta) {
		return p, fmt.Errorf("%w: engagement counter would exceed %d", domain.ErrOutOfRange, int64(math.MaxInt64))
	}
	p.Engagement = p.Engagement.Add(delta)
	p.UpdatedAt = e.Now()
	return p, nil
}

// UpdateMetadata replaces the content scores in any status
func (e *Engine) UpdateMetadata(p domain.Post, m domain.PostMetadata) (domain.Post, error) {
	if err := m.Validate(); err != nil {
		return p, err
	}
	p.Metadata = m
	p.UpdatedAt = e.Now()
	return p, nil
}

func postPayload(p domain.Post) map[string]any {
	return map[string]any{
		"postId":    p.ID,
		"title":     p.Title,
		"platform":  p.Platform,
		"status":    p.Status,
		"createdBy": p.CreatedBy,
	}
}

func invalidTransition[S ~string](from, to S) error {
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
