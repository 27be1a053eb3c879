package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Engagement counters only ever grow
type Engagement struct {
	Likes    int64 `json:"likes" bson:"likes"`
	Comments int64 `json:"comments" bson:"comments"`
	Shares   int64 `json:"shares" bson:"shares"`
	Views    int64 `json:"views" bson:"views"`
}

// Total is the sum used to rank posts, capped at math.MaxInt64
func (e Engagement) Total() int64 {
	total, _ := addCounter(e.Likes, e.Comments)
	total, _ = addCounter(total, e.Shares)
	total, _ = addCounter(total, e.Views)
	return total
}

// Add returns e with every counter of d added. Counters saturate at
// math.MaxInt64 so they never wrap negative.
func (e Engagement) Add(d Engagement) Engagement {
	out, _ := e.tryAdd(d)
	return out
}

// Overflows reports whether adding d would push any counter past
// math.MaxInt64
func (e Engagement) Overflows(d Engagement) bool {
	_, ok := e.tryAdd(d)
	return !ok
}

func (e Engagement) tryAdd(d Engagement) (Engagement, bool) {
	likes, ok1 := addCounter(e.Likes, d.Likes)
	comments, ok2 := addCounter(e.Comments, d.Comments)
	shares, ok3 := addCounter(e.Shares, d.Shares)
	views, ok4 := addCounter(e.Views, d.Views)
	return Engagement{Likes: likes, Comments: comments, Shares: shares, Views: views}, ok1 && ok2 && ok3 && ok4
}

// addCounter adds two non-negative counters, saturating on overflow
func addCounter(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64, false
	}
	return a + b, true
}

// Negative reports whether any counter is below zero
func (e Engagement) Negative() bool {
	return e.Likes < 0 || e.Comments < 0 || e.Shares < 0 || e.Views < 0
}

// PostMetadata holds the externally computed content scores
type PostMetadata struct {
	SEOScore         float64 `json:"seoScore" bson:"seoScore"`
	ReadabilityScore float64 `json:"readabilityScore" bson:"readabilityScore"`
	SentimentScore   float64 `json:"sentimentScore" bson:"sentimentScore"`
}

// Validate checks every score against its documented range
func (m PostMetadata) Validate() error {
	if m.SEOScore < 0 || m.SEOScore > 100 {
		return fmt.Errorf("%w: seoScore %v not in [0,100]", ErrOutOfRange, m.SEOScore)
	}
	if m.ReadabilityScore < 0 || m.ReadabilityScore > 100 {
		return fmt.Errorf("%w: readabilityScore %v not in [0,100]", ErrOutOfRange, m.ReadabilityScore)
	}
	if m.SentimentScore < -1 || m.SentimentScore > 1 {
		return fmt.Errorf("%w: sentimentScore %v not in [-1,1]", ErrOutOfRange, m.SentimentScore)
	}
	return nil
}

type Post struct {
	ID            string       `json:"id" bson:"_id"`
	Title         string       `json:"title" bson:"title"`
	Content       string       `json:"content" bson:"content"`
	Platform      Platform     `json:"platform" bson:"platform"`
	Status        PostStatus   `json:"status" bson:"status"`
	Hashtags      []string     `json:"hashtags" bson:"hashtags"`
	MediaURLs     []string     `json:"mediaUrls" bson:"mediaUrls"`
	CampaignID    string       `json:"campaignId,omitempty" bson:"campaignId,omitempty"`
	ScheduledAt   *time.Time   `json:"scheduledAt,omitempty" bson:"scheduledAt,omitempty"`
	PublishedAt   *time.Time   `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	CreatedBy     string       `json:"createdBy" bson:"createdBy"`
	ApprovedBy    string       `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	FailureReason string       `json:"failureReason,omitempty" bson:"failureReason,omitempty"`
	Engagement    Engagement   `json:"engagement" bson:"engagement"`
	Metadata      PostMetadata `json:"metadata" bson:"metadata"`
	Version       int64        `json:"version" bson:"version"`
	CreatedAt     time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// NewPost is the caller-supplied part of a post at creation time
type NewPost struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Platform    Platform   `json:"platform"`
	Hashtags    []string   `json:"hashtags"`
	MediaURLs   []string   `json:"mediaUrls"`
	CampaignID  string     `json:"campaignId"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

func (n NewPost) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(n.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if _, err := ParsePlatform(string(n.Platform)); err != nil {
		return err
	}
	return nil
}

// PostPatch carries direct field edits; nil fields are left untouched
type PostPatch struct {
	Title       *string    `json:"title"`
	Content     *string    `json:"content"`
	Platform    *Platform  `json:"platform"`
	Hashtags    *[]string  `json:"hashtags"`
	MediaURLs   *[]string  `json:"mediaUrls"`
	CampaignID  *string    `json:"campaignId"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

func (p PostPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return fmt.Errorf("%w: content cannot be empty", ErrInvalidInput)
	}
	if p.Platform != nil {
		if _, err := ParsePlatform(string(*p.Platform)); err != nil {
			return err
		}
	}
	return nil
}

// PostFilter narrows post listings; zero fields match everything
type PostFilter struct {
	Status     PostStatus
	Platform   Platform
	CreatedBy  string
	CampaignID string
}

func (f PostFilter) Matches(p Post) bool {
	return (f.Status == "" || p.Status == f.Status) &&
		(f.Platform == "" || p.Platform == f.Platform) &&
		(f.CreatedBy == "" || p.CreatedBy == f.CreatedBy) &&
		(f.CampaignID == "" || p.CampaignID == f.CampaignID)
}
