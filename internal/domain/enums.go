package domain

import (
	"fmt"
	"strings"
)

// Platform is a social network a post or event belongs to
type Platform string

const (
	PlatformFacebook  Platform = "FACEBOOK"
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTwitter   Platform = "TWITTER"
	PlatformLinkedIn  Platform = "LINKEDIN"
	PlatformYouTube   Platform = "YOUTUBE"
	PlatformTikTok    Platform = "TIKTOK"
)

// Platforms lists every supported platform in display order
var Platforms = []Platform{PlatformFacebook, PlatformInstagram, PlatformTwitter, PlatformLinkedIn, PlatformYouTube, PlatformTikTok}

// PostStatus is a state in the content workflow
type PostStatus string

const (
	PostDraft           PostStatus = "DRAFT"
	PostScheduled       PostStatus = "SCHEDULED"
	PostPendingApproval PostStatus = "PENDING_APPROVAL"
	PostPublished       PostStatus = "PUBLISHED"
	PostFailed          PostStatus = "FAILED"
	PostArchived        PostStatus = "ARCHIVED"
)

var PostStatuses = []PostStatus{PostDraft, PostScheduled, PostPendingApproval, PostPublished, PostFailed, PostArchived}

// Editable reports whether direct field edits are allowed in this status
func (s PostStatus) Editable() bool {
	return s == PostDraft || s == PostScheduled || s == PostPendingApproval
}

// Terminal reports whether no further workflow transitions are possible
func (s PostStatus) Terminal() bool {
	return s == PostPublished || s == PostFailed || s == PostArchived
}

// LeadStatus is a funnel position. No ordering is enforced between them.
type LeadStatus string

const (
	LeadNew         LeadStatus = "NEW"
	LeadQualified   LeadStatus = "QUALIFIED"
	LeadContacted   LeadStatus = "CONTACTED"
	LeadEngaged     LeadStatus = "ENGAGED"
	LeadOpportunity LeadStatus = "OPPORTUNITY"
	LeadConverted   LeadStatus = "CONVERTED"
	LeadLost        LeadStatus = "LOST"
)

var LeadStatuses = []LeadStatus{LeadNew, LeadQualified, LeadContacted, LeadEngaged, LeadOpportunity, LeadConverted, LeadLost}

// MarksContact reports whether entering this status counts as contacting the lead
func (s LeadStatus) MarksContact() bool {
	return s == LeadContacted || s == LeadEngaged
}

// LeadSource records where a lead came from
type LeadSource string

const (
	SourceWebsite       LeadSource = "WEBSITE"
	SourceSocialMedia   LeadSource = "SOCIAL_MEDIA"
	SourceEmail         LeadSource = "EMAIL"
	SourceReferral      LeadSource = "REFERRAL"
	SourceAdvertisement LeadSource = "ADVERTISEMENT"
	SourceEvent         LeadSource = "EVENT"
	SourceOther         LeadSource = "OTHER"
)

var LeadSources = []LeadSource{SourceWebsite, SourceSocialMedia, SourceEmail, SourceReferral, SourceAdvertisement, SourceEvent, SourceOther}

// ActivityType classifies a lead timeline entry
type ActivityType string

const (
	ActivityNote    ActivityType = "NOTE"
	ActivityCall    ActivityType = "CALL"
	ActivityEmail   ActivityType = "EMAIL"
	ActivityMeeting ActivityType = "MEETING"
	ActivityTask    ActivityType = "TASK"
)

var ActivityTypes = []ActivityType{ActivityNote, ActivityCall, ActivityEmail, ActivityMeeting, ActivityTask}

// MarksContact reports whether this activity counts as contacting the lead
func (t ActivityType) MarksContact() bool {
	return t == ActivityCall || t == ActivityEmail || t == ActivityMeeting
}

type CampaignType string

const (
	CampaignSocialMedia CampaignType = "SOCIAL_MEDIA"
	CampaignEmail       CampaignType = "EMAIL"
	CampaignPPC         CampaignType = "PPC"
	CampaignContent     CampaignType = "CONTENT"
	CampaignSEO         CampaignType = "SEO"
	CampaignEvent       CampaignType = "EVENT"
	CampaignOther       CampaignType = "OTHER"
)

var CampaignTypes = []CampaignType{CampaignSocialMedia, CampaignEmail, CampaignPPC, CampaignContent, CampaignSEO, CampaignEvent, CampaignOther}

// CampaignStatus may move freely between any of its values
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "DRAFT"
	CampaignActive    CampaignStatus = "ACTIVE"
	CampaignPaused    CampaignStatus = "PAUSED"
	CampaignCompleted CampaignStatus = "COMPLETED"
)

var CampaignStatuses = []CampaignStatus{CampaignDraft, CampaignActive, CampaignPaused, CampaignCompleted}

type MessageStatus string

const (
	MessageNew      MessageStatus = "NEW"
	MessageRead     MessageStatus = "READ"
	MessageArchived MessageStatus = "ARCHIVED"
)

var MessageStatuses = []MessageStatus{MessageNew, MessageRead, MessageArchived}

// Role is the principal's organisational role as asserted by AuthN
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleMarketingHead    Role = "marketing_head"
	RoleMarketingManager Role = "marketing_manager"
	RoleContentCreator   Role = "content_creator"
	RoleSalesRep         Role = "sales_rep"
	RoleAnalyst          Role = "analyst"
)

var Roles = []Role{RoleAdmin, RoleMarketingHead, RoleMarketingManager, RoleContentCreator, RoleSalesRep, RoleAnalyst}

// Granularity is the calendar unit used to bucket time series
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

var Granularities = []Granularity{GranularityHour, GranularityDay, GranularityWeek, GranularityMonth}

// parseEnum matches raw case-insensitively against the closed set.
func parseEnum[T ~string](kind, raw string, set []T) (T, error) {
	for _, v := range set {
		if strings.EqualFold(string(v), strings.TrimSpace(raw)) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: unknown %s %q", ErrInvalidInput, kind, raw)
}

func ParsePlatform(s string) (Platform, error)     { return parseEnum("platform", s, Platforms) }
func ParsePostStatus(s string) (PostStatus, error) { return parseEnum("post status", s, PostStatuses) }
func ParseLeadStatus(s string) (LeadStatus, error) { return parseEnum("lead status", s, LeadStatuses) }
func ParseLeadSource(s string) (LeadSource, error) { return parseEnum("lead source", s, LeadSources) }
func ParseActivityType(s string) (ActivityType, error) {
	return parseEnum("activity type", s, ActivityTypes)
}
func ParseCampaignType(s string) (CampaignType, error) {
	return parseEnum("campaign type", s, CampaignTypes)
}
func ParseCampaignStatus(s string) (CampaignStatus, error) {
	return parseEnum("campaign status", s, CampaignStatuses)
}
func ParseMessageStatus(s string) (MessageStatus, error) {
	return parseEnum("message status", s, MessageStatuses)
}
func ParseRole(s string) (Role, error) { return parseEnum("role", s, Roles) }

// ParseGranularity also accepts the adverb forms "hourly", "daily", "weekly" and "monthly".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hourly":
		return GranularityHour, nil
	case "", "daily":
		return GranularityDay, nil
	case "weekly":
		return GranularityWeek, nil
	case "monthly":
		return GranularityMonth, nil
	}
	return parseEnum("granularity", s, Granularities)
}
