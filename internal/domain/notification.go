package domain

import "time"

// Notification channels
const (
	ChannelMarketingHead = "marketing-head"
	userChannelPrefix    = "user:"
)

// Notification types
const (
	NotifyPostSubmitted = "post.submitted"
	NotifyPostPublished = "post.published"
	NotifyMessageNew    = "message.received"
)

// UserChannel is the per-user channel a creator listens on
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// Notification is a fire-and-forget message to a named channel
type Notification struct {
	Channel   string         `json:"channel"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}
