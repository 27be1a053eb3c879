// Package store defines the persistence contracts for entities and
// analytics events. Updates are optimistic: the caller passes the entity
// as last read and the store rejects it with domain.ErrStaleVersion when
// another write landed in between.
package store

import (
	"context"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

// Sortable fields per entity. The first entry is the default.
var (
	PostSortFields     = []string{"createdAt", "updatedAt", "scheduledAt", "publishedAt"}
	LeadSortFields     = []string{"createdAt", "updatedAt", "score"}
	CampaignSortFields = []string{"createdAt", "updatedAt", "name", "startDate"}
	MessageSortFields  = []string{"createdAt", "updatedAt"}
)

type PostStore interface {
	CreatePost(ctx context.Context, p domain.Post) (domain.Post, error)
	GetPost(ctx context.Context, id string) (domain.Post, error)
	ListPosts(ctx context.Context, f domain.PostFilter, page pagination.Params) ([]domain.Post, int, error)
	UpdatePost(ctx context.Context, p domain.Post) (domain.Post, error)
	DeletePost(ctx context.Context, id string) error
	// TopPosts returns published posts by total engagement, highest first
	TopPosts(ctx context.Context, limit int) ([]domain.Post, error)
}

type LeadStore interface {
	// CreateLead fails with domain.ErrDuplicateEmail when the email is taken
	CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error)
	GetLead(ctx context.Context, id string) (domain.Lead, error)
	GetLeadByEmail(ctx context.Context, email string) (domain.Lead, error)
	ListLeads(ctx context.Context, f domain.LeadFilter, page pagination.Params) ([]domain.Lead, int, error)
	UpdateLead(ctx context.Context, l domain.Lead) (domain.Lead, error)
	DeleteLead(ctx context.Context, id string) error
}

type CampaignStore interface {
	CreateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error)
	GetCampaign(ctx context.Context, id string) (domain.Campaign, error)
	ListCampaigns(ctx context.Context, f domain.CampaignFilter, page pagination.Params) ([]domain.Campaign, int, error)
	UpdateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error
}

type MessageStore interface {
	CreateMessage(ctx context.Context, m domain.Message) (domain.Message, error)
	GetMessage(ctx context.Context, id string) (domain.Message, error)
	ListMessages(ctx context.Context, f domain.MessageFilter, page pagination.Params) ([]domain.Message, int, error)
	UpdateMessage(ctx context.Context, m domain.Message) (domain.Message, error)
}

// EventStore holds immutable analytics records. Inserting an id that
// already exists is a no-op.
type EventStore interface {
	InsertEvents(ctx context.Context, events ...domain.AnalyticsEvent) error
	// AggregateEvents sums metrics over matching events grouped by g.
	// ByTime groups come back ascending by start, ByPlatform groups in
	// any order, ByNone as at most one group.
	AggregateEvents(ctx context.Context, f domain.EventFilter, g domain.GroupBy) ([]domain.Group, error)
	Ping(ctx context.Context) error
}

// Store is the entity document store
type Store interface {
	PostStore
	LeadStore
	CampaignStore
	MessageStore
	Ping(ctx context.Context) error
	Close() error
}
