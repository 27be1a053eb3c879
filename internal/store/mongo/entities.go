package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

var (
	posts = collection[domain.Post]{
		name: postsColl, kind: "post",
		id:         func(p domain.Post) string { return p.ID },
		version:    func(p domain.Post) int64 { return p.Version },
		setVersion: func(p *domain.Post, v int64) { p.Version = v },
		sorts:      store.PostSortFields,
	}
	leads = collection[domain.Lead]{
		name: leadsColl, kind: "lead",
		id:         func(l domain.Lead) string { return l.ID },
		version:    func(l domain.Lead) int64 { return l.Version },
		setVersion: func(l *domain.Lead, v int64) { l.Version = v },
		sorts:      store.LeadSortFields,
	}
	campaigns = collection[domain.Campaign]{
		name: campaignsColl, kind: "campaign",
		id:         func(c domain.Campaign) string { return c.ID },
		version:    func(c domain.Campaign) int64 { return c.Version },
		setVersion: func(c *domain.Campaign, v int64) { c.Version = v },
		sorts:      store.CampaignSortFields,
	}
	messages = collection[domain.Message]{
		name: messagesColl, kind: "message",
		id:         func(m domain.Message) string { return m.ID },
		version:    func(m domain.Message) int64 { return m.Version },
		setVersion: func(m *domain.Message, v int64) { m.Version = v },
		sorts:      store.MessageSortFields,
	}
)

func byID(id string) bson.D { return bson.D{{Key: "_id", Value: id}} }

func postFilter(f domain.PostFilter) bson.D {
	d := bson.D{}
	if f.Status != "" {
		d = append(d, bson.E{Key: "status", Value: f.Status})
	}
	if f.Platform != "" {
		d = append(d, bson.E{Key: "platform", Value: f.Platform})
	}
	if f.CreatedBy != "" {
		d = append(d, bson.E{Key: "createdBy", Value: f.CreatedBy})
	}
	if f.CampaignID != "" {
		d = append(d, bson.E{Key: "campaignId", Value: f.CampaignID})
	}
	return d
}

func leadFilter(f domain.LeadFilter) bson.D {
	d := bson.D{}
	if f.Status != "" {
		d = append(d, bson.E{Key: "status", Value: f.Status})
	}
	if f.Source != "" {
		d = append(d, bson.E{Key: "source", Value: f.Source})
	}
	if f.AssignedTo != "" {
		d = append(d, bson.E{Key: "assignedTo", Value: f.AssignedTo})
	}
	if f.MinScore != nil {
		d = append(d, bson.E{Key: "score", Value: bson.D{{Key: "$gte", Value: *f.MinScore}}})
	}
	if f.Email != "" {
		d = append(d, bson.E{Key: "email", Value: domain.NormalizeEmail(f.Email)})
	}
	return d
}

func campaignFilter(f domain.CampaignFilter) bson.D {
	d := bson.D{}
	if f.Status != "" {
		d = append(d, bson.E{Key: "status", Value: f.Status})
	}
	if f.Type != "" {
		d = append(d, bson.E{Key: "type", Value: f.Type})
	}
	if f.CreatedBy != "" {
		d = append(d, bson.E{Key: "createdBy", Value: f.CreatedBy})
	}
	return d
}

// topPostsPipeline ranks published posts by the sum of their counters
func topPostsPipeline(limit int) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: domain.PostPublished}}}},
		{{Key: "$addFields", Value: bson.D{{Key: "engagementTotal", Value: bson.D{{Key: "$add", Value: bson.A{
			"$engagement.likes", "$engagement.comments", "$engagement.shares", "$engagement.views",
		}}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "engagementTotal", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		p = append(p, bson.D{{Key: "$limit", Value: limit}})
	}
	return append(p, bson.D{{Key: "$project", Value: bson.D{{Key: "engagementTotal", Value: 0}}}})
}

// Posts

func (s *Store) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	out, err := insert(ctx, s.db, posts, p)
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post %s: %w", p.ID, err)
	}
	return out, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (domain.Post, error) {
	return findOne(ctx, s.db, posts, byID(id), id)
}

func (s *Store) ListPosts(ctx context.Context, f domain.PostFilter, page pagination.Params) ([]domain.Post, int, error) {
	return find(ctx, s.db, posts, postFilter(f), page)
}

func (s *Store) UpdatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	out, err := replace(ctx, s.db, posts, p)
	if err != nil {
		return domain.Post{}, fmt.Errorf("update post: %w", err)
	}
	return out, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return remove(ctx, s.db, postsColl, "post", id)
}

func (s *Store) TopPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	cur, err := s.db.Collection(postsColl).Aggregate(ctx, topPostsPipeline(limit))
	if err != nil {
		return nil, fmt.Errorf("top posts: %w", err)
	}
	var out []domain.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode top posts: %w", err)
	}
	return out, nil
}

// Leads

func (s *Store) CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	out, err := insert(ctx, s.db, leads, l)
	if isDuplicate(err) {
		return domain.Lead{}, fmt.Errorf("lead %s: %w", l.Email, domain.ErrDuplicateEmail)
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead %s: %w", l.ID, err)
	}
	return out, nil
}

func (s *Store) GetLead(ctx context.Context, id string) (domain.Lead, error) {
	return findOne(ctx, s.db, leads, byID(id), id)
}

func (s *Store) GetLeadByEmail(ctx context.Context, email string) (domain.Lead, error) {
	return findOne(ctx, s.db, leads, bson.D{{Key: "email", Value: domain.NormalizeEmail(email)}}, "by email")
}

func (s *Store) ListLeads(ctx context.Context, f domain.LeadFilter, page pagination.Params) ([]domain.Lead, int, error) {
	return find(ctx, s.db, leads, leadFilter(f), page)
}

func (s *Store) UpdateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	out, err := replace(ctx, s.db, leads, l)
	if isDuplicate(err) {
		return domain.Lead{}, fmt.Errorf("lead %s: %w", l.Email, domain.ErrDuplicateEmail)
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteLead(ctx context.Context, id string) error {
	return remove(ctx, s.db, leadsColl, "lead", id)
}

// Campaigns

func (s *Store) CreateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	out, err := insert(ctx, s.db, campaigns, c)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("create campaign %s: %w", c.ID, err)
	}
	return out, nil
}

func (s *Store) GetCampaign(ctx context.Context, id string) (domain.Campaign, error) {
	return findOne(ctx, s.db, campaigns, byID(id), id)
}

func (s *Store) ListCampaigns(ctx context.Context, f domain.CampaignFilter, page pagination.Params) ([]domain.Campaign, int, error) {
	return find(ctx, s.db, campaigns, campaignFilter(f), page)
}

func (s *Store) UpdateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	out, err := replace(ctx, s.db, campaigns, c)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("update campaign: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	return remove(ctx, s.db, campaignsColl, "campaign", id)
}

// Messages

func (s *Store) CreateMessage(ctx context.Context, m domain.Message) (domain.Message, error) {
	out, err := insert(ctx, s.db, messages, m)
	if err != nil {
		return domain.Message{}, fmt.Errorf("create message %s: %w", m.ID, err)
	}
	return out, nil
}

func (s *Store) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	return findOne(ctx, s.db, messages, byID(id), id)
}

func (s *Store) ListMessages(ctx context.Context, f domain.MessageFilter, page pagination.Params) ([]domain.Message, int, error) {
	d := bson.D{}
	if f.Status != "" {
		d = append(d, bson.E{Key: "status", Value: f.Status})
	}
	return find(ctx, s.db, messages, d, page)
}

func (s *Store) UpdateMessage(ctx context.Context, m domain.Message) (domain.Message, error) {
	out, err := replace(ctx, s.db, messages, m)
	if err != nil {
		return domain.Message{}, fmt.Errorf("update message: %w", err)
	}
	return out, nil
}
