package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

var posts = table[domain.Post]{
	name:       "posts",
	kind:       "post",
	id:         func(p domain.Post) string { return p.ID },
	version:    func(p domain.Post) int64 { return p.Version },
	setVersion: func(p *domain.Post, v int64) { p.Version = v },
	columns: func(p domain.Post) map[string]any {
		return map[string]any{
			"status":           string(p.Status),
			"platform":         string(p.Platform),
			"created_by":       p.CreatedBy,
			"campaign_id":      nullString(p.CampaignID),
			"scheduled_at":     nullTime(p.ScheduledAt),
			"published_at":     nullTime(p.PublishedAt),
			"engagement_total": p.Engagement.Total(),
			"created_at":       p.CreatedAt.UTC(),
			"updated_at":       p.UpdatedAt.UTC(),
		}
	},
	sorts: map[string]string{
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
		"scheduledAt": "scheduled_at",
		"publishedAt": "published_at",
	},
}

var leads = table[domain.Lead]{
	name:       "leads",
	kind:       "lead",
	id:         func(l domain.Lead) string { return l.ID },
	version:    func(l domain.Lead) int64 { return l.Version },
	setVersion: func(l *domain.Lead, v int64) { l.Version = v },
	columns: func(l domain.Lead) map[string]any {
		return map[string]any{
			"email":       l.Email,
			"status":      string(l.Status),
			"source":      string(l.Source),
			"assigned_to": nullString(l.AssignedTo),
			"score":       l.Score,
			"created_by":  l.CreatedBy,
			"created_at":  l.CreatedAt.UTC(),
			"updated_at":  l.UpdatedAt.UTC(),
		}
	},
	sorts: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"score":     "score",
	},
}

var campaigns = table[domain.Campaign]{
	name:       "campaigns",
	kind:       "campaign",
	id:         func(c domain.Campaign) string { return c.ID },
	version:    func(c domain.Campaign) int64 { return c.Version },
	setVersion: func(c *domain.Campaign, v int64) { c.Version = v },
	columns: func(c domain.Campaign) map[string]any {
		return map[string]any{
			"name":       c.Name,
			"status":     string(c.Status),
			"type":       string(c.Type),
			"start_date": c.StartDate.UTC(),
			"created_by": c.CreatedBy,
			"created_at": c.CreatedAt.UTC(),
			"updated_at": c.UpdatedAt.UTC(),
		}
	},
	sorts: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
		"startDate": "start_date",
	},
}

var messages = table[domain.Message]{
	name:       "messages",
	kind:       "message",
	id:         func(m domain.Message) string { return m.ID },
	version:    func(m domain.Message) int64 { return m.Version },
	setVersion: func(m *domain.Message, v int64) { m.Version = v },
	columns: func(m domain.Message) map[string]any {
		return map[string]any{
			"email":      m.Email,
			"status":     string(m.Status),
			"lead_id":    nullString(m.LeadID),
			"created_at": m.CreatedAt.UTC(),
			"updated_at": m.UpdatedAt.UTC(),
		}
	},
	sorts: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
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
	return get(ctx, s.db, posts, sq.Eq{"id": id}, id)
}

func (s *Store) ListPosts(ctx context.Context, f domain.PostFilter, page pagination.Params) ([]domain.Post, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": string(f.Status)})
	}
	if f.Platform != "" {
		where = append(where, sq.Eq{"platform": string(f.Platform)})
	}
	if f.CreatedBy != "" {
		where = append(where, sq.Eq{"created_by": f.CreatedBy})
	}
	if f.CampaignID != "" {
		where = append(where, sq.Eq{"campaign_id": f.CampaignID})
	}
	return list(ctx, s.db, posts, where, page)
}

func (s *Store) UpdatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	out, err := update(ctx, s.db, posts, p)
	if err != nil {
		return domain.Post{}, fmt.Errorf("update post: %w", err)
	}
	return out, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return remove(ctx, s.db, posts.name, posts.kind, id)
}

func (s *Store) TopPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	b := psql.Select("doc").From(posts.name).
		Where(sq.Eq{"status": string(domain.PostPublished)}).
		OrderBy("engagement_total DESC", "id ASC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top posts: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("top posts: %w", err)
	}
	defer rows.Close()

	var out []domain.Post
	for rows.Next() {
		p, err := scanDoc[domain.Post](rows, "post")
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Leads

func (s *Store) CreateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	out, err := insert(ctx, s.db, leads, l)
	if isUniqueViolation(err) {
		return domain.Lead{}, fmt.Errorf("lead %s: %w", l.Email, domain.ErrDuplicateEmail)
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead %s: %w", l.ID, err)
	}
	return out, nil
}

func (s *Store) GetLead(ctx context.Context, id string) (domain.Lead, error) {
	return get(ctx, s.db, leads, sq.Eq{"id": id}, id)
}

func (s *Store) GetLeadByEmail(ctx context.Context, email string) (domain.Lead, error) {
	return get(ctx, s.db, leads, sq.Eq{"email": domain.NormalizeEmail(email)}, "by email")
}

func (s *Store) ListLeads(ctx context.Context, f domain.LeadFilter, page pagination.Params) ([]domain.Lead, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": string(f.Status)})
	}
	if f.Source != "" {
		where = append(where, sq.Eq{"source": string(f.Source)})
	}
	if f.AssignedTo != "" {
		where = append(where, sq.Eq{"assigned_to": f.AssignedTo})
	}
	if f.MinScore != nil {
		where = append(where, sq.GtOrEq{"score": *f.MinScore})
	}
	if f.Email != "" {
		where = append(where, sq.Eq{"email": domain.NormalizeEmail(f.Email)})
	}
	return list(ctx, s.db, leads, where, page)
}

func (s *Store) UpdateLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	out, err := update(ctx, s.db, leads, l)
	if isUniqueViolation(err) {
		return domain.Lead{}, fmt.Errorf("lead %s: %w", l.Email, domain.ErrDuplicateEmail)
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteLead(ctx context.Context, id string) error {
	return remove(ctx, s.db, leads.name, leads.kind, id)
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
	return get(ctx, s.db, campaigns, sq.Eq{"id": id}, id)
}

func (s *Store) ListCampaigns(ctx context.Context, f domain.CampaignFilter, page pagination.Params) ([]domain.Campaign, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": string(f.Status)})
	}
	if f.Type != "" {
		where = append(where, sq.Eq{"type": string(f.Type)})
	}
	if f.CreatedBy != "" {
		where = append(where, sq.Eq{"created_by": f.CreatedBy})
	}
	return list(ctx, s.db, campaigns, where, page)
}

func (s *Store) UpdateCampaign(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	out, err := update(ctx, s.db, campaigns, c)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("update campaign: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	return remove(ctx, s.db, campaigns.name, campaigns.kind, id)
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
	return get(ctx, s.db, messages, sq.Eq{"id": id}, id)
}

func (s *Store) ListMessages(ctx context.Context, f domain.MessageFilter, page pagination.Params) ([]domain.Message, int, error) {
	where := sq.And{}
	if f.Status != "" {
		where = append(where, sq.Eq{"status": string(f.Status)})
	}
	return list(ctx, s.db, messages, where, page)
}

func (s *Store) UpdateMessage(ctx context.Context, m domain.Message) (domain.Message, error) {
	out, err := update(ctx, s.db, messages, m)
	if err != nil {
		return domain.Message{}, fmt.Errorf("update message: %w", err)
	}
	return out, nil
}
