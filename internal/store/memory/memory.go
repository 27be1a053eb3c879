// Package memory is an in-process Store and EventStore used for local
// runs and tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

var (
	_ store.Store      = (*Store)(nil)
	_ store.EventStore = (*Store)(nil)
)

type Store struct {
	mu        sync.RWMutex
	posts     map[string]domain.Post
	leads     map[string]domain.Lead
	emails    map[string]string
	campaigns map[string]domain.Campaign
	messages  map[string]domain.Message
	events    map[string]domain.AnalyticsEvent
	eventLog  []string
}

func New() *Store {
	return &Store{
		posts:     make(map[string]domain.Post),
		leads:     make(map[string]domain.Lead),
		emails:    make(map[string]string),
		campaigns: make(map[string]domain.Campaign),
		messages:  make(map[string]domain.Message),
		events:    make(map[string]domain.AnalyticsEvent),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// Posts

func (s *Store) CreatePost(_ context.Context, p domain.Post) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[p.ID]; ok {
		return domain.Post{}, fmt.Errorf("post %s already exists", p.ID)
	}
	p.Version = 1
	s.posts[p.ID] = clonePost(p)
	return p, nil
}

func (s *Store) GetPost(_ context.Context, id string) (domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return domain.Post{}, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return clonePost(p), nil
}

func (s *Store) ListPosts(_ context.Context, f domain.PostFilter, page pagination.Params) ([]domain.Post, int, error) {
	s.mu.RLock()
	var out []domain.Post
	for _, p := range s.posts {
		if f.Matches(p) {
			out = append(out, clonePost(p))
		}
	}
	s.mu.RUnlock()

	sortItems(out, page, func(p domain.Post) string { return p.ID }, map[string]func(a, b domain.Post) int{
		"createdAt":   func(a, b domain.Post) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"updatedAt":   func(a, b domain.Post) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
		"scheduledAt": func(a, b domain.Post) int { return compareTimePtr(a.ScheduledAt, b.ScheduledAt) },
		"publishedAt": func(a, b domain.Post) int { return compareTimePtr(a.PublishedAt, b.PublishedAt) },
	})
	return window(out, page), len(out), nil
}

func (s *Store) UpdatePost(_ context.Context, p domain.Post) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.posts[p.ID]
	if !ok {
		return domain.Post{}, fmt.Errorf("post %s: %w", p.ID, domain.ErrNotFound)
	}
	if cur.Version != p.Version {
		return domain.Post{}, fmt.Errorf("post %s at version %d, have %d: %w", p.ID, cur.Version, p.Version, domain.ErrStaleVersion)
	}
	p.Version++
	s.posts[p.ID] = clonePost(p)
	return p, nil
}

func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) TopPosts(_ context.Context, limit int) ([]domain.Post, error) {
	s.mu.RLock()
	var out []domain.Post
	for _, p := range s.posts {
		if p.Status == domain.PostPublished {
			out = append(out, clonePost(p))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Post) int {
		if c := cmp.Compare(b.Engagement.Total(), a.Engagement.Total()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Leads

func (s *Store) CreateLead(_ context.Context, l domain.Lead) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[l.Email]; ok {
		return domain.Lead{}, fmt.Errorf("lead %s: %w", l.Email, domain.ErrDuplicateEmail)
	}
	if _, ok := s.leads[l.ID]; ok {
		return domain.Lead{}, fmt.Errorf("lead %s already exists", l.ID)
	}
	l.Version = 1
	s.leads[l.ID] = cloneLead(l)
	s.emails[l.Email] = l.ID
	return l, nil
}

func (s *Store) GetLead(_ context.Context, id string) (domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return domain.Lead{}, fmt.Errorf("lead %s: %w", id, domain.ErrNotFound)
	}
	return cloneLead(l), nil
}

func (s *Store) GetLeadByEmail(_ context.Context, email string) (domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[domain.NormalizeEmail(email)]
	if !ok {
		return domain.Lead{}, fmt.Errorf("lead with email: %w", domain.ErrNotFound)
	}
	return cloneLead(s.leads[id]), nil
}

func (s *Store) ListLeads(_ context.Context, f domain.LeadFilter, page pagination.Params) ([]domain.Lead, int, error) {
	s.mu.RLock()
	var out []domain.Lead
	for _, l := range s.leads {
		if f.Matches(l) {
			out = append(out, cloneLead(l))
		}
	}
	s.mu.RUnlock()

	sortItems(out, page, func(l domain.Lead) string { return l.ID }, map[string]func(a, b domain.Lead) int{
		"createdAt": func(a, b domain.Lead) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"updatedAt": func(a, b domain.Lead) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
		"score":     func(a, b domain.Lead) int { return cmp.Compare(a.Score, b.Score) },
	})
	return window(out, page), len(out), nil
}

func (s *Store) UpdateLead(_ context.Context, l domain.Lead) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.leads[l.ID]
	if !ok {
		return domain.Lead{}, fmt.Errorf("lead %s: %w", l.ID, domain.ErrNotFound)
	}
	if cur.Version != l.Version {
		return domain.Lead{}, fmt.Errorf("lead %s at version %d, have %d: %w", l.ID, cur.Version, l.Version, domain.ErrStaleVersion)
	}
	if owner, taken := s.emails[l.Email]; taken && owner != l.ID {
		return domain.Lead{}, fmt.Errorf("lead %s: %w", l.Email, domain.ErrDuplicateEmail)
	}
	delete(s.emails, cur.Email)
	s.emails[l.Email] = l.ID
	l.Version++
	s.leads[l.ID] = cloneLead(l)
	return l, nil
}

func (s *Store) DeleteLead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return fmt.Errorf("lead %s: %w", id, domain.ErrNotFound)
	}
	delete(s.emails, l.Email)
	delete(s.leads, id)
	return nil
}

// Campaigns

func (s *Store) CreateCampaign(_ context.Context, c domain.Campaign) (domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[c.ID]; ok {
		return domain.Campaign{}, fmt.Errorf("campaign %s already exists", c.ID)
	}
	c.Version = 1
	s.campaigns[c.ID] = cloneCampaign(c)
	return c, nil
}

func (s *Store) GetCampaign(_ context.Context, id string) (domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return domain.Campaign{}, fmt.Errorf("campaign %s: %w", id, domain.ErrNotFound)
	}
	return cloneCampaign(c), nil
}

func (s *Store) ListCampaigns(_ context.Context, f domain.CampaignFilter, page pagination.Params) ([]domain.Campaign, int, error) {
	s.mu.RLock()
	var out []domain.Campaign
	for _, c := range s.campaigns {
		if f.Matches(c) {
			out = append(out, cloneCampaign(c))
		}
	}
	s.mu.RUnlock()

	sortItems(out, page, func(c domain.Campaign) string { return c.ID }, map[string]func(a, b domain.Campaign) int{
		"createdAt": func(a, b domain.Campaign) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"updatedAt": func(a, b domain.Campaign) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
		"name":      func(a, b domain.Campaign) int { return cmp.Compare(a.Name, b.Name) },
		"startDate": func(a, b domain.Campaign) int { return a.StartDate.Compare(b.StartDate) },
	})
	return window(out, page), len(out), nil
}

func (s *Store) UpdateCampaign(_ context.Context, c domain.Campaign) (domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.campaigns[c.ID]
	if !ok {
		return domain.Campaign{}, fmt.Errorf("campaign %s: %w", c.ID, domain.ErrNotFound)
	}
	if cur.Version != c.Version {
		return domain.Campaign{}, fmt.Errorf("campaign %s at version %d, have %d: %w", c.ID, cur.Version, c.Version, domain.ErrStaleVersion)
	}
	c.Version++
	s.campaigns[c.ID] = cloneCampaign(c)
	return c, nil
}

func (s *Store) DeleteCampaign(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[id]; !ok {
		return fmt.Errorf("campaign %s: %w", id, domain.ErrNotFound)
	}
	delete(s.campaigns, id)
	return nil
}

// Messages

func (s *Store) CreateMessage(_ context.Context, m domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[m.ID]; ok {
		return domain.Message{}, fmt.Errorf("message %s already exists", m.ID)
	}
	m.Version = 1
	s.messages[m.ID] = m
	return m, nil
}

func (s *Store) GetMessage(_ context.Context, id string) (domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return domain.Message{}, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

func (s *Store) ListMessages(_ context.Context, f domain.MessageFilter, page pagination.Params) ([]domain.Message, int, error) {
	s.mu.RLock()
	var out []domain.Message
	for _, m := range s.messages {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	s.mu.RUnlock()

	sortItems(out, page, func(m domain.Message) string { return m.ID }, map[string]func(a, b domain.Message) int{
		"createdAt": func(a, b domain.Message) int { return a.CreatedAt.Compare(b.CreatedAt) },
		"updatedAt": func(a, b domain.Message) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	})
	return window(out, page), len(out), nil
}

func (s *Store) UpdateMessage(_ context.Context, m domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.messages[m.ID]
	if !ok {
		return domain.Message{}, fmt.Errorf("message %s: %w", m.ID, domain.ErrNotFound)
	}
	if cur.Version != m.Version {
		return domain.Message{}, fmt.Errorf("message %s at version %d, have %d: %w", m.ID, cur.Version, m.Version, domain.ErrStaleVersion)
	}
	m.Version++
	s.messages[m.ID] = m
	return m, nil
}

// Events

func (s *Store) InsertEvents(_ context.Context, events ...domain.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		if _, ok := s.events[e.ID]; ok {
			continue
		}
		s.events[e.ID] = e
		s.eventLog = append(s.eventLog, e.ID)
	}
	return nil
}

func (s *Store) AggregateEvents(_ context.Context, f domain.EventFilter, g domain.GroupBy) ([]domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[string]*domain.Group)
	var keys []string
	for _, id := range s.eventLog {
		e := s.events[id]
		if !f.Matches(e) {
			continue
		}
		var key string
		grp := domain.Group{}
		switch g.Dimension {
		case domain.ByTime:
			grp.Start = domain.BucketStart(e.Date, g.Granularity)
			key = grp.Start.Format(time.RFC3339)
		case domain.ByPlatform:
			grp.Platform = e.Platform
			key = string(e.Platform)
		}
		acc, ok := groups[key]
		if !ok {
			acc = &grp
			groups[key] = acc
			keys = append(keys, key)
		}
		acc.Metrics = acc.Metrics.Add(e.Metrics)
		acc.Count++
	}

	out := make([]domain.Group, 0, len(keys))
	for _, k := range keys {
		out = append(out, *groups[k])
	}
	if g.Dimension == domain.ByTime {
		slices.SortFunc(out, func(a, b domain.Group) int { return a.Start.Compare(b.Start) })
	}
	return out, nil
}

// EventCount returns the number of stored events
func (s *Store) EventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
