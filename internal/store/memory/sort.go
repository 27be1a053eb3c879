package memory

import (
	"cmp"
	"slices"
	"time"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

// sortItems orders items by page.SortBy (falling back to the first
// comparator when the field is unknown) with id as the tie-breaker.
func sortItems[T any](items []T, page pagination.Params, id func(T) string, fields map[string]func(a, b T) int) {
	less, ok := fields[page.SortBy]
	if !ok {
		less = fields["createdAt"]
	}
	slices.SortStableFunc(items, func(a, b T) int {
		c := less(a, b)
		if c == 0 {
			c = cmp.Compare(id(a), id(b))
		}
		if page.SortDesc {
			return -c
		}
		return c
	})
}

func window[T any](items []T, page pagination.Params) []T {
	lo, hi := page.Window(len(items))
	return items[lo:hi]
}

// compareTimePtr sorts nil before any time
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func clonePost(p domain.Post) domain.Post {
	p.Hashtags = slices.Clone(p.Hashtags)
	p.MediaURLs = slices.Clone(p.MediaURLs)
	p.ScheduledAt = cloneTime(p.ScheduledAt)
	p.PublishedAt = cloneTime(p.PublishedAt)
	return p
}

func cloneLead(l domain.Lead) domain.Lead {
	l.Activities = slices.Clone(l.Activities)
	l.Tags = slices.Clone(l.Tags)
	l.LastContactedAt = cloneTime(l.LastContactedAt)
	return l
}

func cloneCampaign(c domain.Campaign) domain.Campaign {
	c.PostIDs = slices.Clone(c.PostIDs)
	c.LeadIDs = slices.Clone(c.LeadIDs)
	c.EndDate = cloneTime(c.EndDate)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
