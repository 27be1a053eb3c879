package lifecycle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
)

func (e *Engine) CreateCampaign(n domain.NewCampaign, creator string) (domain.Campaign, error) {
	now := e.Now()
	c := domain.Campaign{
		ID:             e.NewID(),
		Name:           strings.TrimSpace(n.Name),
		Description:    n.Description,
		Type:           n.Type,
		Status:         domain.CampaignDraft,
		Budget:         n.Budget,
		StartDate:      n.StartDate.UTC(),
		TargetAudience: n.TargetAudience,
		PostIDs:        []string{},
		LeadIDs:        []string{},
		CreatedBy:      creator,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t, err := domain.ParseCampaignType(string(n.Type)); err == nil {
		c.Type = t
	}
	if n.EndDate != nil {
		end := n.EndDate.UTC()
		c.EndDate = &end
	}
	if err := c.Validate(); err != nil {
		return domain.Campaign{}, err
	}
	return c, nil
}

// UpdateCampaignFields applies the patch and re-validates the result.
// Status is an unconstrained write between the four values.
func (e *Engine) UpdateCampaignFields(c domain.Campaign, patch domain.CampaignPatch) (domain.Campaign, error) {
	orig := c
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Type != nil {
		t, err := domain.ParseCampaignType(string(*patch.Type))
		if err != nil {
			return orig, err
		}
		c.Type = t
	}
	if patch.Status != nil {
		s, err := domain.ParseCampaignStatus(string(*patch.Status))
		if err != nil {
			return orig, err
		}
		c.Status = s
	}
	if patch.Budget != nil {
		c.Budget = *patch.Budget
	}
	if patch.Spent != nil {
		c.Spent = *patch.Spent
	}
	if patch.StartDate != nil {
		c.StartDate = patch.StartDate.UTC()
	}
	if patch.EndDate != nil {
		end := patch.EndDate.UTC()
		c.EndDate = &end
	}
	if patch.TargetAudience != nil {
		c.TargetAudience = *patch.TargetAudience
	}
	if err := c.Validate(); err != nil {
		return orig, err
	}
	c.UpdatedAt = e.Now()
	return c, nil
}

// AddPost appends postID; the caller checks the post exists
func (e *Engine) AddPost(c domain.Campaign, postID string) (domain.Campaign, error) {
	if c.HasPost(postID) {
		return c, fmt.Errorf("%w: post %s in campaign %s", domain.ErrAlreadyMember, postID, c.ID)
	}
	c.PostIDs = append(slices.Clone(c.PostIDs), postID)
	c.UpdatedAt = e.Now()
	return c, nil
}

func (e *Engine) RemovePost(c domain.Campaign, postID string) (domain.Campaign, error) {
	ids, ok := domain.RemoveID(c.PostIDs, postID)
	if !ok {
		return c, fmt.Errorf("%w: post %s not in campaign %s", domain.ErrNotFound, postID, c.ID)
	}
	c.PostIDs = ids
	c.UpdatedAt = e.Now()
	return c, nil
}

// AddLead appends leadID; the caller checks the lead exists
func (e *Engine) AddLead(c domain.Campaign, leadID string) (domain.Campaign, error) {
	if c.HasLead(leadID) {
		return c, fmt.Errorf("%w: lead %s in campaign %s", domain.ErrAlreadyMember, leadID, c.ID)
	}
	c.LeadIDs = append(slices.Clone(c.LeadIDs), leadID)
	c.UpdatedAt = e.Now()
	return c, nil
}

func (e *Engine) RemoveLead(c domain.Campaign, leadID string) (domain.Campaign, error) {
	ids, ok := domain.RemoveID(c.LeadIDs, leadID)
	if !ok {
		return c, fmt.Errorf("%w: lead %s not in campaign %s", domain.ErrNotFound, leadID, c.ID)
	}
	c.LeadIDs = ids
	c.UpdatedAt = e.Now()
	return c, nil
}

// UpdateMetrics merges the allow-listed performance keys
func (e *Engine) UpdateMetrics(c domain.Campaign, partial map[string]any) (domain.Campaign, error) {
	m, err := c.PerformanceMetrics.Merge(partial)
	if err != nil {
		return c, err
	}
	c.PerformanceMetrics = m
	c.UpdatedAt = e.Now()
	return c, nil
}
