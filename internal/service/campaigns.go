package service

import (
	"context"
	"fmt"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/policy"
	"github.com/ganeshsabale-99/DMP-Project/internal/rollup"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

func (s *Service) CreateCampaign(ctx context.Context, pr domain.Principal, n domain.NewCampaign) (domain.Campaign, error) {
	if err := s.policy.Authorize(pr, policy.CampaignCreate); err != nil {
		return domain.Campaign{}, s.done("campaign", policy.CampaignCreate, pr, "", err)
	}
	c, err := s.engine.CreateCampaign(n, pr.ID)
	if err != nil {
		return domain.Campaign{}, s.done("campaign", policy.CampaignCreate, pr, "", err)
	}
	c, err = s.store.CreateCampaign(ctx, c)
	return c, s.done("campaign", policy.CampaignCreate, pr, c.ID, err)
}

func (s *Service) ListCampaigns(ctx context.Context, pr domain.Principal, f domain.CampaignFilter, page pagination.Params) ([]domain.Campaign, int, error) {
	if err := s.policy.Authorize(pr, policy.CampaignList); err != nil {
		return nil, 0, s.done("campaign", policy.CampaignList, pr, "", err)
	}
	return s.store.ListCampaigns(ctx, f, page)
}

func (s *Service) GetCampaign(ctx context.Context, pr domain.Principal, id string) (domain.Campaign, error) {
	if err := s.policy.Authorize(pr, policy.CampaignGet); err != nil {
		return domain.Campaign{}, s.done("campaign", policy.CampaignGet, pr, id, err)
	}
	return s.store.GetCampaign(ctx, id)
}

func (s *Service) UpdateCampaign(ctx context.Context, pr domain.Principal, id string, patch domain.CampaignPatch) (domain.Campaign, error) {
	return mutate(ctx, s, s.campaigns(), pr, policy.CampaignUpdate, id, plain(func(c domain.Campaign) (domain.Campaign, error) {
		return s.engine.UpdateCampaignFields(c, patch)
	}))
}

func (s *Service) DeleteCampaign(ctx context.Context, pr domain.Principal, id string) error {
	return remove(ctx, s, s.campaigns(), pr, policy.CampaignDelete, id, s.store.DeleteCampaign)
}

// AddCampaignPost fails NotFound when the post does not exist
func (s *Service) AddCampaignPost(ctx context.Context, pr domain.Principal, id, postID string) (domain.Campaign, error) {
	return mutate(ctx, s, s.campaigns(), pr, policy.CampaignMembers, id, plain(func(c domain.Campaign) (domain.Campaign, error) {
		if _, err := s.store.GetPost(ctx, postID); err != nil {
			return c, fmt.Errorf("post %s: %w", postID, err)
		}
		return s.engine.AddPost(c, postID)
	}))
}

func (s *Service) RemoveCampaignPost(ctx context.Context, pr domain.Principal, id, postID string) (domain.Campaign, error) {
	return mutate(ctx, s, s.campaigns(), pr, policy.CampaignMembers, id, plain(func(c domain.Campaign) (domain.Campaign, error) {
		return s.engine.RemovePost(c, postID)
	}))
}

// AddCampaignLead fails NotFound when the lead does not exist
func (s *Service) AddCampaignLead(ctx context.Context, pr domain.Principal, id, leadID string) (domain.Campaign, error) {
	return mutate(ctx, s, s.campaigns(), pr, policy.CampaignMembers, id, plain(func(c domain.Campaign) (domain.Campaign, error) {
		if _, err := s.store.GetLead(ctx, leadID); err != nil {
			return c, fmt.Errorf("lead %s: %w", leadID, err)
		}
		return s.engine.AddLead(c, leadID)
	}))
}

func (s *Service) RemoveCampaignLead(ctx context.Context, pr domain.Principal, id, leadID string) (domain.Campaign, error) {
	return mutate(ctx, s, s.campaigns(), pr, policy.CampaignMembers, id, plain(func(c domain.Campaign) (domain.Campaign, error) {
		return s.engine.RemoveLead(c, leadID)
	}))
}

// UpdateCampaignMetrics merges the allow-listed performance keys
func (s *Service) UpdateCampaignMetrics(ctx context.Context, pr domain.Principal, id string, partial map[string]any) (domain.Campaign, error) {
	return mutate(ctx, s, s.campaigns(), pr, policy.CampaignMetrics, id, plain(func(c domain.Campaign) (domain.Campaign, error) {
		return s.engine.UpdateMetrics(c, partial)
	}))
}

func (s *Service) CampaignPerformance(ctx context.Context, pr domain.Principal, id string) (rollup.CampaignPerformance, error) {
	if err := s.policy.Authorize(pr, policy.CampaignPerformance); err != nil {
		return rollup.CampaignPerformance{}, s.done("campaign", policy.CampaignPerformance, pr, id, err)
	}
	return s.rollup.CampaignPerformance(ctx, id)
}
