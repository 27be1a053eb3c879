package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/lifecycle"
	"github.com/ganeshsabale-99/DMP-Project/internal/policy"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
	"github.com/ganeshsabale-99/DMP-Project/pkg/pagination"
)

// CreateLead fails DuplicateEmail when a lead already holds the email. The
// store repeats the check on insert so a concurrent create still fails.
func (s *Service) CreateLead(ctx context.Context, pr domain.Principal, n domain.NewLead) (domain.Lead, error) {
	if err := s.policy.Authorize(pr, policy.LeadCreate); err != nil {
		return domain.Lead{}, s.done("lead", policy.LeadCreate, pr, "", err)
	}
	l, err := s.engine.CreateLead(n, pr.ID)
	if err != nil {
		return domain.Lead{}, s.done("lead", policy.LeadCreate, pr, "", err)
	}
	if err := s.emailFree(ctx, l.Email, ""); err != nil {
		return domain.Lead{}, s.done("lead", policy.LeadCreate, pr, "", err)
	}
	l, err = s.store.CreateLead(ctx, l)
	if err == nil {
		s.logger.WithFields(logging.Fields{
			"lead_id": l.ID,
			"email":   redactEmail(l.Email),
			"source":  l.Source,
		}).Info("Lead created")
	}
	return l, s.done("lead", policy.LeadCreate, pr, l.ID, err)
}

// emailFree fails DuplicateEmail if a lead other than selfID holds email
func (s *Service) emailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.store.GetLeadByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("lookup lead by email: %w", err)
	case existing.ID == selfID:
		return nil
	default:
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, redactEmail(email))
	}
}

func (s *Service) ListLeads(ctx context.Context, pr domain.Principal, f domain.LeadFilter, page pagination.Params) ([]domain.Lead, int, error) {
	if err := s.policy.Authorize(pr, policy.LeadList); err != nil {
		return nil, 0, s.done("lead", policy.LeadList, pr, "", err)
	}
	return s.store.ListLeads(ctx, f, page)
}

func (s *Service) GetLead(ctx context.Context, pr domain.Principal, id string) (domain.Lead, error) {
	if err := s.policy.Authorize(pr, policy.LeadGet); err != nil {
		return domain.Lead{}, s.done("lead", policy.LeadGet, pr, id, err)
	}
	return s.store.GetLead(ctx, id)
}

// UpdateLead edits contact fields. A changed email is re-checked for uniqueness.
func (s *Service) UpdateLead(ctx context.Context, pr domain.Principal, id string, patch domain.LeadPatch) (domain.Lead, error) {
	patch.Normalize()
	return mutate(ctx, s, s.leads(), pr, policy.LeadUpdate, id, plain(func(l domain.Lead) (domain.Lead, error) {
		if patch.Email != nil && *patch.Email != l.Email {
			if err := patch.Validate(); err != nil {
				return l, err
			}
			if err := s.emailFree(ctx, *patch.Email, l.ID); err != nil {
				return l, err
			}
		}
		return s.engine.UpdateLeadFields(l, patch)
	}))
}

func (s *Service) DeleteLead(ctx context.Context, pr domain.Principal, id string) error {
	return remove(ctx, s, s.leads(), pr, policy.LeadDelete, id, s.store.DeleteLead)
}

func (s *Service) SetLeadStatus(ctx context.Context, pr domain.Principal, id string, status domain.LeadStatus) (domain.Lead, error) {
	return mutate(ctx, s, s.leads(), pr, policy.LeadStatus, id, plain(func(l domain.Lead) (domain.Lead, error) {
		return s.engine.SetLeadStatus(l, status)
	}))
}

func (s *Service) UpdateLeadScore(ctx context.Context, pr domain.Principal, id string, score int) (domain.Lead, error) {
	return mutate(ctx, s, s.leads(), pr, policy.LeadScore, id, plain(func(l domain.Lead) (domain.Lead, error) {
		return s.engine.UpdateScore(l, score)
	}))
}

func (s *Service) AssignLead(ctx context.Context, pr domain.Principal, id, userID string) (domain.Lead, error) {
	return mutate(ctx, s, s.leads(), pr, policy.LeadAssign, id, plain(func(l domain.Lead) (domain.Lead, error) {
		return s.engine.Assign(l, userID), nil
	}))
}

func (s *Service) AddLeadActivity(ctx context.Context, pr domain.Principal, id string, a lifecycle.NewActivity) (domain.Lead, error) {
	return mutate(ctx, s, s.leads(), pr, policy.LeadActivity, id, plain(func(l domain.Lead) (domain.Lead, error) {
		return s.engine.AddActivity(l, a, pr.ID)
	}))
}
