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

// opMessageSubmit is the public contact-form entry point; it has no role rule
const opMessageSubmit policy.Operation = "message.submit"

// SubmitMessage stores a contact-form message and links it to a WEBSITE
// lead, creating the lead when the email is new. A failure to link the lead
// is logged and the message is still stored.
func (s *Service) SubmitMessage(ctx context.Context, n domain.NewMessage) (domain.Message, error) {
	pr := domain.Anonymous
	m, err := s.engine.CreateMessage(n)
	if err != nil {
		return domain.Message{}, s.done("message", opMessageSubmit, pr, "", err)
	}

	lead, err := s.leadForMessage(ctx, m)
	if err != nil {
		s.logger.WithFields(logging.Fields{
			"message_id": m.ID,
			"email":      redactEmail(m.Email),
			"error":      err,
		}).Warn("Failed to link contact message to lead")
	} else {
		m.LeadID = lead.ID
	}

	m, err = s.store.CreateMessage(ctx, m)
	if err != nil {
		return domain.Message{}, s.done("message", opMessageSubmit, pr, "", fmt.Errorf("save message: %w", err))
	}

	s.publisher.Publish(domain.Notification{
		Channel: domain.ChannelMarketingHead,
		Type:    domain.NotifyMessageNew,
		Payload: map[string]any{
			"messageId": m.ID,
			"leadId":    m.LeadID,
			"name":      m.Name,
			"subject":   m.Subject,
		},
		Timestamp: m.CreatedAt,
	})
	return m, s.done("message", opMessageSubmit, pr, m.ID, nil)
}

// leadForMessage creates the lead for a first contact or appends a NOTE to
// the lead already holding the email. A create that loses the race against
// a concurrent one falls back to linking.
func (s *Service) leadForMessage(ctx context.Context, m domain.Message) (domain.Lead, error) {
	existing, err := s.store.GetLeadByEmail(ctx, m.Email)
	if err == nil {
		return s.noteContact(ctx, existing, m)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Lead{}, fmt.Errorf("lookup lead by email: %w", err)
	}

	l, err := s.engine.CreateLead(lifecycle.LeadFromMessage(m), "")
	if err != nil {
		return domain.Lead{}, err
	}
	created, err := s.store.CreateLead(ctx, l)
	if errors.Is(err, domain.ErrDuplicateEmail) {
		existing, err := s.store.GetLeadByEmail(ctx, m.Email)
		if err != nil {
			return domain.Lead{}, fmt.Errorf("lookup lead after duplicate: %w", err)
		}
		return s.noteContact(ctx, existing, m)
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	s.logger.WithFields(logging.Fields{
		"lead_id": created.ID,
		"email":   redactEmail(created.Email),
		"source":  created.Source,
	}).Info("Lead created from contact message")
	return created, nil
}

// noteContact appends a NOTE activity, retrying once on a stale version
func (s *Service) noteContact(ctx context.Context, l domain.Lead, m domain.Message) (domain.Lead, error) {
	note := lifecycle.NewActivity{
		Type:        domain.ActivityNote,
		Description: fmt.Sprintf("Contact form: %s", m.Subject),
	}
	id := l.ID
	for attempt := 0; ; attempt++ {
		next, err := s.engine.AddActivity(l, note, "")
		if err != nil {
			return domain.Lead{}, err
		}
		saved, err := s.store.UpdateLead(ctx, next)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, domain.ErrStaleVersion) || attempt > 0 {
			return domain.Lead{}, fmt.Errorf("update lead %s: %w", id, err)
		}
		if l, err = s.store.GetLead(ctx, id); err != nil {
			return domain.Lead{}, fmt.Errorf("reload lead %s: %w", id, err)
		}
	}
}

func (s *Service) ListMessages(ctx context.Context, pr domain.Principal, f domain.MessageFilter, page pagination.Params) ([]domain.Message, int, error) {
	if err := s.policy.Authorize(pr, policy.MessageList); err != nil {
		return nil, 0, s.done("message", policy.MessageList, pr, "", err)
	}
	return s.store.ListMessages(ctx, f, page)
}

func (s *Service) GetMessage(ctx context.Context, pr domain.Principal, id string) (domain.Message, error) {
	if err := s.policy.Authorize(pr, policy.MessageList); err != nil {
		return domain.Message{}, s.done("message", policy.MessageList, pr, id, err)
	}
	return s.store.GetMessage(ctx, id)
}

func (s *Service) SetMessageStatus(ctx context.Context, pr domain.Principal, id string, status domain.MessageStatus) (domain.Message, error) {
	return mutate(ctx, s, s.messages(), pr, policy.MessageStatus, id, plain(func(m domain.Message) (domain.Message, error) {
		return s.engine.SetMessageStatus(m, status)
	}))
}
