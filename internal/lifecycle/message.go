package lifecycle

import (
	"fmt"
	"time"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
)

func (e *Engine) CreateMessage(n domain.NewMessage) (domain.Message, error) {
	n.Normalize()
	if err := n.Validate(); err != nil {
		return domain.Message{}, err
	}
	now := e.Now()
	return domain.Message{
		ID:        e.NewID(),
		Name:      n.Name,
		Email:     n.Email,
		Subject:   n.Subject,
		Body:      n.Body,
		Status:    domain.MessageNew,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (e *Engine) SetMessageStatus(m domain.Message, status domain.MessageStatus) (domain.Message, error) {
	s, err := domain.ParseMessageStatus(string(status))
	if err != nil {
		return m, err
	}
	m.Status = s
	m.UpdatedAt = e.Now()
	return m, nil
}

// LeadFromMessage derives the WEBSITE lead created for a new contact
func LeadFromMessage(m domain.Message) domain.NewLead {
	first, last := domain.SplitName(m.Name)
	return domain.NewLead{
		Email:     m.Email,
		FirstName: first,
		LastName:  last,
		Source:    domain.SourceWebsite,
		Notes:     fmt.Sprintf("Contact form: %s", m.Subject),
	}
}

// NewEvent validates a raw analytics record and stamps id and createdAt.
// A caller-supplied id is kept so replays stay idempotent.
func (e *Engine) NewEvent(ev domain.AnalyticsEvent) (domain.AnalyticsEvent, error) {
	if p, err := domain.ParsePlatform(string(ev.Platform)); err == nil {
		ev.Platform = p
	}
	if err := ev.Validate(); err != nil {
		return domain.AnalyticsEvent{}, err
	}
	if ev.ID == "" {
		ev.ID = e.NewID()
	}
	ev.Date = ev.Date.UTC().Truncate(time.Millisecond)
	ev.CreatedAt = e.Now()
	return ev, nil
}
