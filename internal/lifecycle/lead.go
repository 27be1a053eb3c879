package lifecycle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
)

// NewActivity is the caller-supplied part of an activity
type NewActivity struct {
	Type        domain.ActivityType `json:"type"`
	Description string              `json:"description"`
}

// CreateLead builds a NEW lead with score 0. Email uniqueness is checked
// by the caller against the store.
func (e *Engine) CreateLead(n domain.NewLead, creator string) (domain.Lead, error) {
	n.Normalize()
	if err := n.Validate(); err != nil {
		return domain.Lead{}, err
	}
	source, _ := domain.ParseLeadSource(string(n.Source))
	now := e.Now()
	return domain.Lead{
		ID:         e.NewID(),
		Email:      n.Email,
		FirstName:  n.FirstName,
		LastName:   n.LastName,
		Phone:      strings.TrimSpace(n.Phone),
		Company:    strings.TrimSpace(n.Company),
		JobTitle:   strings.TrimSpace(n.JobTitle),
		Source:     source,
		Status:     domain.LeadNew,
		AssignedTo: n.AssignedTo,
		Activities: []domain.Activity{},
		Notes:      n.Notes,
		Tags:       nonNil(n.Tags),
		CreatedBy:  creator,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SetLeadStatus writes any funnel status; there is no ordering between them
func (e *Engine) SetLeadStatus(l domain.Lead, status domain.LeadStatus) (domain.Lead, error) {
	s, err := domain.ParseLeadStatus(string(status))
	if err != nil {
		return l, err
	}
	before := l
	l.Status = s
	return e.settleLead(before, l), nil
}

// UpdateScore fails OutOfRange unless 0 <= score <= 100
func (e *Engine) UpdateScore(l domain.Lead, score int) (domain.Lead, error) {
	if err := domain.ValidateScore(score); err != nil {
		return l, err
	}
	before := l
	l.Score = score
	return e.settleLead(before, l), nil
}

// AddActivity appends to the timeline. createdAt comes from the engine
// clock and never goes backwards relative to the previous entry.
func (e *Engine) AddActivity(l domain.Lead, a NewActivity, by string) (domain.Lead, error) {
	t, err := domain.ParseActivityType(string(a.Type))
	if err != nil {
		return l, err
	}
	if strings.TrimSpace(a.Description) == "" {
		return l, fmt.Errorf("%w: activity description is required", domain.ErrInvalidInput)
	}
	at := e.Now()
	if last := l.LastActivityAt(); last.After(at) {
		at = last
	}
	before := l
	l.Activities = append(slices.Clone(l.Activities), domain.Activity{
		ID:          e.NewID(),
		Type:        t,
		Description: strings.TrimSpace(a.Description),
		CreatedBy:   by,
		CreatedAt:   at,
	})
	return e.settleLead(before, l), nil
}

// Assign overwrites the assignee without checking the user exists
func (e *Engine) Assign(l domain.Lead, userID string) domain.Lead {
	before := l
	l.AssignedTo = strings.TrimSpace(userID)
	return e.settleLead(before, l)
}

// UpdateLeadFields applies contact-field edits. When the email changes the
// caller must re-check uniqueness.
func (e *Engine) UpdateLeadFields(l domain.Lead, patch domain.LeadPatch) (domain.Lead, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return l, err
	}
	before := l
	if patch.Email != nil {
		l.Email = *patch.Email
	}
	if patch.FirstName != nil {
		l.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		l.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Phone != nil {
		l.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Company != nil {
		l.Company = strings.TrimSpace(*patch.Company)
	}
	if patch.JobTitle != nil {
		l.JobTitle = strings.TrimSpace(*patch.JobTitle)
	}
	if patch.Source != nil {
		l.Source, _ = domain.ParseLeadSource(string(*patch.Source))
	}
	if patch.Notes != nil {
		l.Notes = *patch.Notes
	}
	if patch.Tags != nil {
		l.Tags = nonNil(*patch.Tags)
	}
	return e.settleLead(before, l), nil
}

// settleLead is the post-condition run after every lead change: entering
// CONTACTED/ENGAGED or appending a CALL/EMAIL/MEETING marks contact, and
// lastContactedAt only moves forward.
func (e *Engine) settleLead(before, after domain.Lead) domain.Lead {
	now := e.Now()
	contacted := after.Status != before.Status && after.Status.MarksContact()
	for _, a := range after.Activities[min(len(before.Activities), len(after.Activities)):] {
		if a.Type.MarksContact() {
			contacted = true
		}
	}
	if contacted {
		after.LastContactedAt = laterOf(after.LastContactedAt, now)
	}
	after.UpdatedAt = now
	return after
}
