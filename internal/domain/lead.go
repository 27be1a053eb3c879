package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Activity is one immutable entry in a lead's timeline
type Activity struct {
	ID          string       `json:"id" bson:"id"`
	Type        ActivityType `json:"type" bson:"type"`
	Description string       `json:"description" bson:"description"`
	CreatedBy   string       `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
}

type Lead struct {
	ID              string     `json:"id" bson:"_id"`
	Email           string     `json:"email" bson:"email"`
	FirstName       string     `json:"firstName" bson:"firstName"`
	LastName        string     `json:"lastName" bson:"lastName"`
	Phone           string     `json:"phone,omitempty" bson:"phone,omitempty"`
	Company         string     `json:"company,omitempty" bson:"company,omitempty"`
	JobTitle        string     `json:"jobTitle,omitempty" bson:"jobTitle,omitempty"`
	Source          LeadSource `json:"source" bson:"source"`
	Status          LeadStatus `json:"status" bson:"status"`
	Score           int        `json:"score" bson:"score"`
	AssignedTo      string     `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	Activities      []Activity `json:"activities" bson:"activities"`
	Notes           string     `json:"notes,omitempty" bson:"notes,omitempty"`
	Tags            []string   `json:"tags" bson:"tags"`
	LastContactedAt *time.Time `json:"lastContactedAt,omitempty" bson:"lastContactedAt,omitempty"`
	CreatedBy       string     `json:"createdBy" bson:"createdBy"`
	Version         int64      `json:"version" bson:"version"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// LastActivityAt returns the createdAt of the newest activity, or the zero time
func (l Lead) LastActivityAt() time.Time {
	if len(l.Activities) == 0 {
		return time.Time{}
	}
	return l.Activities[len(l.Activities)-1].CreatedAt
}

// NormalizeEmail is the canonical form used for storage and uniqueness
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail rejects anything that is not a bare address
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email %q", ErrInvalidInput, email)
	}
	return nil
}

// ValidateScore enforces the 0-100 score range
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("%w: score %d not in [%d,%d]", ErrOutOfRange, score, MinScore, MaxScore)
	}
	return nil
}

type NewLead struct {
	Email      string     `json:"email"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Phone      string     `json:"phone"`
	Company    string     `json:"company"`
	JobTitle   string     `json:"jobTitle"`
	Source     LeadSource `json:"source"`
	Notes      string     `json:"notes"`
	Tags       []string   `json:"tags"`
	AssignedTo string     `json:"assignedTo"`
}

// Normalize trims inputs, lower-cases the email and defaults the source
func (n *NewLead) Normalize() {
	n.Email = NormalizeEmail(n.Email)
	n.FirstName = strings.TrimSpace(n.FirstName)
	n.LastName = strings.TrimSpace(n.LastName)
	if n.Source == "" {
		n.Source = SourceOther
	}
}

func (n NewLead) Validate() error {
	if n.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if err := ValidateEmail(n.Email); err != nil {
		return err
	}
	if n.FirstName == "" {
		return fmt.Errorf("%w: firstName is required", ErrInvalidInput)
	}
	if _, err := ParseLeadSource(string(n.Source)); err != nil {
		return err
	}
	return nil
}

// LeadPatch edits contact fields; status, score and assignee have their own operations
type LeadPatch struct {
	Email     *string     `json:"email"`
	FirstName *string     `json:"firstName"`
	LastName  *string     `json:"lastName"`
	Phone     *string     `json:"phone"`
	Company   *string     `json:"company"`
	JobTitle  *string     `json:"jobTitle"`
	Source    *LeadSource `json:"source"`
	Notes     *string     `json:"notes"`
	Tags      *[]string   `json:"tags"`
}

// Normalize canonicalises the email in place
func (p *LeadPatch) Normalize() {
	if p.Email != nil {
		e := NormalizeEmail(*p.Email)
		p.Email = &e
	}
}

func (p LeadPatch) Validate() error {
	if p.Email != nil {
		if err := ValidateEmail(*p.Email); err != nil {
			return err
		}
	}
	if p.FirstName != nil && strings.TrimSpace(*p.FirstName) == "" {
		return fmt.Errorf("%w: firstName cannot be empty", ErrInvalidInput)
	}
	if p.Source != nil {
		if _, err := ParseLeadSource(string(*p.Source)); err != nil {
			return err
		}
	}
	return nil
}

type LeadFilter struct {
	Status     LeadStatus
	Source     LeadSource
	AssignedTo string
	MinScore   *int
	Email      string
}

func (f LeadFilter) Matches(l Lead) bool {
	return (f.Status == "" || l.Status == f.Status) &&
		(f.Source == "" || l.Source == f.Source) &&
		(f.AssignedTo == "" || l.AssignedTo == f.AssignedTo) &&
		(f.MinScore == nil || l.Score >= *f.MinScore) &&
		(f.Email == "" || l.Email == f.Email)
}
