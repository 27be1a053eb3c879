package domain

import (
	"fmt"
	"strings"
	"time"
)

// Message is an inbound contact-form submission
type Message struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name" bson:"name"`
	Email     string        `json:"email" bson:"email"`
	Subject   string        `json:"subject" bson:"subject"`
	Body      string        `json:"body" bson:"body"`
	Status    MessageStatus `json:"status" bson:"status"`
	LeadID    string        `json:"leadId,omitempty" bson:"leadId,omitempty"`
	Version   int64         `json:"version" bson:"version"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

type NewMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (n *NewMessage) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = NormalizeEmail(n.Email)
	n.Subject = strings.TrimSpace(n.Subject)
}

func (n NewMessage) Validate() error {
	if n.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := ValidateEmail(n.Email); err != nil {
		return err
	}
	if strings.TrimSpace(n.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidInput)
	}
	return nil
}

// SplitName turns "Jane Q Doe" into ("Jane", "Q Doe")
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}

type MessageFilter struct {
	Status MessageStatus
}

func (f MessageFilter) Matches(m Message) bool {
	return f.Status == "" || m.Status == f.Status
}
