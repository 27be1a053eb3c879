// Package lifecycle holds the state machines for posts, leads and
// campaigns. Every method takes an entity by value and returns the updated
// copy; persistence and authorization happen in the caller.
package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

// Engine applies transitions using an injected clock and id source
type Engine struct {
	now   func() time.Time
	newID func() string
}

type Option func(*Engine)

// WithClock replaces the wall clock, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs replaces the uuid generator
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock in UTC at millisecond precision so every
// store backend round-trips timestamps exactly.
func (e *Engine) Now() time.Time {
	return e.now().UTC().Truncate(time.Millisecond)
}

// NewID returns a fresh entity id
func (e *Engine) NewID() string {
	return e.newID()
}

func laterOf(prev *time.Time, now time.Time) *time.Time {
	if prev != nil && prev.After(now) {
		t := *prev
		return &t
	}
	return &now
}
