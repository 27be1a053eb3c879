// Package service runs every operation end to end: authorize the
// principal, load the entity, apply the lifecycle transition, persist it
// with an optimistic version check and hand any notifications to the
// dispatcher.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/ganeshsabale-99/DMP-Project/internal/lifecycle"
	"github.com/ganeshsabale-99/DMP-Project/internal/policy"
	"github.com/ganeshsabale-99/DMP-Project/internal/rollup"
	"github.com/ganeshsabale-99/DMP-Project/internal/store"
	"github.com/ganeshsabale-99/DMP-Project/internal/suggest"
	"github.com/ganeshsabale-99/DMP-Project/pkg/logging"
)

// Publisher accepts notifications without blocking
type Publisher interface {
	Publish(notifications ...domain.Notification)
}

// Hooks observe operation outcomes. outcome is "ok" or an error kind.
type Hooks struct {
	OnOperation func(entity string, op policy.Operation, outcome string)
}

type Config struct {
	Store     store.Store
	Rollup    *rollup.Engine
	Engine    *lifecycle.Engine
	Policy    *policy.Policy
	Publisher Publisher
	Suggester suggest.Suggester
	Logger    logging.Logger
	Hooks     Hooks
}

type Service struct {
	store     store.Store
	rollup    *rollup.Engine
	engine    *lifecycle.Engine
	policy    *policy.Policy
	publisher Publisher
	suggester suggest.Suggester
	logger    logging.Logger
	hooks     Hooks
}

func New(cfg Config) *Service {
	if cfg.Engine == nil {
		cfg.Engine = lifecycle.New()
	}
	if cfg.Policy == nil {
		cfg.Policy = policy.Default()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = discard{}
	}
	return &Service{
		store:     cfg.Store,
		rollup:    cfg.Rollup,
		engine:    cfg.Engine,
		policy:    cfg.Policy,
		publisher: cfg.Publisher,
		suggester: cfg.Suggester,
		logger:    cfg.Logger,
		hooks:     cfg.Hooks,
	}
}

type discard struct{}

func (discard) Publish(...domain.Notification) {}

// Policy exposes the role table, e.g. for channel checks at the edge
func (s *Service) Policy() *policy.Policy { return s.policy }

// entity describes how to load, own and save one entity type
type entity[T any] struct {
	name  string
	get   func(context.Context, string) (T, error)
	save  func(context.Context, T) (T, error)
	owner func(T) string
}

func (s *Service) posts() entity[domain.Post] {
	return entity[domain.Post]{
		name:  "post",
		get:   s.store.GetPost,
		save:  s.store.UpdatePost,
		owner: func(p domain.Post) string { return p.CreatedBy },
	}
}

func (s *Service) leads() entity[domain.Lead] {
	return entity[domain.Lead]{
		name:  "lead",
		get:   s.store.GetLead,
		save:  s.store.UpdateLead,
		owner: func(l domain.Lead) string { return l.CreatedBy },
	}
}

func (s *Service) campaigns() entity[domain.Campaign] {
	return entity[domain.Campaign]{
		name:  "campaign",
		get:   s.store.GetCampaign,
		save:  s.store.UpdateCampaign,
		owner: func(c domain.Campaign) string { return c.CreatedBy },
	}
}

func (s *Service) messages() entity[domain.Message] {
	return entity[domain.Message]{
		name: "message",
		get:  s.store.GetMessage,
		save: s.store.UpdateMessage,
	}
}

// load authorizes op and reads the entity. The role check runs before
// the read; the ownership check, when op declares one, runs against the
// loaded entity.
func load[T any](ctx context.Context, s *Service, e entity[T], pr domain.Principal, op policy.Operation, id string) (T, error) {
	var zero T
	if err := s.policy.Authorize(pr, op); err != nil {
		return zero, err
	}
	current, err := e.get(ctx, id)
	if err != nil {
		return zero, err
	}
	if e.owner != nil {
		if err := s.policy.AuthorizeOwned(pr, op, e.owner(current)); err != nil {
			return zero, err
		}
	}
	return current, nil
}

// mutate is the read-modify-write of one entity
func mutate[T any](ctx context.Context, s *Service, e entity[T], pr domain.Principal, op policy.Operation, id string,
	apply func(T) (T, []domain.Notification, error),
) (T, error) {
	var zero T
	current, err := load(ctx, s, e, pr, op, id)
	if err != nil {
		return zero, s.done(e.name, op, pr, id, err)
	}
	next, notes, err := apply(current)
	if err != nil {
		return zero, s.done(e.name, op, pr, id, err)
	}
	saved, err := e.save(ctx, next)
	if err != nil {
		return zero, s.done(e.name, op, pr, id, fmt.Errorf("save %s %s: %w", e.name, id, err))
	}
	s.publisher.Publish(notes...)
	return saved, s.done(e.name, op, pr, id, nil)
}

// remove deletes one entity after the same checks as mutate
func remove[T any](ctx context.Context, s *Service, e entity[T], pr domain.Principal, op policy.Operation, id string,
	del func(context.Context, string) error,
) error {
	if _, err := load(ctx, s, e, pr, op, id); err != nil {
		return s.done(e.name, op, pr, id, err)
	}
	if err := del(ctx, id); err != nil {
		return s.done(e.name, op, pr, id, fmt.Errorf("delete %s %s: %w", e.name, id, err))
	}
	return s.done(e.name, op, pr, id, nil)
}

// plain adapts an engine transition that emits no notifications
func plain[T any](fn func(T) (T, error)) func(T) (T, []domain.Notification, error) {
	return func(v T) (T, []domain.Notification, error) {
		out, err := fn(v)
		return out, nil, err
	}
}

// done logs the outcome and reports it to the hooks, returning err
func (s *Service) done(entity string, op policy.Operation, pr domain.Principal, id string, err error) error {
	outcome := "ok"
	if err != nil {
		outcome = domain.Kind(err)
	}
	if s.hooks.OnOperation != nil {
		s.hooks.OnOperation(entity, op, outcome)
	}

	fields := logging.Fields{
		"operation":    string(op),
		"principal_id": pr.ID,
		"role":         string(pr.Role),
	}
	if id != "" {
		fields[entity+"_id"] = id
	}
	switch {
	case err == nil:
		s.logger.WithFields(fields).Debug("Operation completed")
	case outcome == "internal":
		s.logger.WithFields(fields).WithError(err).Error("Operation failed")
	default:
		fields["code"] = outcome
		s.logger.WithFields(fields).WithError(err).Info("Operation rejected")
	}
	return err
}

// redactEmail keeps the first character of the local part
func redactEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	local, host, ok := strings.Cut(email, "@")
	if !ok {
		return "[redacted]"
	}
	if local == "" {
		return "***@" + host
	}
	return string([]rune(local)[0]) + "***@" + host
}
