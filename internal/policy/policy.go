// Package policy decides whether a principal's role may run an operation.
package policy

import (
	"fmt"
	"os"
	"slices"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"gopkg.in/yaml.v3"
)

// Operation names a guarded action
type Operation string

const (
	PostCreate     Operation = "post.create"
	PostList       Operation = "post.list"
	PostGet        Operation = "post.get"
	PostUpdate     Operation = "post.update"
	PostDelete     Operation = "post.delete"
	PostSubmit     Operation = "post.submit"
	PostApprove    Operation = "post.approve"
	PostPublish    Operation = "post.publish"
	PostFail       Operation = "post.fail"
	PostArchive    Operation = "post.archive"
	PostEngagement Operation = "post.engagement"
	PostMetadata   Operation = "post.metadata"

	LeadCreate   Operation = "lead.create"
	LeadList     Operation = "lead.list"
	LeadGet      Operation = "lead.get"
	LeadUpdate   Operation = "lead.update"
	LeadDelete   Operation = "lead.delete"
	LeadStatus   Operation = "lead.status"
	LeadScore    Operation = "lead.score"
	LeadAssign   Operation = "lead.assign"
	LeadActivity Operation = "lead.activity"

	CampaignCreate      Operation = "campaign.create"
	CampaignList        Operation = "campaign.list"
	CampaignGet         Operation = "campaign.get"
	CampaignUpdate      Operation = "campaign.update"
	CampaignDelete      Operation = "campaign.delete"
	CampaignMembers     Operation = "campaign.members"
	CampaignMetrics     Operation = "campaign.metrics"
	CampaignPerformance Operation = "campaign.performance"

	MessageList   Operation = "message.list"
	MessageStatus Operation = "message.status"

	AnalyticsRead   Operation = "analytics.read"
	AnalyticsRecord Operation = "analytics.record"

	ContentSuggest         Operation = "content.suggest"
	NotificationsSubscribe Operation = "notifications.subscribe"
)

// Rule is the role set for one operation. Owned rules additionally
// require the caller to own the entity unless their role is elevated.
type Rule struct {
	Roles []domain.Role `yaml:"roles"`
	Owned bool          `yaml:"owned"`
}

// Table is the full static configuration handed to New
type Table struct {
	Elevated   []domain.Role      `yaml:"elevated"`
	Operations map[Operation]Rule `yaml:"operations"`
}

// DefaultTable returns the built-in role table
func DefaultTable() Table {
	var (
		admin    = domain.RoleAdmin
		head     = domain.RoleMarketingHead
		manager  = domain.RoleMarketingManager
		creator  = domain.RoleContentCreator
		sales    = domain.RoleSalesRep
		analyst  = domain.RoleAnalyst
		everyone = []domain.Role{admin, head, manager, creator, sales, analyst}
	)
	roles := func(r ...domain.Role) []domain.Role { return r }

	return Table{
		Elevated: roles(admin, head),
		Operations: map[Operation]Rule{
			PostCreate:     {Roles: roles(admin, head, manager, creator)},
			PostList:       {Roles: everyone},
			PostGet:        {Roles: everyone},
			PostUpdate:     {Roles: roles(admin, head, manager, creator), Owned: true},
			PostDelete:     {Roles: roles(admin, head, manager, creator), Owned: true},
			PostSubmit:     {Roles: roles(admin, head, manager, creator)},
			PostApprove:    {Roles: roles(admin, head)},
			PostPublish:    {Roles: roles(admin, head, manager)},
			PostFail:       {Roles: roles(admin, head, manager)},
			PostArchive:    {Roles: roles(admin, head, manager)},
			PostEngagement: {Roles: roles(admin, head, manager, analyst)},
			PostMetadata:   {Roles: roles(admin, head, manager, creator)},

			LeadCreate:   {Roles: roles(admin, head, manager, sales)},
			LeadList:     {Roles: roles(admin, head, manager, sales, analyst)},
			LeadGet:      {Roles: roles(admin, head, manager, sales, analyst)},
			LeadUpdate:   {Roles: roles(admin, head, manager, sales), Owned: true},
			LeadDelete:   {Roles: roles(admin, head, manager, sales), Owned: true},
			LeadStatus:   {Roles: roles(admin, head, manager, sales)},
			LeadScore:    {Roles: roles(admin, head, manager, sales)},
			LeadAssign:   {Roles: roles(admin, head, manager)},
			LeadActivity: {Roles: roles(admin, head, manager, sales)},

			CampaignCreate:      {Roles: roles(admin, head, manager)},
			CampaignList:        {Roles: everyone},
			CampaignGet:         {Roles: everyone},
			CampaignUpdate:      {Roles: roles(admin, head, manager)},
			CampaignDelete:      {Roles: roles(admin, head)},
			CampaignMembers:     {Roles: roles(admin, head, manager)},
			CampaignMetrics:     {Roles: roles(admin, head, manager, analyst)},
			CampaignPerformance: {Roles: everyone},

			MessageList:   {Roles: roles(admin, head, manager, sales)},
			MessageStatus: {Roles: roles(admin, head, manager, sales)},

			AnalyticsRead:   {Roles: everyone},
			AnalyticsRecord: {Roles: roles(admin, head, manager, analyst)},

			ContentSuggest:         {Roles: roles(admin, head, manager, creator)},
			NotificationsSubscribe: {Roles: everyone},
		},
	}
}

// LoadFile reads a YAML table and overlays it on the default. Operations
// named in the file replace the default rule wholesale; a non-empty
// elevated list replaces the default elevated set.
func LoadFile(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read policy file: %w", err)
	}
	var override Table
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Table{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	t := DefaultTable()
	if len(override.Elevated) > 0 {
		t.Elevated = override.Elevated
	}
	for op, rule := range override.Operations {
		t.Operations[op] = rule
	}
	return t, nil
}

type compiledRule struct {
	roles map[domain.Role]bool
	owned bool
}

// Policy is immutable after construction and safe for concurrent use
type Policy struct {
	rules    map[Operation]compiledRule
	elevated map[domain.Role]bool
}

// New validates every role in t and builds a Policy
func New(t Table) (*Policy, error) {
	p := &Policy{
		rules:    make(map[Operation]compiledRule, len(t.Operations)),
		elevated: make(map[domain.Role]bool, len(t.Elevated)),
	}
	for _, r := range t.Elevated {
		if !slices.Contains(domain.Roles, r) {
			return nil, fmt.Errorf("policy: unknown elevated role %q", r)
		}
		p.elevated[r] = true
	}
	for op, rule := range t.Operations {
		cr := compiledRule{roles: make(map[domain.Role]bool, len(rule.Roles)), owned: rule.Owned}
		for _, r := range rule.Roles {
			if !slices.Contains(domain.Roles, r) {
				return nil, fmt.Errorf("policy: operation %s: unknown role %q", op, r)
			}
			cr.roles[r] = true
		}
		p.rules[op] = cr
	}
	return p, nil
}

// Default is New(DefaultTable()); the default table is always valid.
func Default() *Policy {
	p, err := New(DefaultTable())
	if err != nil {
		panic(err)
	}
	return p
}

// Authorize fails with domain.ErrForbidden unless the principal's role is
// in the operation's role set. Unknown operations are denied.
func (p *Policy) Authorize(pr domain.Principal, op Operation) error {
	rule, ok := p.rules[op]
	if !ok || !rule.roles[pr.Role] {
		return fmt.Errorf("%w: role %q may not %s", domain.ErrForbidden, pr.Role, op)
	}
	return nil
}

// AuthorizeOwned runs Authorize and then, for owned operations, requires
// the caller to be ownerID or to hold an elevated role.
func (p *Policy) AuthorizeOwned(pr domain.Principal, op Operation, ownerID string) error {
	if err := p.Authorize(pr, op); err != nil {
		return err
	}
	if !p.rules[op].owned || p.elevated[pr.Role] {
		return nil
	}
	if pr.ID == "" || pr.ID != ownerID {
		return fmt.Errorf("%w: %s requires ownership", domain.ErrForbidden, op)
	}
	return nil
}

// IsElevated reports whether role bypasses ownership checks
func (p *Policy) IsElevated(role domain.Role) bool {
	return p.elevated[role]
}

// Allowed lists the roles permitted to run op, in canonical role order
func (p *Policy) Allowed(op Operation) []domain.Role {
	var out []domain.Role
	for _, r := range domain.Roles {
		if p.rules[op].roles[r] {
			out = append(out, r)
		}
	}
	return out
}
