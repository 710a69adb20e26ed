// Package access computes the effective view/edit permission for a
// (field, role) pair. Absent rules fail open on purpose: a newly added field
// is usable before an administrator has configured permissions for it.
package access

import (
	"context"

	"github.com/goliatone/go-intake/pkg/model"
)

// Access is the effective permission pair for one field and role.
type Access struct {
	CanView bool
	CanEdit bool
}

// RuleSource loads the configured access rules for a screen and role. A nil
// source is treated as "no rules configured" and every field fails open.
type RuleSource interface {
	LoadRules(ctx context.Context, screenID, role string) ([]model.FieldAccessRule, error)
}

// RuleSourceFunc adapts a function into a RuleSource.
type RuleSourceFunc func(ctx context.Context, screenID, role string) ([]model.FieldAccessRule, error)

// LoadRules delegates to the underlying function.
func (fn RuleSourceFunc) LoadRules(ctx context.Context, screenID, role string) ([]model.FieldAccessRule, error) {
	return fn(ctx, screenID, role)
}

type ruleKey struct {
	field string
	role  string
}

// Option customises the evaluator.
type Option func(*Evaluator)

// WithRules installs the configured rules. Rules are normalised at this write
// boundary so reads can apply them verbatim: can_edit without can_view is
// downgraded to view-only denial.
func WithRules(rules []model.FieldAccessRule) Option {
	return func(e *Evaluator) {
		for _, rule := range rules {
			if err := rule.Validate(); err != nil {
				continue
			}
			rule.Normalize()
			e.rules[ruleKey{field: rule.FieldName, role: rule.Role}] = rule
		}
	}
}

// WithBypass disables evaluation entirely, forcing every field visible and
// editable. Used on end-user submission screens where the form owner curates
// fields through the layout rather than per-role rules.
func WithBypass(bypass bool) Option {
	return func(e *Evaluator) {
		e.bypass = bypass
	}
}

// Evaluator answers per-field permission queries for a fixed rule set.
type Evaluator struct {
	rules  map[ruleKey]model.FieldAccessRule
	bypass bool
}

// NewEvaluator constructs an Evaluator applying any provided options.
func NewEvaluator(options ...Option) *Evaluator {
	e := &Evaluator{rules: make(map[ruleKey]model.FieldAccessRule)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Evaluate returns the effective permission for a field and role. No stored
// rule means full access.
func (e *Evaluator) Evaluate(fieldName, role string) Access {
	if e == nil || e.bypass {
		return Access{CanView: true, CanEdit: true}
	}
	rule, ok := e.rules[ruleKey{field: fieldName, role: role}]
	if !ok {
		return Access{CanView: true, CanEdit: true}
	}
	return Access{CanView: rule.CanView, CanEdit: rule.CanEdit}
}

// Rules returns the stored, normalised rules. Mostly useful for persistence
// round-trips and tests.
func (e *Evaluator) Rules() []model.FieldAccessRule {
	out := make([]model.FieldAccessRule, 0, len(e.rules))
	for _, rule := range e.rules {
		out = append(out, rule)
	}
	return out
}
