package automation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRuleNotFound  = errors.New("automation rule not found")
	ErrDuplicateRule = errors.New("automation rule already exists")
)

// RuleRegistry holds the automation rules for the lifetime of the process
type RuleRegistry interface {
	List() []AutomationRule
	Get(id string) (*AutomationRule, error)
	Add(rule AutomationRule) (AutomationRule, error)
	SetEnabled(id string, enabled bool) (*AutomationRule, error)
	MarkRun(id string, at time.Time) error
}

type RuleRegistryImpl struct {
	mu    sync.RWMutex
	rules []AutomationRule
}

// NewRuleRegistry seeds a registry. Seed rules are validated like added ones.
func NewRuleRegistry(seed []AutomationRule) (*RuleRegistryImpl, error) {
	r := &RuleRegistryImpl{}
	for _, rule := range seed {
		if _, err := r.Add(rule); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// List returns copies of all rules in registration order
func (r *RuleRegistryImpl) List() []AutomationRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]AutomationRule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule.clone())
	}
	return out
}

func (r *RuleRegistryImpl) Get(id string) (*AutomationRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrRuleNotFound
	}
	rule := r.rules[i].clone()
	return &rule, nil
}

// Add validates and stores a rule, assigning an id when it has none
func (r *RuleRegistryImpl) Add(rule AutomationRule) (AutomationRule, error) {
	if err := rule.Validate(); err != nil {
		return AutomationRule{}, err
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(rule.ID) >= 0 {
		return AutomationRule{}, ErrDuplicateRule
	}
	stored := rule.clone()
	r.rules = append(r.rules, stored)
	return stored.clone(), nil
}

func (r *RuleRegistryImpl) SetEnabled(id string, enabled bool) (*AutomationRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrRuleNotFound
	}
	r.rules[i].Enabled = enabled
	rule := r.rules[i].clone()
	return &rule, nil
}

func (r *RuleRegistryImpl) MarkRun(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrRuleNotFound
	}
	r.rules[i].LastRun = &at
	return nil
}

func (r *RuleRegistryImpl) indexOf(id string) int {
	for i := range r.rules {
		if r.rules[i].ID == id {
			return i
		}
	}
	return -1
}
