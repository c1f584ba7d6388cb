package automation

import (
	"context"

	"go-crm-assistant/internal/features/activity"
)

type AutomationService interface {
	ListRules(ctx context.Context) []AutomationRule
	GetRule(ctx context.Context, id string) (*AutomationRule, error)
	AddRule(ctx context.Context, rule AutomationRule) (AutomationRule, error)
	EnableRule(ctx context.Context, id string) (*AutomationRule, error)
	DisableRule(ctx context.Context, id string) (*AutomationRule, error)

	// RunNow runs an evaluation pass outside the schedule
	RunNow(ctx context.Context) (PassResult, error)
}

type AutomationServiceImpl struct {
	Registry RuleRegistry
	Engine   *Engine
	Activity activity.ActivityService
}

func NewAutomationService(registry RuleRegistry, engine *Engine, activityService activity.ActivityService) AutomationService {
	return &AutomationServiceImpl{
		Registry: registry,
		Engine:   engine,
		Activity: activityService,
	}
}

func (s *AutomationServiceImpl) ListRules(_ context.Context) []AutomationRule {
	return s.Registry.List()
}

func (s *AutomationServiceImpl) GetRule(_ context.Context, id string) (*AutomationRule, error) {
	return s.Registry.Get(id)
}

func (s *AutomationServiceImpl) AddRule(ctx context.Context, rule AutomationRule) (AutomationRule, error) {
	rule.LastRun = nil
	rule.NextRun = nil
	added, err := s.Registry.Add(rule)
	if err == nil {
		s.audit(ctx, "automation_rule_created", added)
	}
	return added, err
}

func (s *AutomationServiceImpl) EnableRule(ctx context.Context, id string) (*AutomationRule, error) {
	rule, err := s.Registry.SetEnabled(id, true)
	if err == nil {
		s.audit(ctx, "automation_rule_enabled", *rule)
	}
	return rule, err
}

func (s *AutomationServiceImpl) DisableRule(ctx context.Context, id string) (*AutomationRule, error) {
	rule, err := s.Registry.SetEnabled(id, false)
	if err == nil {
		s.audit(ctx, "automation_rule_disabled", *rule)
	}
	return rule, err
}

func (s *AutomationServiceImpl) RunNow(ctx context.Context) (PassResult, error) {
	return s.Engine.Tick(ctx)
}

func (s *AutomationServiceImpl) audit(ctx context.Context, action string, rule AutomationRule) {
	if s.Activity == nil {
		return
	}
	s.Activity.Record(ctx, action, entityTypeAutomation, rule.Name, map[string]any{
		"ruleId":  rule.ID,
		"trigger": string(rule.Trigger),
		"enabled": rule.Enabled,
	})
}
