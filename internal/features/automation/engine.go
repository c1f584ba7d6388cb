package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-crm-assistant/internal/features/snapshot"
	"go-crm-assistant/internal/metrics"

	"go.uber.org/zap"
)

var ErrPassInProgress = errors.New("automation pass already running")

// SnapshotSource loads the business data a pass evaluates rules against
type SnapshotSource interface {
	Fetch(ctx context.Context) (*snapshot.Snapshot, error)
}

type PassResult struct {
	StartedAt time.Time `json:"startedAt"`
	Evaluated int       `json:"evaluated"`
	Fired     []string  `json:"fired"`
	Failed    []string  `json:"failed"`
}

// Engine evaluates the registry's rules. Passes never overlap: a Tick that
// finds another pass running returns ErrPassInProgress.
type Engine struct {
	registry  RuleRegistry
	snapshots SnapshotSource
	actions   ActionExecutor
	metrics   *metrics.Metrics
	logger    *zap.Logger
	clock     func() time.Time

	running sync.Mutex
}

func NewEngine(registry RuleRegistry, snapshots SnapshotSource, actions ActionExecutor, m *metrics.Metrics, logger *zap.Logger) *Engine {
	return &Engine{
		registry:  registry,
		snapshots: snapshots,
		actions:   actions,
		metrics:   m,
		logger:    logger,
		clock:     time.Now,
	}
}

func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// Tick runs one evaluation pass over a freshly fetched snapshot
func (e *Engine) Tick(ctx context.Context) (PassResult, error) {
	if !e.running.TryLock() {
		e.metrics.TickSkipped()
		e.logger.Warn("Skipping automation tick, previous pass still running")
		return PassResult{}, ErrPassInProgress
	}
	defer e.running.Unlock()

	result := PassResult{StartedAt: e.clock(), Fired: []string{}, Failed: []string{}}

	snap, err := e.snapshots.Fetch(ctx)
	if err != nil {
		e.logger.Error("Automation pass aborted, snapshot fetch failed", zap.Error(err))
		return result, fmt.Errorf("fetch snapshot: %w", err)
	}

	for _, rule := range e.registry.List() {
		if !rule.Enabled {
			continue
		}
		result.Evaluated++

		fired, err := e.runRule(ctx, rule, snap)
		if fired {
			result.Fired = append(result.Fired, rule.ID)
		}
		if err != nil {
			result.Failed = append(result.Failed, rule.ID)
			e.metrics.RuleFailed(rule.Name)
			e.logger.Error("Automation rule failed",
				zap.String("rule", rule.Name),
				zap.String("rule_id", rule.ID),
				zap.Error(err))
		}
	}

	e.metrics.PassCompleted()
	return result, nil
}

// runRule evaluates and executes one rule. lastRun is written only after
// every action succeeded.
func (e *Engine) runRule(ctx context.Context, rule AutomationRule, snap *snapshot.Snapshot) (fired bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	now := e.clock()
	fired, err = ShouldFire(rule, snap, now)
	if err != nil || !fired {
		return false, err
	}

	e.metrics.RuleFired(rule.Name)
	e.logger.Info("Automation rule fired",
		zap.String("rule", rule.Name),
		zap.String("trigger", string(rule.Trigger)))

	if err := e.actions.ExecuteActions(ctx, rule, snap); err != nil {
		return true, err
	}
	return true, e.registry.MarkRun(rule.ID, now)
}
