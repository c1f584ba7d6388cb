package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPassTimeout bounds a single scheduled pass
const DefaultPassTimeout = 5 * time.Minute

// Scheduler ticks the engine on a fixed interval, plus once right after Start
type Scheduler struct {
	engine      *Engine
	interval    time.Duration
	passTimeout time.Duration
	logger      *zap.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(engine *Engine, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		engine:      engine,
		interval:    interval,
		passTimeout: DefaultPassTimeout,
		logger:      logger,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return errors.New("automation scheduler already started")
	}
	if s.interval <= 0 {
		return fmt.Errorf("invalid automation interval %s", s.interval)
	}

	s.logger.Info("Starting automation scheduler", zap.Duration("interval", s.interval))
	cronLogger := cron.PrintfLogger(zap.NewStdLog(s.logger.Named("cron")))
	s.cron = cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.tick); err != nil {
		s.cron = nil
		s.cancel()
		return fmt.Errorf("failed to schedule automation pass: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.tick()
	}()
	s.cron.Start()
	return nil
}

// Stop cancels the running pass, if any, and waits for it to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.cron = nil
	s.logger.Info("Automation scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(s.ctx, s.passTimeout)
	defer cancel()

	result, err := s.engine.Tick(ctx)
	if err != nil {
		if !errors.Is(err, ErrPassInProgress) {
			s.logger.Error("Automation pass failed", zap.Error(err))
		}
		return
	}
	s.logger.Debug("Automation pass completed",
		zap.Int("evaluated", result.Evaluated),
		zap.Int("fired", len(result.Fired)),
		zap.Int("failed", len(result.Failed)))
}
