package automation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchedulerRunsImmediatePass(t *testing.T) {
	f := newEngineFixture(t, notifyRule("daily"))
	s := NewScheduler(f.engine, time.Hour, zap.NewNop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		rule, err := f.registry.Get("daily")
		return err == nil && rule.LastRun != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Error(t, s.Start())
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	s := NewScheduler(f.engine, time.Hour, zap.NewNop())

	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()

	require.NoError(t, s.Start())
	s.Stop()
}

func TestSchedulerRejectsInvalidInterval(t *testing.T) {
	f := newEngineFixture(t)
	assert.Error(t, NewScheduler(f.engine, 0, zap.NewNop()).Start())
}
