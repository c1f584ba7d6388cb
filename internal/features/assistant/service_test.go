package assistant

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedActivity struct {
	action, entityType, entityName string
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (f *fakeActivity) Record(_ context.Context, action, entityType, entityName string, _ map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedActivity{action, entityType, entityName})
}

func (f *fakeActivity) Recent(context.Context, int) ([]models.Row, error) {
	return nil, nil
}

type fakeFallback struct {
	reply string
	err   error
}

func (f fakeFallback) Reply(context.Context, string) (string, error) {
	return f.reply, f.err
}

func newTestService(fallback Fallback) (*AssistantServiceImpl, *fakeActivity, *metrics.Metrics) {
	e, _ := newTestExecutor()
	act := &fakeActivity{}
	m := metrics.New()
	svc := NewAssistantService(newTestClassifier(), e, act, fallback, m, zap.NewNop())
	return svc.(*AssistantServiceImpl), act, m
}

func TestInterpretRecordsMutations(t *testing.T) {
	svc, act, m := newTestService(nil)

	result := svc.Interpret(context.Background(), "s1", "create customer Jane Doe")

	require.NotNil(t, result.Command)
	assert.Equal(t, IntentCreateCustomer, result.Command.Intent)
	assert.True(t, result.Response.Success)
	assert.Equal(t, []recordedActivity{{"ai_command", "customer", "jane doe"}}, act.entries)

	count, err := testutil.GatherAndCount(m.Registry, "crm_assistant_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInterpretDoesNotRecordQueries(t *testing.T) {
	svc, act, _ := newTestService(nil)

	result := svc.Interpret(context.Background(), "s1", "show low stock items")

	assert.True(t, result.Response.Success)
	assert.Empty(t, act.entries)
}

func TestInterpretUnparsedWithoutFallback(t *testing.T) {
	svc, _, _ := newTestService(nil)

	result := svc.Interpret(context.Background(), "s1", "tell me a joke")

	assert.Nil(t, result.Command)
	assert.False(t, result.Response.Success)
	assert.NotEmpty(t, result.Response.FollowUpSuggestions)
}

func TestInterpretUnparsedUsesFallback(t *testing.T) {
	svc, _, _ := newTestService(fakeFallback{reply: "Why did the invoice cross the road?"})

	result := svc.Interpret(context.Background(), "s1", "tell me a joke")

	assert.True(t, result.Response.Success)
	assert.Equal(t, "Why did the invoice cross the road?", result.Response.Message)
}

func TestInterpretFallbackErrorGivesCannedResponse(t *testing.T) {
	svc, _, _ := newTestService(fakeFallback{err: errors.New("rate limited")})

	result := svc.Interpret(context.Background(), "s1", "tell me a joke")

	assert.False(t, result.Response.Success)
	assert.Contains(t, result.Response.Message, "didn't understand")
}

type blockingFallback struct {
	inFlight, peak atomic.Int32
}

func (b *blockingFallback) Reply(context.Context, string) (string, error) {
	n := b.inFlight.Add(1)
	defer b.inFlight.Add(-1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return "ok", nil
}

func TestInterpretSerializesPerSession(t *testing.T) {
	fb := &blockingFallback{}
	svc, _, _ := newTestService(fb)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Interpret(context.Background(), "same-session", "tell me a joke")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fb.peak.Load())
	assert.Empty(t, svc.sessions.locks)
}

func TestInterpretStoreFailureOffersTheSameCommand(t *testing.T) {
	e, s := newTestExecutor()
	s.FailWith(models.CollectionProducts, errors.New("connection refused"))
	svc := NewAssistantService(newTestClassifier(), e, &fakeActivity{}, nil, metrics.New(), zap.NewNop())

	result := svc.Interpret(context.Background(), "s1", "  show low stock items ")

	assert.False(t, result.Response.Success)
	assert.Equal(t, []string{"show low stock items", "help"}, result.Response.FollowUpSuggestions)
	for _, suggestion := range result.Response.FollowUpSuggestions {
		assert.NotNil(t, svc.Parse(suggestion), suggestion)
	}
}
