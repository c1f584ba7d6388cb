package automation

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-crm-assistant/internal/common/models"
	"go-crm-assistant/internal/metrics"

	"github.com/stretchr/testify/require"
)

// Thursday afternoon
var testNow = time.Date(2026, time.October, 15, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type recordedActivity struct {
	Action     string
	EntityType string
	EntityName string
	Details    map[string]any
}

type fakeActivity struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (f *fakeActivity) Record(_ context.Context, action, entityType, entityName string, details map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedActivity{action, entityType, entityName, details})
}

func (f *fakeActivity) Recent(context.Context, int) ([]models.Row, error) {
	return nil, nil
}

func (f *fakeActivity) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

func ptr(t time.Time) *time.Time { return &t }

// counterValue reads a counter from the registry; labels are name/value pairs
func counterValue(t *testing.T, m *metrics.Metrics, name string, labels ...string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			got := map[string]string{}
			for _, l := range metric.GetLabel() {
				got[l.GetName()] = l.GetValue()
			}
			for i := 0; i+1 < len(labels); i += 2 {
				if got[labels[i]] != labels[i+1] {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}
