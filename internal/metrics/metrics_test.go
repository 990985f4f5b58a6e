package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums every series of the named counter family.
func counterValue(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		total := 0.0
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.Extractions.WithLabelValues("ok").Inc()
	assert.Equal(t, 1.0, counterValue(t, a, "voice_extractions_total"))
	assert.Equal(t, 0.0, counterValue(t, b, "voice_extractions_total"))
}

func TestNew_RegistersAllMetrics(t *testing.T) {
	m := New()
	m.ProfileUpdates.WithLabelValues("learn", "ok").Inc()
	m.CommitConflicts.Inc()
	m.QueueDepth.Set(3)

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["voice_profile_updates_total"])
	assert.True(t, names["voice_commit_conflicts_total"])
	assert.True(t, names["voice_queue_depth"])
}

func TestCounterValue_SumsLabels(t *testing.T) {
	m := New()
	m.QueueTasks.WithLabelValues("ok").Add(2)
	m.QueueTasks.WithLabelValues("failed").Inc()

	assert.Equal(t, 3.0, counterValue(t, m, "voice_queue_tasks_total"))
}
