package monitoring

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveLaunch(t *testing.T) {
	m := NewMetrics("child")

	m.ObserveLaunch("grandchild", "success", 120*time.Millisecond)
	m.ObserveLaunch("grandchild", "child_failed", time.Second)
	m.ObserveLaunch("grandchild", "success", 80*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Launches.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Launches.WithLabelValues("child_failed")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.LaunchDuration))
}

func TestObserveExport(t *testing.T) {
	m := NewMetrics("parent")

	m.ObserveExport(3, nil)
	m.ObserveExport(2, errors.New("disk full"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.SpansExported))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportErrors))
}

func TestTimer(t *testing.T) {
	m := NewMetrics("grandchild")

	timer := NewTimer(m)
	elapsed := timer.Stop("success")

	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	assert.Equal(t, 1, testutil.CollectAndCount(m.WorkDuration))

	// A nil collector is tolerated
	assert.NotPanics(t, func() { NewTimer(nil).Stop("success") })
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewMetrics("parent")
	b := NewMetrics("parent")

	a.SpansExported.Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SpansExported))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics("child")
	m.SetLineage("child")
	m.ObserveLaunch("grandchild", "success", time.Millisecond)

	path := filepath.Join(t.TempDir(), "child-self.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `proctrace_launches_total{outcome="success"} 1`)
	assert.Contains(t, text, `proctrace_process_info{lineage="child",role="child"} 1`)
	assert.Contains(t, text, "proctrace_process_uptime_seconds")
}
