package maintenance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/equilibra/internal/observability/metrics"
	"github.com/wolfman30/equilibra/internal/scheduling"
	"github.com/wolfman30/equilibra/pkg/logging"
)

type fakePruner struct {
	calls   int
	removed int
	err     error
}

func (f *fakePruner) Prune(ctx context.Context) (int, error) {
	f.calls++
	return f.removed, f.err
}

func TestRunOnce_RunsEveryTaskEvenAfterFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewChatMetrics(reg)
	s := New(time.Minute, m, logging.Discard())

	failing := &fakePruner{err: errors.New("disk full")}
	pruner := &fakePruner{removed: 3}
	var evicted int32
	s.Add("broken", PruneTask(failing))
	s.Add("effectiveness_prune", PruneTask(pruner))
	s.Add("cache_evict", EvictTask(func() int { atomic.AddInt32(&evicted, 1); return 2 }))
	s.Add("ignored", nil)

	s.RunOnce(context.Background())

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, pruner.calls)
	assert.Equal(t, int32(1), atomic.LoadInt32(&evicted))
	count, err := testutil.GatherAndCount(reg, "equilibra_maintenance_removed_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunOnce_EvictsAvailabilityCache(t *testing.T) {
	cache := scheduling.NewMemoryAvailabilityCache(time.Nanosecond)
	cache.Store("2026-10-20", "15:00", true)
	time.Sleep(time.Millisecond)

	s := New(time.Minute, nil, logging.Discard())
	s.Add("cache_evict", EvictTask(cache.Evict))
	s.RunOnce(context.Background())
	assert.Zero(t, cache.Len())
}

func TestSchedulerStartStop(t *testing.T) {
	s := New(0, nil, logging.Discard())
	assert.Equal(t, 10*time.Minute, s.interval)
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	s.Stop()
}

func TestSchedulerTicks(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a cron tick")
	}
	s := New(time.Second, nil, logging.Discard())
	var runs int32
	s.Add("count", func(context.Context) (int, error) {
		atomic.AddInt32(&runs, 1)
		return 0, nil
	})
	require.NoError(t, s.Start())
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for atomic.LoadInt32(&runs) == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	assert.Positive(t, atomic.LoadInt32(&runs))
}
