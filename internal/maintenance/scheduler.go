// Package maintenance runs the periodic sweeps over shared state: pruning the
// effectiveness store and evicting expired availability and session entries.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wolfman30/equilibra/internal/observability/metrics"
	"github.com/wolfman30/equilibra/pkg/logging"
)

// TaskFunc runs one sweep and reports how many entries it removed.
type TaskFunc func(ctx context.Context) (int, error)

type task struct {
	name string
	run  TaskFunc
}

// Pruner is satisfied by the effectiveness store.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// Evictor is satisfied by the availability cache.
type Evictor interface {
	Evict() int
}

// PruneTask adapts a Pruner.
func PruneTask(p Pruner) TaskFunc {
	return p.Prune
}

// EvictTask adapts an in-memory sweep that cannot fail.
func EvictTask(evict func() int) TaskFunc {
	return func(context.Context) (int, error) {
		return evict(), nil
	}
}

// Scheduler runs every registered task on a fixed interval. Runs never
// overlap; a slow sweep makes the next tick skip.
type Scheduler struct {
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration

	mu    sync.Mutex
	tasks []task

	metrics *metrics.ChatMetrics
	logger  *logging.Logger
}

func New(interval time.Duration, m *metrics.ChatMetrics, logger *logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
		metrics:  m,
		logger:   logger,
	}
}

// Add registers a task. Tasks run in registration order.
func (s *Scheduler) Add(name string, fn TaskFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task{name: name, run: fn})
}

func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(s.ctx) }); err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "interval", s.interval.String(), "tasks", len(s.snapshot()))
	return nil
}

// RunOnce runs every task now. A failing task does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, t := range s.snapshot() {
		removed, err := t.run(ctx)
		if err != nil {
			s.logger.Warn("maintenance task failed", "task", t.name, "error", err)
			continue
		}
		s.metrics.ObserveMaintenance(t.name, removed)
		if removed > 0 {
			s.logger.Info("maintenance task removed entries", "task", t.name, "removed", removed)
		}
	}
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.logger.Info("maintenance scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}

func (s *Scheduler) snapshot() []task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]task(nil), s.tasks...)
}
