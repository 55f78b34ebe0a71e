package processor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// WorkerStatus represents the current state of the stream worker.
type WorkerStatus string

// Worker status constants.
const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusWorking WorkerStatus = "working"
)

// defaultInterval paces the loop when no interval is configured.
const defaultInterval = 500 * time.Millisecond

// Runner is the unit of work the worker drives on every tick.
type Runner interface {
	ProcessOnce(ctx context.Context) (*Outcome, error)
}

// Worker drives a Runner in a single paced loop. One worker owns the whole
// stream; the pacing interval sets how fast script lines are voiced.
type Worker struct {
	runner   Runner
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Health tracking
	mu             sync.RWMutex
	status         WorkerStatus
	ticksProcessed int
	lastActivity   time.Time
}

// WorkerHealth is a point-in-time snapshot of worker state.
type WorkerHealth struct {
	Status         WorkerStatus `json:"status"`
	TicksProcessed int          `json:"ticks_processed"`
	LastActivity   time.Time    `json:"last_activity"`
}

// NewWorker creates a stream worker.
func NewWorker(runner Runner, interval time.Duration) *Worker {
	if runner == nil {
		panic("NewWorker: runner must not be nil")
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Worker{
		runner:       runner,
		interval:     interval,
		stopCh:       make(chan struct{}),
		status:       WorkerStatusIdle,
		lastActivity: time.Now(),
	}
}

// Start begins the worker loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop signals the worker to stop and waits for it to finish.
// It is safe to call Stop multiple times.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
}

// Health returns the current worker health status.
func (w *Worker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WorkerHealth{
		Status:         w.status,
		TicksProcessed: w.ticksProcessed,
		LastActivity:   w.lastActivity,
	}
}

// run is the main worker loop.
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	slog.Info("Stream worker started", "interval", w.interval)

	for {
		select {
		case <-w.stopCh:
			slog.Info("Stream worker shutting down")
			return
		case <-ctx.Done():
			slog.Info("Context cancelled, stream worker shutting down")
			return
		default:
			if err := w.tick(ctx); err != nil {
				slog.Error("Stream tick failed", "error", err)
				w.sleep(time.Second) // Brief backoff on error
				continue
			}
			w.sleep(w.interval)
		}
	}
}

// tick runs one unit of work and updates health tracking.
func (w *Worker) tick(ctx context.Context) error {
	w.setStatus(WorkerStatusWorking)
	defer w.setStatus(WorkerStatusIdle)

	outcome, err := w.runner.ProcessOnce(ctx)
	if err != nil {
		return err
	}
	if outcome != nil {
		w.mu.Lock()
		w.ticksProcessed++
		w.mu.Unlock()
	}
	return nil
}

// sleep waits for the given duration or until stop is signalled.
func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

func (w *Worker) setStatus(status WorkerStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = status
	w.lastActivity = time.Now()
}
