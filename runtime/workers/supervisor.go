package workers

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultRestartInterval = 200 * time.Millisecond
	maxRestartFactor       = 32
)

// Supervisor keeps the process workers alive: the bridge listener must be
// resubscribed whenever the bridge drops it, the fan-out must survive a panicking sink.
//
// A worker returning an error or panicking is restarted after a delay that
// doubles on each consecutive failure; a worker returning nil is done.
type Supervisor struct {
	mu              sync.Mutex
	cancel          context.CancelFunc
	stopped         bool
	wg              sync.WaitGroup
	log             *slog.Logger
	telemetry       event.Handler
	restartInterval time.Duration
	workers         []contract.Worker
}

// NewSupervisor restarts failed workers after restartInterval, doubling on repeated failures.
// A zero interval falls back to the default.
func NewSupervisor(log *slog.Logger, telemetry event.Handler, restartInterval time.Duration) *Supervisor {
	if telemetry == nil {
		telemetry = event.NopHandler{}
	}
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	return &Supervisor{log: log, telemetry: telemetry, restartInterval: restartInterval}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Run starts every added worker and blocks until all of them returned,
// which happens once ctx is cancelled or Stop is called.
func (s *Supervisor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.cancel = cancel
	if s.stopped {
		cancel()
	}
	workers := append([]contract.Worker(nil), s.workers...)
	s.mu.Unlock()

	for _, worker := range workers {
		s.Start(ctx, worker)
	}
	s.wg.Wait()
}

// Start supervises one worker in its own goroutine.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.supervise(ctx, worker)
	}()
}

func (s *Supervisor) supervise(ctx context.Context, worker contract.Worker) {
	name := contract.GetWorkerName(worker)
	delay := s.restartInterval

	for ctx.Err() == nil {
		started := time.Now()
		err := s.runOnce(ctx, name, worker)
		switch {
		case err == nil:
			s.log.Info("Worker finished", "name", name)
			return
		case ctx.Err() != nil:
			s.log.Info("Worker stopped", "name", name)
			return
		}

		// A worker that ran for a while before failing starts over from the base delay.
		if time.Since(started) > s.restartInterval*maxRestartFactor {
			delay = s.restartInterval
		}
		s.log.Warn("Worker crashed, restarting", "name", name, "error", err, "in", delay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = nextDelay(delay, s.restartInterval)
	}
}

func (s *Supervisor) runOnce(ctx context.Context, name string, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", errors.ErrWorkerPanic, name, r)
			s.telemetry.Handle(event.NewEvent(event.RestartedAfterPanicType,
				event.WorkerRestartedAfterPanic{WorkerName: name}))
		}
	}()
	return worker.Run(ctx)
}

func nextDelay(current, base time.Duration) time.Duration {
	return min(current*2, base*maxRestartFactor)
}

// Stop cancels every worker, including when Run has not been called yet.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
}
