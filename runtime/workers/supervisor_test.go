package workers

import (
	"chat-relay/domain/event"
	"chat-relay/mocks"
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func runAsync(ctx context.Context, sup *Supervisor) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()
	return done
}

func requireDone(t *testing.T, done <-chan struct{}, within time.Duration) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(within):
		require.Fail(t, "supervisor still running")
	}
}

func TestSupervisor_PanicsAreReportedAndRestarted(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	listener := mocks.NewMockWorker(gomock.NewController(t))
	counter := event.NewCounter()

	// Given a worker panicking on every run
	var runs atomic.Int32
	listener.EXPECT().Run(gomock.Any()).DoAndReturn(func(context.Context) error {
		runs.Add(1)
		panic("nil payload")
	}).AnyTimes()
	sup := NewSupervisor(log, event.NewWorkerRestartedAfterPanicHandler(log, counter), 10*time.Millisecond)

	// When it is supervised for a while
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	sup.Add(listener).Run(ctx)

	// Then every panic was reported and followed by a restart
	req.GreaterOrEqual(runs.Load(), int32(2))
	req.Equal(uint64(runs.Load()), counter.Get(event.RestartedAfterPanicType))
}

func TestSupervisor_ErrorThenSuccess(t *testing.T) {
	listener := mocks.NewMockWorker(gomock.NewController(t))

	// Given a worker losing the bridge once then returning cleanly
	gomock.InOrder(
		listener.EXPECT().Run(gomock.Any()).Return(fmt.Errorf("subscription lost")),
		listener.EXPECT().Run(gomock.Any()).Return(nil),
	)
	sup := NewSupervisor(logs.GetLoggerFromLevel(slog.LevelError), nil, 5*time.Millisecond)

	// Then it ran twice and supervision ended
	requireDone(t, runAsync(context.Background(), sup.Add(listener).(*Supervisor)), time.Second)
}

func TestSupervisor_StopCancelsRunningWorkers(t *testing.T) {
	listener := mocks.NewMockWorker(gomock.NewController(t))
	started := make(chan struct{})
	listener.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	sup := NewSupervisor(logs.GetLoggerFromLevel(slog.LevelError), nil, 0)
	sup.Add(listener)

	done := runAsync(context.Background(), sup)
	<-started
	sup.Stop()

	requireDone(t, done, time.Second)
}

func TestSupervisor_StopBeforeRun(t *testing.T) {
	listener := mocks.NewMockWorker(gomock.NewController(t))
	listener.EXPECT().Run(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}).MaxTimes(1)
	sup := NewSupervisor(logs.GetLoggerFromLevel(slog.LevelError), nil, 0)
	sup.Add(listener)

	sup.Stop()

	requireDone(t, runAsync(context.Background(), sup), time.Second)
}

func TestNextDelay_DoublesUpToCap(t *testing.T) {
	req := require.New(t)
	base := 10 * time.Millisecond

	req.Equal(20*time.Millisecond, nextDelay(base, base))
	req.Equal(base*maxRestartFactor, nextDelay(base*maxRestartFactor, base))
	req.Equal(base*maxRestartFactor, nextDelay(base*20, base))
}
