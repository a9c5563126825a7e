package event

import (
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestChain_DispatchesToMatchingHandlers(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	counter := NewCounter()
	censored := NewCensoredHandler(log, counter)
	chain := Chain{
		censored,
		NewWorkerRestartedAfterPanicHandler(log, counter),
		NewLatencyHandler(log, counter, time.Second),
	}

	chain.Handle(NewEvent(CensorshipHitType, Censored{RoomID: 1, Sender: "alice@x.com", Words: []string{"darn", "darn"}}))
	chain.Handle(NewEvent(RestartedAfterPanicType, WorkerRestartedAfterPanic{WorkerName: "BridgeListener"}))
	chain.Handle(NewEvent(BridgeLatencyType, BridgeLatency{RoomID: 1, Elapsed: 2 * time.Second}))

	req.Equal(uint64(1), counter.Get(CensorshipHitType))
	req.Equal(uint64(1), counter.Get(RestartedAfterPanicType))
	req.Equal(uint64(1), counter.Get(BridgeLatencyType))
	req.Equal(uint64(2), censored.Hits("darn"))
}

func TestHandlers_IgnoreWrongPayload(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)
	counter := NewCounter()

	NewCensoredHandler(log, counter).Handle(NewEvent(CensorshipHitType, "not a payload"))
	NewWorkerRestartedAfterPanicHandler(log, counter).Handle(NewEvent(RestartedAfterPanicType, 42))

	req.Zero(counter.Get(CensorshipHitType))
	req.Zero(counter.Get(RestartedAfterPanicType))
}

func TestChannelCapacityHandler_CountsLowCapacity(t *testing.T) {
	req := require.New(t)
	counter := NewCounter()
	handler := NewChannelCapacityHandler(logs.GetLoggerFromLevel(slog.LevelError), counter, 2)

	handler.Handle(NewEvent(ChannelCapacityType, ChannelCapacity{ChannelName: "broadcasts", Capacity: 10, Length: 3}))
	handler.Handle(NewEvent(ChannelCapacityType, ChannelCapacity{ChannelName: "broadcasts", Capacity: 10, Length: 9}))
	handler.Handle(NewEvent(ChannelCapacityType, ChannelCapacity{ChannelName: "unbuffered", Capacity: 0}))

	req.Equal(uint64(1), counter.Get(ChannelCapacityType))
}
