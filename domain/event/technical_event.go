package event

import "time"

type Type string

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	CensorshipHitType       Type = "CENSORSHIP_HIT"
	BridgeLatencyType       Type = "BRIDGE_LATENCY"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
)

// Event is a technical event consumed by telemetry handlers, never by clients.
type Event struct {
	Type      Type
	CreatedAt time.Time
	Payload   any
}

func NewEvent(t Type, payload any) Event {
	return Event{Type: t, CreatedAt: time.Now(), Payload: payload}
}

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type Censored struct {
	RoomID int64
	Sender string
	Words  []string
}

type BridgeLatency struct {
	RoomID  int64
	Elapsed time.Duration
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}
