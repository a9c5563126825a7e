package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/moderation"
	"chat-relay/runtime/workers"
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const CensoredDir = "censored"

//go:embed censored/*
var CensoredFS embed.FS

// LoadModerator builds the moderator from the embedded dictionaries.
func LoadModerator(log *slog.Logger, charReplacement rune) (moderation.Moderator, error) {
	return LoadModeratorFrom(log, CensoredFS, CensoredDir, charReplacement)
}

// LoadModeratorFrom builds the moderator from the dictionaries found in dir.
func LoadModeratorFrom(log *slog.Logger, fsys fs.FS, dir string, charReplacement rune) (moderation.Moderator, error) {
	data, err := NewCensoredLoader(fsys).LoadAll(dir)
	if err != nil {
		return moderation.Moderator{}, err
	}
	log.Info("Censored dictionaries loaded",
		"languages", strings.Join(data.Languages, ","), "words", len(data.Words))
	return moderation.NewModerator(data.Words, charReplacement, log)
}

// Node runs the process side of the broadcast bridge: one listener receiving
// every chat payload and one fan-out delivering it to the local sinks,
// the connection registry first.
type Node struct {
	mu          sync.Mutex
	log         *slog.Logger
	supervisor  contract.ISupervisor
	subscriber  contract.Subscriber
	telemetry   event.Handler
	broadcasts  chan event.DomainEvent
	sinks       []contract.EventSink
	extra       []contract.Worker
	sinkTimeout time.Duration
	done        chan struct{}
}

// NewNode assembles the delivery path of a chat node: one bridge listener feeding
// a queue of bufferSize broadcasts, drained by a fan-out towards sinks.
// Nothing runs before Start.
func NewNode(log *slog.Logger, supervisor contract.ISupervisor, subscriber contract.Subscriber,
	telemetry event.Handler, bufferSize int, sinkTimeout time.Duration, sinks ...contract.EventSink) *Node {
	return &Node{
		log:         log,
		supervisor:  supervisor,
		subscriber:  subscriber,
		telemetry:   telemetry,
		broadcasts:  make(chan event.DomainEvent, bufferSize),
		sinks:       sinks,
		sinkTimeout: sinkTimeout,
	}
}

// Queue exposes the fan-out queue to the capacity sampler.
func (n *Node) Queue() workers.NamedChannel {
	return workers.NamedChannel{Name: "broadcasts", Channel: n.broadcasts}
}

// AddWorker supervises extra process workers, e.g. the heartbeat.
func (n *Node) AddWorker(worker ...contract.Worker) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.extra = append(n.extra, worker...)
}

// Start launches the supervised workers and returns immediately.
func (n *Node) Start(ctx context.Context) {
	n.mu.Lock()
	listener := workers.NewBridgeListener(n.log, n.subscriber, domain.ChatTopic, n.broadcasts)
	fanout := workers.NewEventFanout(n.log, n.broadcasts, n.telemetry, n.sinkTimeout, n.sinks...)
	n.supervisor.Add(listener, fanout)
	n.supervisor.Add(n.extra...)
	n.done = make(chan struct{})
	done := n.done
	n.mu.Unlock()

	n.log.Info("Starting node workers", "sinks", len(n.sinks), "extra_workers", len(n.extra))
	go func() {
		defer close(done)
		n.supervisor.Run(ctx)
	}()
}

// Stop cancels the workers and waits for them.
func (n *Node) Stop() {
	n.mu.Lock()
	done := n.done
	n.mu.Unlock()
	n.supervisor.Stop()
	if done != nil {
		<-done
	}
	n.log.Info("Node stopped")
}
