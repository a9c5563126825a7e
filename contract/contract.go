//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker is a long running process task. It does not recover from its own
// panics: the supervisor restarts it.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName is the type name of the worker, as shown in logs and restart events.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Connection is one live client connection held by this process.
// Send must not block longer than ctx allows.
type Connection interface {
	ID() string
	Identity() string
	Send(ctx context.Context, payload []byte) error
	IsSubscribed(roomID domain.RoomID) bool
}

type IConnectionRegistry interface {
	Register(conn Connection)
	Unregister(conn Connection)
	BroadcastLocal(ctx context.Context, payload []byte) int
	BroadcastRoom(ctx context.Context, roomID domain.RoomID, payload []byte) int
	Len() int
}
