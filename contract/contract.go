//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

// Conn is one live transport session. Exactly one identity owns a Conn at any
// instant. Deliver must not block on the peer: a slow client fails fast so a
// single connection cannot stall fan-out to the rest.
type Conn interface {
	ID() string
	Deliver(ctx context.Context, e event.Outbound) error
}

// IConnectionRegistry maps identities to their live connections. All
// operations are linearizable: a Resolve racing a Register either sees the
// new connection or does not, never a half-applied state.
type IConnectionRegistry interface {
	Register(identity string, conn Conn)
	// Unregister removes the connection from whichever identity holds it and
	// returns that identity. A connection that was never registered (or was
	// already removed by a racing disconnect) yields ok == false, not an error.
	Unregister(conn Conn) (identity string, ok bool)
	Resolve(identity string) []Conn
	// Snapshot dumps identity -> connection IDs for diagnostics. Not a hot path.
	Snapshot() map[string][]string
	Identities() int
	Connections() int
}

// IRoomManager scopes typing and read-receipt events to a conversation.
type IRoomManager interface {
	Join(roomID string, conn Conn)
	Leave(roomID string, conn Conn)
	// BroadcastExceptSender delivers e to every member of roomID other than
	// sender and returns how many deliveries succeeded.
	BroadcastExceptSender(ctx context.Context, roomID string, sender Conn, e event.Outbound) int
	// DetachAll drops a disconnecting connection from every room it joined.
	DetachAll(conn Conn)
	Rooms() int
}

// IMessageRouter resolves a receiver to connections and fans the payload out.
type IMessageRouter interface {
	RouteDirect(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error)
	Notify(ctx context.Context, identity string, payload []byte) (domain.DeliveryResult, error)
	RouteToRoomExceptSender(ctx context.Context, roomID string, sender Conn, e event.Outbound) int
}

// IRelayService ties routing to transport sessions and offline storage.
type IRelayService interface {
	Register(ctx context.Context, identity string, conn Conn)
	Disconnect(conn Conn)
	SendMessage(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error)
	JoinRoom(roomID string, conn Conn)
	LeaveRoom(roomID string, conn Conn)
	MarkMessageRead(ctx context.Context, reader Conn, cmd domain.MarkReadCommand)
	Typing(ctx context.Context, sender Conn, cmd domain.TypingCommand)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

// Worker doesn't protect itself; the supervisor restarts it on panic.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker lifecycle
// events, avoiding the need for manual naming in the Worker interface.
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
