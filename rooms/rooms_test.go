package rooms

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"chat-relay/domain"
	"chat-relay/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	id string

	mu     sync.Mutex
	events []event.Outbound
	fail   bool
}

func newRecordingConn() *recordingConn {
	return &recordingConn{id: uuid.NewString()}
}

func (c *recordingConn) ID() string { return c.id }

func (c *recordingConn) Deliver(ctx context.Context, e event.Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return fmt.Errorf("connection torn down")
	}
	c.events = append(c.events, e)
	return nil
}

func (c *recordingConn) delivered() []event.Outbound {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Outbound(nil), c.events...)
}

func TestRoomID_Is_Symmetric(t *testing.T) {
	req := require.New(t)

	req.Equal(domain.RoomID("5550001", "5550002"), domain.RoomID("5550002", "5550001"))
	req.NotEqual(domain.RoomID("5550001", "5550002"), domain.RoomID("5550001", "5550003"))
}

func TestRoomManager_Broadcast_Skips_Sender(t *testing.T) {
	req := require.New(t)
	manager := NewRoomManager(slog.Default())
	roomID := domain.RoomID("5550001", "5550002")
	sender, member1, member2 := newRecordingConn(), newRecordingConn(), newRecordingConn()

	manager.Join(roomID, sender)
	manager.Join(roomID, member1)
	manager.Join(roomID, member2)

	evt := event.MessageRead{RoomID: roomID, MessageID: "m-1", ReadBy: "5550001"}
	delivered := manager.BroadcastExceptSender(context.Background(), roomID, sender, evt)

	req.Equal(2, delivered)
	req.Empty(sender.delivered())
	req.Len(member1.delivered(), 1)
	req.Len(member2.delivered(), 1)
	req.Equal(evt, member1.delivered()[0])
}

func TestRoomManager_Broadcast_Empty_Room(t *testing.T) {
	req := require.New(t)
	manager := NewRoomManager(slog.Default())

	delivered := manager.BroadcastExceptSender(context.Background(), "nowhere", newRecordingConn(), event.Typing{})
	req.Zero(delivered)
}

func TestRoomManager_Broadcast_Counts_Only_Successes(t *testing.T) {
	req := require.New(t)
	manager := NewRoomManager(slog.Default())
	roomID := domain.RoomID("5550001", "5550002")
	dead, alive := newRecordingConn(), newRecordingConn()
	dead.fail = true

	manager.Join(roomID, dead)
	manager.Join(roomID, alive)

	delivered := manager.BroadcastExceptSender(context.Background(), roomID, nil, event.Typing{RoomID: roomID})
	req.Equal(1, delivered)
	req.Len(alive.delivered(), 1)
}

func TestRoomManager_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	manager := NewRoomManager(slog.Default())
	roomID := domain.RoomID("5550001", "5550002")
	member := newRecordingConn()

	manager.Join(roomID, member)
	manager.Join(roomID, member)

	delivered := manager.BroadcastExceptSender(context.Background(), roomID, nil, event.Typing{})
	req.Equal(1, delivered)
}

func TestRoomManager_Leave_Removes_Empty_Room(t *testing.T) {
	req := require.New(t)
	manager := NewRoomManager(slog.Default())
	roomID := domain.RoomID("5550001", "5550002")
	member := newRecordingConn()

	manager.Join(roomID, member)
	req.Equal(1, manager.Rooms())

	manager.Leave(roomID, member)
	req.Zero(manager.Rooms())

	// Leaving again is a no-op
	manager.Leave(roomID, member)
	req.Zero(manager.Rooms())
}

func TestRoomManager_DetachAll_Drops_Every_Membership(t *testing.T) {
	req := require.New(t)
	manager := NewRoomManager(slog.Default())
	member, other := newRecordingConn(), newRecordingConn()
	roomA := domain.RoomID("5550001", "5550002")
	roomB := domain.RoomID("5550001", "5550003")

	manager.Join(roomA, member)
	manager.Join(roomB, member)
	manager.Join(roomA, other)

	manager.DetachAll(member)

	req.Equal(1, manager.Rooms())
	req.Zero(manager.BroadcastExceptSender(context.Background(), roomB, nil, event.Typing{}))
	req.Equal(1, manager.BroadcastExceptSender(context.Background(), roomA, nil, event.Typing{}))
}

func TestRoomManager_Concurrent_Join_Leave(t *testing.T) {
	req := require.New(t)
	manager := NewRoomManager(slog.Default())
	roomID := domain.RoomID("5550001", "5550002")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		member := newRecordingConn()
		wg.Add(1)
		go func() {
			defer wg.Done()
			manager.Join(roomID, member)
			manager.Leave(roomID, member)
		}()
	}
	wg.Wait()

	req.Zero(manager.Rooms())
}
