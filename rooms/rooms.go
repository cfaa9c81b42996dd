// Package rooms manages conversation-scoped broadcast groups for typing and
// read-receipt events. Membership is transient: it lives only as long as the
// underlying connections do.
package rooms

import (
	"context"
	"log/slog"
	"sync"

	"chat-relay/contract"
	"chat-relay/domain/event"
)

// RoomManager keeps room membership plus a reverse index so a disconnecting
// connection can be detached from every room it joined without the caller
// remembering which ones. One lock serializes membership changes; different
// rooms still broadcast in parallel because delivery happens on a copy taken
// under a read lock.
type RoomManager struct {
	mu      sync.RWMutex
	members map[string]map[string]contract.Conn // roomID -> connID -> conn
	byConn  map[string]map[string]struct{}      // connID -> set of roomIDs
	log     *slog.Logger
}

func NewRoomManager(log *slog.Logger) *RoomManager {
	return &RoomManager{
		members: make(map[string]map[string]contract.Conn),
		byConn:  make(map[string]map[string]struct{}),
		log:     log,
	}
}

// Join adds the connection to the room, creating the room on first join.
// Joining twice is a no-op.
func (m *RoomManager) Join(roomID string, conn contract.Conn) {
	if roomID == "" || conn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	room := m.members[roomID]
	if room == nil {
		room = make(map[string]contract.Conn)
		m.members[roomID] = room
	}
	room[conn.ID()] = conn

	memberships := m.byConn[conn.ID()]
	if memberships == nil {
		memberships = make(map[string]struct{})
		m.byConn[conn.ID()] = memberships
	}
	memberships[roomID] = struct{}{}
}

// Leave removes the connection from the room. Leaving a room never joined is
// a no-op. An emptied room is deleted rather than kept around.
func (m *RoomManager) Leave(roomID string, conn contract.Conn) {
	if roomID == "" || conn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveLocked(roomID, conn.ID())
}

// DetachAll removes the connection from every room it joined. Called on
// transport-level disconnect, where the connection cannot enumerate its rooms.
func (m *RoomManager) DetachAll(conn contract.Conn) {
	if conn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for roomID := range m.byConn[conn.ID()] {
		m.leaveLocked(roomID, conn.ID())
	}
	delete(m.byConn, conn.ID())
}

// BroadcastExceptSender delivers e to every member of roomID other than
// sender and returns the number of successful deliveries. A failed delivery
// to one member never aborts delivery to the rest; members that disconnected
// without an explicit Leave simply fail their send.
func (m *RoomManager) BroadcastExceptSender(ctx context.Context, roomID string, sender contract.Conn, e event.Outbound) int {
	m.mu.RLock()
	room := m.members[roomID]
	targets := make([]contract.Conn, 0, len(room))
	for id, c := range room {
		if sender != nil && id == sender.ID() {
			continue
		}
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if err := c.Deliver(ctx, e); err != nil {
			m.log.Warn("room delivery failed",
				"room_id", roomID,
				"connection_id", c.ID(),
				"event", e.Name(),
				"error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (m *RoomManager) Rooms() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members)
}

func (m *RoomManager) leaveLocked(roomID, connID string) {
	room := m.members[roomID]
	if room == nil {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(m.members, roomID)
	}
	if memberships, ok := m.byConn[connID]; ok {
		delete(memberships, roomID)
		if len(memberships) == 0 {
			delete(m.byConn, connID)
		}
	}
}
