// Package registry owns the identity -> connections mapping, the single piece
// of shared mutable state in the relay.
package registry

import (
	"log/slog"
	"sort"
	"sync"

	"chat-relay/contract"
)

// ConnectionRegistry tracks every live connection under the identity that
// registered it. A forward index serves fan-out lookups; a reverse index lets
// the disconnect path unregister without knowing the identity the connection
// authenticated as. Both indexes mutate under one exclusive lock so no reader
// ever observes a half-applied state.
type ConnectionRegistry struct {
	mu         sync.RWMutex
	byIdentity map[string]map[string]contract.Conn // identity -> connID -> conn
	byConn     map[string]string                   // connID -> identity
	log        *slog.Logger
}

func NewConnectionRegistry(log *slog.Logger) *ConnectionRegistry {
	return &ConnectionRegistry{
		byIdentity: make(map[string]map[string]contract.Conn),
		byConn:     make(map[string]string),
		log:        log,
	}
}

// Register adds conn to the identity's set, creating the set if absent.
// Registering the same connection twice is a no-op; re-registering it under a
// different identity moves it, keeping the at-most-one-owner invariant.
func (r *ConnectionRegistry) Register(identity string, conn contract.Conn) {
	if identity == "" || conn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.byConn[conn.ID()]; ok {
		if previous == identity {
			r.byIdentity[identity][conn.ID()] = conn
			return
		}
		r.removeLocked(previous, conn.ID())
	}

	set := r.byIdentity[identity]
	if set == nil {
		set = make(map[string]contract.Conn)
		r.byIdentity[identity] = set
	}
	set[conn.ID()] = conn
	r.byConn[conn.ID()] = identity

	r.log.Debug("connection registered",
		"identity", identity,
		"connection_id", conn.ID(),
		"devices", len(set))
}

// Unregister removes the connection from whichever identity holds it.
// When the identity's set becomes empty the identity entry is deleted, so an
// identity is present exactly when it has at least one live connection.
// A stale or duplicate unregister is a no-op to tolerate double-disconnects.
func (r *ConnectionRegistry) Unregister(conn contract.Conn) (string, bool) {
	if conn == nil {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.byConn[conn.ID()]
	if !ok {
		return "", false
	}
	r.removeLocked(identity, conn.ID())

	r.log.Debug("connection unregistered",
		"identity", identity,
		"connection_id", conn.ID(),
		"devices", len(r.byIdentity[identity]))
	return identity, true
}

// Resolve returns a copy of the identity's current connection set; empty for
// an unknown identity. The copy is the fan-out snapshot: connections that
// register afterwards are not retroactively included.
func (r *ConnectionRegistry) Resolve(identity string) []contract.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byIdentity[identity]
	if len(set) == 0 {
		return nil
	}
	out := make([]contract.Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// Snapshot dumps the full mapping as identity -> sorted connection IDs.
func (r *ConnectionRegistry) Snapshot() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.byIdentity))
	for identity, set := range r.byIdentity {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[identity] = ids
	}
	return out
}

func (r *ConnectionRegistry) Identities() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIdentity)
}

func (r *ConnectionRegistry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

func (r *ConnectionRegistry) removeLocked(identity, connID string) {
	delete(r.byConn, connID)
	if set, ok := r.byIdentity[identity]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.byIdentity, identity)
		}
	}
}
