package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"chat-relay/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id string
}

func newFakeConn() *fakeConn {
	return &fakeConn{id: uuid.NewString()}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Deliver(ctx context.Context, e event.Outbound) error { return nil }

func TestRegistry_Resolve_Unknown_Identity(t *testing.T) {
	req := require.New(t)
	reg := NewConnectionRegistry(slog.Default())

	req.Empty(reg.Resolve("5550001"))
	req.Empty(reg.Snapshot())
}

func TestRegistry_Register_Multiple_Devices(t *testing.T) {
	req := require.New(t)
	reg := NewConnectionRegistry(slog.Default())
	c1, c2 := newFakeConn(), newFakeConn()

	reg.Register("5550001", c1)
	reg.Register("5550001", c2)

	conns := reg.Resolve("5550001")
	req.Len(conns, 2)
	req.ElementsMatch([]string{c1.ID(), c2.ID()}, []string{conns[0].ID(), conns[1].ID()})
	req.Equal(1, reg.Identities())
	req.Equal(2, reg.Connections())
}

func TestRegistry_Register_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	reg := NewConnectionRegistry(slog.Default())
	c1 := newFakeConn()

	reg.Register("5550001", c1)
	reg.Register("5550001", c1)

	req.Len(reg.Resolve("5550001"), 1)
	req.Equal(1, reg.Connections())
}

func TestRegistry_Unregister_Removes_Empty_Identity(t *testing.T) {
	req := require.New(t)
	reg := NewConnectionRegistry(slog.Default())
	c1, c2 := newFakeConn(), newFakeConn()
	reg.Register("5550001", c1)
	reg.Register("5550001", c2)

	identity, ok := reg.Unregister(c1)
	req.True(ok)
	req.Equal("5550001", identity)
	remaining := reg.Resolve("5550001")
	req.Len(remaining, 1)
	req.Equal(c2.ID(), remaining[0].ID())

	identity, ok = reg.Unregister(c2)
	req.True(ok)
	req.Equal("5550001", identity)
	req.Empty(reg.Resolve("5550001"))
	// The identity entry is deleted, not kept empty
	req.NotContains(reg.Snapshot(), "5550001")
}

func TestRegistry_Unregister_Unknown_Connection_Is_Noop(t *testing.T) {
	req := require.New(t)
	reg := NewConnectionRegistry(slog.Default())

	identity, ok := reg.Unregister(newFakeConn())
	req.False(ok)
	req.Empty(identity)
}

func TestRegistry_Unregister_Twice_Is_Noop(t *testing.T) {
	req := require.New(t)
	reg := NewConnectionRegistry(slog.Default())
	c1 := newFakeConn()
	reg.Register("5550001", c1)

	_, ok := reg.Unregister(c1)
	req.True(ok)
	_, ok = reg.Unregister(c1)
	req.False(ok)
}

func TestRegistry_Reregister_Moves_Connection(t *testing.T) {
	req := require.New(t)
	reg := NewConnectionRegistry(slog.Default())
	c1 := newFakeConn()

	reg.Register("5550001", c1)
	reg.Register("5550002", c1)

	// A connection belongs to at most one identity
	req.Empty(reg.Resolve("5550001"))
	req.Len(reg.Resolve("5550002"), 1)
	req.Equal(1, reg.Connections())
}

func TestRegistry_Snapshot_Sorted_Connection_IDs(t *testing.T) {
	req := require.New(t)
	reg := NewConnectionRegistry(slog.Default())
	c1, c2 := newFakeConn(), newFakeConn()
	reg.Register("5550001", c1)
	reg.Register("5550001", c2)
	reg.Register("5550002", newFakeConn())

	snapshot := reg.Snapshot()
	req.Len(snapshot, 2)
	req.Len(snapshot["5550001"], 2)
	req.LessOrEqual(snapshot["5550001"][0], snapshot["5550001"][1])
}

func TestRegistry_Concurrent_Register_Unregister(t *testing.T) {
	req := require.New(t)
	reg := NewConnectionRegistry(slog.Default())
	const n = 64

	conns := make([]*fakeConn, n)
	for i := range conns {
		conns[i] = newFakeConn()
	}

	var wg sync.WaitGroup
	for i := range conns {
		wg.Add(1)
		go func(c *fakeConn) {
			defer wg.Done()
			reg.Register("5550001", c)
		}(conns[i])
	}
	wg.Wait()
	req.Equal(n, reg.Connections())

	// Interleave a second wave of registrations with the unregistrations
	extra := make([]*fakeConn, n)
	for i := range extra {
		extra[i] = newFakeConn()
	}
	for i := range conns {
		wg.Add(2)
		go func(c *fakeConn) {
			defer wg.Done()
			_, ok := reg.Unregister(c)
			req.True(ok)
		}(conns[i])
		go func(c *fakeConn) {
			defer wg.Done()
			reg.Register(fmt.Sprintf("555%04d", 2), c)
			_, _ = reg.Unregister(c)
		}(extra[i])
	}
	wg.Wait()

	// Every operation completed: the registry must be empty again
	req.Zero(reg.Connections())
	req.Zero(reg.Identities())
	req.NotContains(reg.Snapshot(), "5550001")
}
