package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomID_Symmetric_And_Deterministic(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"already ordered", "5550001", "5550002", "5550001|5550002"},
		{"reversed", "5550002", "5550001", "5550001|5550002"},
		{"identical repeated calls", "alice", "bob", "alice|bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(tt.want, RoomID(tt.a, tt.b))
			req.Equal(RoomID(tt.a, tt.b), RoomID(tt.b, tt.a))
		})
	}
}

func TestRoomMembers_Round_Trips(t *testing.T) {
	req := require.New(t)

	a, b, ok := RoomMembers(RoomID("5550002", "5550001"))
	req.True(ok)
	req.Equal("5550001", a)
	req.Equal("5550002", b)

	_, _, ok = RoomMembers("not-a-room")
	req.False(ok)
}

func TestDeliveryResult_Delivered(t *testing.T) {
	req := require.New(t)
	req.False(DeliveryResult{Attempted: true}.Delivered())
	req.True(DeliveryResult{Attempted: true, ConnectionsNotified: 1}.Delivered())
}
