package domain

import "strings"

const roomSeparator = "|"

// RoomID derives the conversation room shared by two identities.
// It is deterministic and symmetric (RoomID(a, b) == RoomID(b, a)) so both
// ends agree on the same room without any coordination.
func RoomID(identityA, identityB string) string {
	if identityB < identityA {
		identityA, identityB = identityB, identityA
	}
	return identityA + roomSeparator + identityB
}

// RoomMembers splits a room identifier back into its two identities.
// The second return is false for identifiers not produced by RoomID.
func RoomMembers(roomID string) (string, string, bool) {
	a, b, ok := strings.Cut(roomID, roomSeparator)
	if !ok || a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}
