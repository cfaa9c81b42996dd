package domain

// MarkReadCommand is the intent of a reader acknowledging a message inside a
// conversation room.
type MarkReadCommand struct {
	RoomID    string
	MessageID string
	Reader    string
}

// TypingCommand signals that an identity is composing inside a room.
type TypingCommand struct {
	RoomID   string
	Identity string
}
