package repositories

import (
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func parkedMessage(receiver string, at time.Time, body string) domain.Message {
	return domain.Message{
		ID:             uuid.New(),
		ConversationID: "conv_1",
		Sender:         "5550002",
		Receiver:       receiver,
		Body:           body,
		Kind:           domain.KindText,
		Timestamp:      at,
	}
}

func Test_Park_And_Pending_Preserves_Chronological_Order(t *testing.T) {
	req := require.New(t)
	repository := NewInboxRepository(openTestDB(t), slog.Default(), 0)
	receiver := "5550001"
	at := time.Now().UTC()

	messages := []domain.Message{
		parkedMessage(receiver, at, "first"),
		parkedMessage(receiver, at.Add(1*time.Minute), "second"),
		parkedMessage(receiver, at.Add(2*time.Minute), "third"),
	}
	// Park out of order; keys must restore chronology
	for _, i := range []int{2, 0, 1} {
		req.NoError(repository.Park(messages[i]))
	}

	pending, err := repository.Pending(receiver)
	req.NoError(err)
	req.Equal(messages, pending)
}

func Test_Pending_Unknown_Identity_Is_Empty(t *testing.T) {
	req := require.New(t)
	repository := NewInboxRepository(openTestDB(t), slog.Default(), 0)

	pending, err := repository.Pending("5559999")
	req.NoError(err)
	req.Empty(pending)
}

func Test_Pending_Does_Not_Leak_Across_Identities(t *testing.T) {
	req := require.New(t)
	repository := NewInboxRepository(openTestDB(t), slog.Default(), 0)
	at := time.Now().UTC()

	req.NoError(repository.Park(parkedMessage("5550001", at, "for alice")))
	req.NoError(repository.Park(parkedMessage("5550002", at, "for bob")))

	pending, err := repository.Pending("5550001")
	req.NoError(err)
	req.Len(pending, 1)
	req.Equal("for alice", pending[0].Body)
}

func Test_Drain_Removes_Parked_Messages(t *testing.T) {
	req := require.New(t)
	repository := NewInboxRepository(openTestDB(t), slog.Default(), 0)
	receiver := "5550001"
	at := time.Now().UTC()

	req.NoError(repository.Park(parkedMessage(receiver, at, "a")))
	req.NoError(repository.Park(parkedMessage(receiver, at.Add(time.Second), "b")))

	drained, err := repository.Drain(receiver)
	req.NoError(err)
	req.Len(drained, 2)
	req.Equal([]string{"a", "b"}, lo.Map(drained, func(m domain.Message, _ int) string { return m.Body }))

	// A second drain finds nothing
	drained, err = repository.Drain(receiver)
	req.NoError(err)
	req.Empty(drained)
}

func Test_Park_Defaults_Kind_On_Read(t *testing.T) {
	req := require.New(t)
	repository := NewInboxRepository(openTestDB(t), slog.Default(), 0)
	msg := parkedMessage("5550001", time.Now().UTC(), "x")
	msg.Kind = ""

	req.NoError(repository.Park(msg))
	pending, err := repository.Pending("5550001")
	req.NoError(err)
	req.Equal(domain.KindText, pending[0].Kind)
}
