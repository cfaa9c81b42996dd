//go:generate go run go.uber.org/mock/mockgen -source=inbox.go -destination=../mocks/mock_inbox_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IInboxRepository interface {
	Park(msg domain.Message) error
	Pending(identity string) ([]domain.Message, error)
	Drain(identity string) ([]domain.Message, error)
}

// InboxRepository parks messages for identities with no live device and
// replays them on the next registration. Entries carry an optional TTL so an
// inbox for an identity that never comes back eventually decays.
type InboxRepository struct {
	db  *badger.DB
	log *slog.Logger
	ttl time.Duration
}

func NewInboxRepository(db *badger.DB, log *slog.Logger, ttl time.Duration) InboxRepository {
	return InboxRepository{db: db, log: log, ttl: ttl}
}

type diskMessage struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	Sender         string      `json:"sender"`
	Receiver       string      `json:"receiver"`
	Body           string      `json:"body"`
	Kind           domain.Kind `json:"kind"`
	MediaRef       string      `json:"mediaRef,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

// Park persists a message under "inbox:{identity}:{timestamp_padded}:{uuid}".
// The 19-digit zero padding keeps keys in chronological order under badger's
// lexicographic iteration; the trailing UUID disambiguates two messages
// parked in the same nanosecond.
func (r InboxRepository) Park(msg domain.Message) error {
	key := inboxKey(msg.Receiver, msg.Timestamp, msg.ID)
	bytes, err := json.Marshal(fromMessage(msg))
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), bytes)
		if r.ttl > 0 {
			entry = entry.WithTTL(r.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Pending lists the parked messages for an identity, oldest first, without
// removing them.
func (r InboxRepository) Pending(identity string) ([]domain.Message, error) {
	var raw [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		raw, _, err = r.collect(txn, identity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.decode(raw)
}

// Drain fetches and deletes the parked messages for an identity in one
// transaction, so a crash between fetch and delete never replays twice.
func (r InboxRepository) Drain(identity string) ([]domain.Message, error) {
	var raw [][]byte
	err := r.db.Update(func(txn *badger.Txn) error {
		collected, keys, err := r.collect(txn, identity)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		raw = collected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.decode(raw)
}

func (r InboxRepository) collect(txn *badger.Txn, identity string) ([][]byte, [][]byte, error) {
	prefix := []byte(fmt.Sprintf("inbox:%s:", identity))
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var values [][]byte
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		keys = append(keys, item.KeyCopy(nil))
		value, err := item.ValueCopy(nil)
		if err != nil {
			return nil, nil, err
		}
		values = append(values, value)
	}
	return values, keys, nil
}

func (r InboxRepository) decode(raw [][]byte) ([]domain.Message, error) {
	messages := make([]domain.Message, 0, len(raw))
	for _, bytes := range raw {
		var dm diskMessage
		if err := json.Unmarshal(bytes, &dm); err != nil {
			return nil, err
		}
		msg, err := toMessage(dm)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func inboxKey(identity string, at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("inbox:%s:%019d:%s", identity, at.UnixNano(), id)
}

func fromMessage(msg domain.Message) diskMessage {
	return diskMessage{
		ID:             msg.ID.String(),
		ConversationID: msg.ConversationID,
		Sender:         msg.Sender,
		Receiver:       msg.Receiver,
		Body:           msg.Body,
		Kind:           msg.Kind,
		MediaRef:       msg.MediaRef,
		Timestamp:      msg.Timestamp,
	}
}

func toMessage(dm diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:             parsedID,
		ConversationID: dm.ConversationID,
		Sender:         dm.Sender,
		Receiver:       dm.Receiver,
		Body:           dm.Body,
		Kind:           lo.Ternary(dm.Kind != "", dm.Kind, domain.KindText),
		MediaRef:       dm.MediaRef,
		Timestamp:      dm.Timestamp.UTC(),
	}, nil
}
