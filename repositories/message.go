//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"team-hub/domain"
	apperrors "team-hub/errors"
)

type IMessageRepository interface {
	StoreMessage(msg domain.Message) (domain.Message, error)
	GetChannelMessages(channelID string, limit int) ([]domain.Message, error)
	GetMessageByID(id string) (domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// StoreMessage persists a message and returns the canonical record with the
// server-assigned id and timestamp.
// The key is formatted as "msg:{channel_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
//
// A secondary key "msgid:{uuid}" points to the primary key for id lookups.
func (m MessageRepository) StoreMessage(msg domain.Message) (domain.Message, error) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if msg.Type == "" {
		msg.Type = domain.MessageText
	}

	key := fmt.Sprintf("msg:%s:%019d:%s", msg.ChannelID, msg.CreatedAt.UnixNano(), msg.ID)
	bytes, err := json.Marshal(msg)
	if err != nil {
		return domain.Message{}, err
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), bytes); err != nil {
			return err
		}
		return txn.Set([]byte("msgid:"+msg.ID.String()), []byte(key))
	})
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// GetChannelMessages retrieves the most recent messages for a channel using a
// reverse prefix scan. Thanks to the padded timestamp in the key, messages
// come out newest first; callers display them ascending.
func (m MessageRepository) GetChannelMessages(channelID string, limit int) ([]domain.Message, error) {
	messages := make([]domain.Message, 0, limit)
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", channelID)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached for channel %s", limit, channelID))
				break
			}
			var msg domain.Message
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &msg)
			})
			if err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetMessageByID resolves the secondary index and loads the record.
func (m MessageRepository) GetMessageByID(id string) (domain.Message, error) {
	var msg domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("msgid:" + id))
		if err != nil {
			return err
		}
		var primaryKey []byte
		if err := item.Value(func(val []byte) error {
			primaryKey = append([]byte{}, val...)
			return nil
		}); err != nil {
			return err
		}
		item, err = txn.Get(primaryKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &msg)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, apperrors.ErrMessageNotFound
	}
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}
