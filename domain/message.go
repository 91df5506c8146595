// Package domain contains core concepts of the messaging system.
// This file defines Message records and related rules.
// Messages are immutable once persisted.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageType tags the kind of content a message carries.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
	MessageCall   MessageType = "call"
)

// Message represents a chat message scoped to exactly one channel.
// ID and CreatedAt are assigned by Storage at persist time; listeners always
// see the storage-confirmed record, never the client's ephemeral copy.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	ChannelID string      `json:"channelId"`
	AuthorID  string      `json:"userId"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	ReplyToID *uuid.UUID  `json:"replyToId,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
