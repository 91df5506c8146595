// Package chat defines the commands a connected client can issue. The json
// tags match the wire payloads; the validate tags enforce the shape rules
// the dispatcher applies before touching storage.
package chat

import (
	"github.com/google/uuid"

	"team-hub/domain"
)

type JoinChannelCommand struct {
	ChannelID string `json:"channelId" validate:"required"`
}

type LeaveChannelCommand struct {
	ChannelID string `json:"channelId" validate:"required"`
}

type SendMessageCommand struct {
	ChannelID string             `json:"channelId" validate:"required"`
	Content   string             `json:"content" validate:"required"`
	Type      domain.MessageType `json:"type,omitempty"`
	ReplyToID *uuid.UUID         `json:"replyToId,omitempty"`
}

type TypingCommand struct {
	ChannelID string `json:"channelId" validate:"required"`
}
