// Package event defines the closed set of server-to-client events and the
// wire envelope they travel in. One JSON envelope per websocket frame.
package event

import "team-hub/domain"

// Type discriminates server events on the wire.
type Type string

const (
	TypeConnectionEstablished Type = "connection_established"
	TypeChannelJoined         Type = "channel_joined"
	TypeChannelLeft           Type = "channel_left"
	TypeNewMessage            Type = "new_message"
	TypeUserTyping            Type = "user_typing"
	TypeUserStoppedTyping     Type = "user_stopped_typing"
	TypeUserJoined            Type = "user_joined"
	TypeUserLeft              Type = "user_left"
	TypeChannelUpdated        Type = "channel_updated"
	TypeError                 Type = "error"
)

// ServerEvent is implemented by every event the server can emit.
type ServerEvent interface {
	EventType() Type
}

// Envelope is the wire shape: {"type": ..., "data": {...}}.
type Envelope struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// Wrap builds the wire envelope for a server event.
func Wrap(e ServerEvent) Envelope {
	return Envelope{Type: e.EventType(), Data: e}
}

type ConnectionEstablished struct {
	User domain.PublicUser `json:"user"`
}

func (ConnectionEstablished) EventType() Type { return TypeConnectionEstablished }

type ChannelJoined struct {
	ChannelID string           `json:"channelId"`
	Messages  []domain.Message `json:"messages"`
}

func (ChannelJoined) EventType() Type { return TypeChannelJoined }

type ChannelLeft struct {
	ChannelID string `json:"channelId"`
}

func (ChannelLeft) EventType() Type { return TypeChannelLeft }

type NewMessage struct {
	Message domain.Message `json:"message"`
}

func (NewMessage) EventType() Type { return TypeNewMessage }

type UserTyping struct {
	ChannelID string            `json:"channelId"`
	User      domain.PublicUser `json:"user"`
}

func (UserTyping) EventType() Type { return TypeUserTyping }

type UserStoppedTyping struct {
	ChannelID string            `json:"channelId"`
	User      domain.PublicUser `json:"user"`
}

func (UserStoppedTyping) EventType() Type { return TypeUserStoppedTyping }

type UserJoined struct {
	ChannelID string            `json:"channelId"`
	User      domain.PublicUser `json:"user"`
}

func (UserJoined) EventType() Type { return TypeUserJoined }

type UserLeft struct {
	ChannelID string            `json:"channelId"`
	User      domain.PublicUser `json:"user"`
}

func (UserLeft) EventType() Type { return TypeUserLeft }

type ChannelUpdated struct {
	ChannelID string `json:"channelId"`
	Update    any    `json:"update"`
}

func (ChannelUpdated) EventType() Type { return TypeChannelUpdated }

type Error struct {
	Message string `json:"message"`
}

func (Error) EventType() Type { return TypeError }
