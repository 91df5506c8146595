package domain

import "time"

// TypingState is the ephemeral "is composing" flag for one (channel, identity)
// pair. It is never persisted: it is created by a typing signal, refreshed on
// repeated signals, and removed by stop_typing, disconnect, or expiry.
type TypingState struct {
	ChannelID  string
	IdentityID string
	ExpiresAt  time.Time
}
