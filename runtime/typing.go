package runtime

import (
	"sync"
	"time"

	"team-hub/domain"
)

// TypingTracker holds the ephemeral "is composing" state per (channel,
// identity) pair. A typing signal creates or refreshes the state; it is
// removed by an explicit stop, a disconnect, or the expiry sweep. Nothing
// here touches storage.
type TypingTracker struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[string]map[string]time.Time // channel id -> identity id -> expiry
}

func NewTypingTracker(ttl time.Duration) *TypingTracker {
	return &TypingTracker{
		ttl:    ttl,
		states: make(map[string]map[string]time.Time),
	}
}

// Touch records or refreshes the typing state and returns true when the
// identity was not already marked as typing in the channel.
func (t *TypingTracker) Touch(channelID, identityID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.states[channelID]; !ok {
		t.states[channelID] = make(map[string]time.Time)
	}
	_, already := t.states[channelID][identityID]
	t.states[channelID][identityID] = time.Now().Add(t.ttl)
	return !already
}

// Stop clears the typing state and reports whether it existed.
func (t *TypingTracker) Stop(channelID, identityID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeLocked(channelID, identityID)
}

func (t *TypingTracker) removeLocked(channelID, identityID string) bool {
	members, ok := t.states[channelID]
	if !ok {
		return false
	}
	if _, exists := members[identityID]; !exists {
		return false
	}
	delete(members, identityID)
	if len(members) == 0 {
		delete(t.states, channelID)
	}
	return true
}

// RemoveIdentity clears every typing state held by an identity, across all
// channels. Invoked on disconnect.
func (t *TypingTracker) RemoveIdentity(identityID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for channelID := range t.states {
		t.removeLocked(channelID, identityID)
	}
}

// Expired collects and removes every state whose expiry has passed. The
// sweep worker broadcasts a synthesized stop for each returned entry.
func (t *TypingTracker) Expired(now time.Time) []domain.TypingState {
	t.mu.Lock()
	defer t.mu.Unlock()

	var expired []domain.TypingState
	for channelID, members := range t.states {
		for identityID, expiresAt := range members {
			if expiresAt.After(now) {
				continue
			}
			expired = append(expired, domain.TypingState{
				ChannelID:  channelID,
				IdentityID: identityID,
				ExpiresAt:  expiresAt,
			})
		}
	}
	for _, state := range expired {
		t.removeLocked(state.ChannelID, state.IdentityID)
	}
	return expired
}

// IsTyping reports whether the identity currently has live typing state in
// the channel.
func (t *TypingTracker) IsTyping(channelID, identityID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	expiry, ok := t.states[channelID][identityID]
	return ok && expiry.After(time.Now())
}
