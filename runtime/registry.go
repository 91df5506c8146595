// Package runtime owns the in-memory connection state: the session registry,
// the channel subscription index, the broadcast engine, and the typing
// tracker. Everything here is process-wide mutable state guarded by a single
// mutex per structure; nothing is ever persisted.
package runtime

import (
	"sync"

	"team-hub/contract"
)

type Set map[string]struct{}

// Registry maps authenticated identities to their live connection sink and
// maintains the bidirectional channel membership index.
//
// Invariant: an identity appears in ChannelMembers[c] iff c appears in
// JoinedChannels[identity]. Every mutation updates both directions under the
// same lock.
type Registry struct {
	mu             sync.RWMutex
	Sessions       map[string]contract.EventSink // identity id -> live connection
	ChannelMembers map[string]Set                // channel id -> identity ids
	JoinedChannels map[string]Set                // identity id -> channel ids
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:       make(map[string]contract.EventSink),
		ChannelMembers: make(map[string]Set),
		JoinedChannels: make(map[string]Set),
	}
}

// Register stores or overwrites the session entry for an identity. A second
// handshake for the same identity replaces the first: the registry keeps at
// most one entry per identity.
func (r *Registry) Register(identityID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sessions[identityID] = sink
}

// Lookup returns the currently registered sink for an identity.
func (r *Registry) Lookup(identityID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.Sessions[identityID]
	return sink, ok
}

// IsCurrent reports whether sink is still the registered session for the
// identity. A connection orphaned by a later handshake is not current, and
// its disconnect must not tear down the newer session's state.
func (r *Registry) IsCurrent(identityID string, sink contract.EventSink) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Sessions[identityID] == sink
}

// Join adds the membership association in both directions. Re-joining an
// already-joined channel is a no-op; the return value reports whether the
// association was newly added.
func (r *Registry) Join(identityID, channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ChannelMembers[channelID]; !ok {
		r.ChannelMembers[channelID] = make(Set)
	}
	if _, already := r.ChannelMembers[channelID][identityID]; already {
		return false
	}
	r.ChannelMembers[channelID][identityID] = struct{}{}

	if _, ok := r.JoinedChannels[identityID]; !ok {
		r.JoinedChannels[identityID] = make(Set)
	}
	r.JoinedChannels[identityID][channelID] = struct{}{}
	return true
}

// Leave removes the association in both directions. Leaving a channel that
// was never joined is a no-op. Empty sets are removed so the maps do not
// accumulate dead entries over time.
func (r *Registry) Leave(identityID, channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(identityID, channelID)
}

func (r *Registry) leaveLocked(identityID, channelID string) {
	if members, ok := r.ChannelMembers[channelID]; ok {
		delete(members, identityID)
		if len(members) == 0 {
			delete(r.ChannelMembers, channelID)
		}
	}
	if channels, ok := r.JoinedChannels[identityID]; ok {
		delete(channels, channelID)
		if len(channels) == 0 {
			delete(r.JoinedChannels, identityID)
		}
	}
}

// RemoveConnection drops the session entry and every membership association
// for the identity. It returns the channels that were left so the caller can
// notify their remaining subscribers. Safe to call for an unknown identity.
func (r *Registry) RemoveConnection(identityID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Sessions, identityID)

	var left []string
	for channelID := range r.JoinedChannels[identityID] {
		left = append(left, channelID)
	}
	for _, channelID := range left {
		r.leaveLocked(identityID, channelID)
	}
	return left
}

// HasJoined reports whether the identity is currently subscribed to the
// channel.
func (r *Registry) HasJoined(identityID, channelID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ChannelMembers[channelID][identityID]
	return ok
}

// Members returns the identities currently subscribed to a channel.
func (r *Registry) Members(channelID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]string, 0, len(r.ChannelMembers[channelID]))
	for id := range r.ChannelMembers[channelID] {
		members = append(members, id)
	}
	return members
}

// Channels returns the channels an identity is currently subscribed to.
func (r *Registry) Channels(identityID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channels := make([]string, 0, len(r.JoinedChannels[identityID]))
	for id := range r.JoinedChannels[identityID] {
		channels = append(channels, id)
	}
	return channels
}

// SinksForChannel resolves the subscribers of a channel into their live
// sinks, optionally excluding one identity. A subscriber without a session
// entry is skipped; cleanup belongs to the disconnect path, not here.
func (r *Registry) SinksForChannel(channelID, excludeID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.ChannelMembers[channelID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for identityID := range members {
		if excludeID != "" && identityID == excludeID {
			continue
		}
		if sink, exists := r.Sessions[identityID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}
