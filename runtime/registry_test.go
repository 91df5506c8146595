package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"team-hub/domain/event"
)

type Sink struct {
	name string
}

func (s Sink) Consume(ctx context.Context, e event.ServerEvent) error {
	return nil
}

func TestRegistry_Register_One_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	sink := Sink{name: "a"}

	// Given no user is connected
	req.Empty(registry.Sessions)
	req.Empty(registry.ChannelMembers)

	// When an identity registers
	registry.Register(identityID, sink)

	// Then
	req.Len(registry.Sessions, 1)
	req.Equal(sink, registry.Sessions[identityID])
	req.True(registry.IsCurrent(identityID, sink))
}

func TestRegistry_Register_Twice_Keeps_Latest(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	first := Sink{name: "first"}
	second := Sink{name: "second"}

	// Given an identity already connected
	registry.Register(identityID, first)

	// When a second handshake arrives for the same identity
	registry.Register(identityID, second)

	// Then at most one entry exists, the latest one
	req.Len(registry.Sessions, 1)
	req.Equal(second, registry.Sessions[identityID])
	req.False(registry.IsCurrent(identityID, first))
	req.True(registry.IsCurrent(identityID, second))
}

func TestRegistry_Join_Updates_Both_Directions(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	channelID := uuid.NewString()

	// When an identity joins a channel
	added := registry.Join(identityID, channelID)

	// Then the association exists in both directions
	req.True(added)
	req.True(registry.HasJoined(identityID, channelID))
	req.Contains(registry.ChannelMembers[channelID], identityID)
	req.Contains(registry.JoinedChannels[identityID], channelID)
}

func TestRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	channelID := uuid.NewString()

	// Given a joined channel
	req.True(registry.Join(identityID, channelID))

	// When the same identity joins again
	added := registry.Join(identityID, channelID)

	// Then nothing changed
	req.False(added)
	req.Len(registry.ChannelMembers[channelID], 1)
	req.Len(registry.JoinedChannels[identityID], 1)
}

func TestRegistry_Leave_Unknown_Channel_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When leaving a channel that was never joined
	registry.Leave(uuid.NewString(), uuid.NewString())

	// Then nothing exists and nothing panicked
	req.Empty(registry.ChannelMembers)
	req.Empty(registry.JoinedChannels)
}

func TestRegistry_Leave_Removes_Empty_Sets(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	channelID := uuid.NewString()
	registry.Join(identityID, channelID)

	// When the only member leaves
	registry.Leave(identityID, channelID)

	// Then both maps dropped their empty sets
	req.Empty(registry.ChannelMembers)
	req.Empty(registry.JoinedChannels)
	req.False(registry.HasJoined(identityID, channelID))
}

func TestRegistry_RemoveConnection_Returns_Left_Channels(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	other := uuid.NewString()
	channel1 := uuid.NewString()
	channel2 := uuid.NewString()

	// Given an identity in two channels, one shared with another member
	registry.Register(identityID, Sink{name: "a"})
	registry.Join(identityID, channel1)
	registry.Join(identityID, channel2)
	registry.Join(other, channel1)

	// When the connection is removed
	left := registry.RemoveConnection(identityID)

	// Then every trace of the identity is gone
	req.ElementsMatch([]string{channel1, channel2}, left)
	req.Empty(registry.Sessions)
	req.False(registry.HasJoined(identityID, channel1))
	req.False(registry.HasJoined(identityID, channel2))

	// And the other member's membership is untouched
	req.True(registry.HasJoined(other, channel1))
}

func TestRegistry_RemoveConnection_Unknown_Identity_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When removing an identity that never connected
	left := registry.RemoveConnection(uuid.NewString())

	// Then
	req.Empty(left)
}

func TestRegistry_SinksForChannel_Excludes_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	actor := uuid.NewString()
	peer := uuid.NewString()
	channelID := uuid.NewString()
	actorSink := Sink{name: "actor"}
	peerSink := Sink{name: "peer"}

	registry.Register(actor, actorSink)
	registry.Register(peer, peerSink)
	registry.Join(actor, channelID)
	registry.Join(peer, channelID)

	// When resolving sinks excluding the actor
	sinks := registry.SinksForChannel(channelID, actor)

	// Then only the peer receives
	req.Len(sinks, 1)
	req.Contains(sinks, peerSink)

	// And with no exclusion everyone receives
	req.Len(registry.SinksForChannel(channelID, ""), 2)
}

func TestRegistry_SinksForChannel_Skips_Members_Without_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	identityID := uuid.NewString()
	channelID := uuid.NewString()

	// Given a membership whose session is gone
	registry.Join(identityID, channelID)

	// When resolving sinks
	sinks := registry.SinksForChannel(channelID, "")

	// Then the dangling member is skipped silently
	req.Empty(sinks)
}
