package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"team-hub/domain"
	"team-hub/domain/chat"
	"team-hub/domain/event"
	apperrors "team-hub/errors"
	"team-hub/mocks"
	"team-hub/moderation"
	"team-hub/observability"
	"team-hub/runtime"
)

type recordSink struct {
	events []event.ServerEvent
}

func (s *recordSink) Consume(ctx context.Context, e event.ServerEvent) error {
	s.events = append(s.events, e)
	return nil
}

func (s *recordSink) typesReceived() []event.Type {
	types := make([]event.Type, 0, len(s.events))
	for _, e := range s.events {
		types = append(types, e.EventType())
	}
	return types
}

type chatFixture struct {
	service  *ChatService
	storage  *mocks.MockStorage
	registry *runtime.Registry
	typing   *runtime.TypingTracker
}

func newChatFixture(t *testing.T) chatFixture {
	t.Helper()
	log := slog.Default()
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockStorage(ctrl)
	registry := runtime.NewRegistry()
	monitoring := observability.NewMonitoringManager(log)
	broadcaster := runtime.NewBroadcaster(log, registry, monitoring)
	typing := runtime.NewTypingTracker(5 * time.Second)
	moderator, err := moderation.NewModerator([]string{"frick"}, '*')
	require.NoError(t, err)

	service := NewChatService(log, storage, registry, broadcaster, typing, &moderator, 50)
	return chatFixture{service: service, storage: storage, registry: registry, typing: typing}
}

func identity(name string) domain.Identity {
	return domain.Identity{
		ID:        uuid.NewString(),
		Email:     name + "@team-hub.dev",
		FirstName: name,
	}
}

func TestChatService_JoinChannel_Unknown_Channel(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	sink := &recordSink{}
	f.service.Connect(context.Background(), actor, sink)

	// Given a channel id that resolves to nothing
	channelID := uuid.NewString()
	f.storage.EXPECT().
		GetChannelByID(gomock.Any(), channelID).
		Return(domain.Channel{}, apperrors.ErrChannelNotFound)

	// When joining
	err := f.service.JoinChannel(context.Background(), actor, chat.JoinChannelCommand{ChannelID: channelID})

	// Then the sender gets the error and no membership exists
	req.ErrorIs(err, apperrors.ErrChannelNotFound)
	req.False(f.registry.HasJoined(actor.ID, channelID))
}

func TestChatService_JoinChannel_Nil_History_Becomes_Empty_Snapshot(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	sink := &recordSink{}
	f.service.Connect(context.Background(), actor, sink)

	channel := domain.Channel{ID: uuid.NewString(), TeamID: uuid.NewString(), Name: "general"}
	f.storage.EXPECT().GetChannelByID(gomock.Any(), channel.ID).Return(channel, nil)
	f.storage.EXPECT().GetUserTeams(gomock.Any(), actor.ID).Return([]domain.Team{{ID: channel.TeamID}}, nil)

	// Given a storage implementation that reports an empty history as nil
	f.storage.EXPECT().GetChannelMessages(gomock.Any(), channel.ID, 50).Return(nil, nil)

	// When joining
	req.NoError(f.service.JoinChannel(context.Background(), actor, chat.JoinChannelCommand{ChannelID: channel.ID}))

	// Then the snapshot marshals as an empty array, never null
	var snapshot event.ChannelJoined
	found := false
	for _, e := range sink.events {
		if joined, ok := e.(event.ChannelJoined); ok {
			snapshot = joined
			found = true
		}
	}
	req.True(found)
	req.NotNil(snapshot.Messages)
	data, err := json.Marshal(snapshot)
	req.NoError(err)
	req.Contains(string(data), `"messages":[]`)
}

func TestChatService_JoinChannel_Access_Denied(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	sink := &recordSink{}
	f.service.Connect(context.Background(), actor, sink)

	channel := domain.Channel{ID: uuid.NewString(), TeamID: uuid.NewString(), Name: "general"}
	f.storage.EXPECT().
		GetChannelByID(gomock.Any(), channel.ID).
		Return(channel, nil)

	// Given the user belongs to a different team
	f.storage.EXPECT().
		GetUserTeams(gomock.Any(), actor.ID).
		Return([]domain.Team{{ID: uuid.NewString()}}, nil)

	// When joining
	err := f.service.JoinChannel(context.Background(), actor, chat.JoinChannelCommand{ChannelID: channel.ID})

	// Then
	req.ErrorIs(err, apperrors.ErrAccessDenied)
	req.False(f.registry.HasJoined(actor.ID, channel.ID))
	req.Empty(sink.events)
}

func TestChatService_JoinChannel_Happy_Path(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	peer := identity("bob")
	actorSink := &recordSink{}
	peerSink := &recordSink{}

	channel := domain.Channel{ID: uuid.NewString(), TeamID: uuid.NewString(), Name: "general"}
	history := []domain.Message{{ID: uuid.New(), ChannelID: channel.ID, Content: "earlier"}}

	f.service.Connect(context.Background(), actor, actorSink)
	f.service.Connect(context.Background(), peer, peerSink)
	f.registry.Join(peer.ID, channel.ID)

	f.storage.EXPECT().GetChannelByID(gomock.Any(), channel.ID).Return(channel, nil)
	f.storage.EXPECT().GetUserTeams(gomock.Any(), actor.ID).
		Return([]domain.Team{{ID: channel.TeamID, Name: "demo"}}, nil)
	f.storage.EXPECT().GetChannelMessages(gomock.Any(), channel.ID, 50).Return(history, nil)

	// When joining
	err := f.service.JoinChannel(context.Background(), actor, chat.JoinChannelCommand{ChannelID: channel.ID})

	// Then the membership exists in both directions
	req.NoError(err)
	req.True(f.registry.HasJoined(actor.ID, channel.ID))

	// And the actor received the snapshot but not its own presence echo
	req.Equal([]event.Type{event.TypeChannelJoined}, actorSink.typesReceived())
	joined := actorSink.events[0].(event.ChannelJoined)
	req.Equal(history, joined.Messages)

	// And the peer was notified
	req.Equal([]event.Type{event.TypeUserJoined}, peerSink.typesReceived())
	userJoined := peerSink.events[0].(event.UserJoined)
	req.Equal(actor.ID, userJoined.User.ID)
	req.Empty(userJoined.User.Email)
}

func TestChatService_JoinChannel_Duplicate_Returns_Snapshot_Without_Presence(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	peer := identity("bob")
	actorSink := &recordSink{}
	peerSink := &recordSink{}

	channel := domain.Channel{ID: uuid.NewString(), TeamID: uuid.NewString()}

	f.service.Connect(context.Background(), actor, actorSink)
	f.service.Connect(context.Background(), peer, peerSink)
	f.registry.Join(peer.ID, channel.ID)

	f.storage.EXPECT().GetChannelByID(gomock.Any(), channel.ID).Return(channel, nil).Times(2)
	f.storage.EXPECT().GetUserTeams(gomock.Any(), actor.ID).
		Return([]domain.Team{{ID: channel.TeamID}}, nil).Times(2)
	f.storage.EXPECT().GetChannelMessages(gomock.Any(), channel.ID, 50).
		Return([]domain.Message{}, nil).Times(2)

	// When joining twice
	cmd := chat.JoinChannelCommand{ChannelID: channel.ID}
	req.NoError(f.service.JoinChannel(context.Background(), actor, cmd))
	req.NoError(f.service.JoinChannel(context.Background(), actor, cmd))

	// Then the actor got two snapshots, the peer exactly one user_joined
	req.Equal([]event.Type{event.TypeChannelJoined, event.TypeChannelJoined}, actorSink.typesReceived())
	req.Equal([]event.Type{event.TypeUserJoined}, peerSink.typesReceived())
}

func TestChatService_SendMessage_Validation(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")

	// When the channel id is missing
	err := f.service.SendMessage(context.Background(), actor,
		chat.SendMessageCommand{Content: "hello"})
	req.ErrorIs(err, apperrors.ErrChannelIDRequired)

	// When the content is missing
	err = f.service.SendMessage(context.Background(), actor,
		chat.SendMessageCommand{ChannelID: uuid.NewString()})
	req.ErrorIs(err, apperrors.ErrContentRequired)
}

func TestChatService_SendMessage_Requires_Join(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	channel := domain.Channel{ID: uuid.NewString(), TeamID: uuid.NewString()}

	f.storage.EXPECT().GetChannelByID(gomock.Any(), channel.ID).Return(channel, nil)

	// When sending without having joined
	err := f.service.SendMessage(context.Background(), actor,
		chat.SendMessageCommand{ChannelID: channel.ID, Content: "hello"})

	// Then nothing was persisted or broadcast
	req.ErrorIs(err, apperrors.ErrMustJoinFirst)
}

func TestChatService_SendMessage_Broadcasts_Canonical_Record_To_All(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	peer := identity("bob")
	actorSink := &recordSink{}
	peerSink := &recordSink{}
	channel := domain.Channel{ID: uuid.NewString(), TeamID: uuid.NewString()}

	f.service.Connect(context.Background(), actor, actorSink)
	f.service.Connect(context.Background(), peer, peerSink)
	f.registry.Join(actor.ID, channel.ID)
	f.registry.Join(peer.ID, channel.ID)

	f.storage.EXPECT().GetChannelByID(gomock.Any(), channel.ID).Return(channel, nil)

	var persisted domain.Message
	f.storage.EXPECT().
		CreateMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg domain.Message) (domain.Message, error) {
			msg.ID = uuid.New()
			msg.CreatedAt = time.Now().UTC()
			msg.Type = domain.MessageText
			persisted = msg
			return msg, nil
		})
	f.storage.EXPECT().
		GetMessageByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id string) (domain.Message, error) {
			return persisted, nil
		})

	// When sending a message containing a censored word
	err := f.service.SendMessage(context.Background(), actor,
		chat.SendMessageCommand{ChannelID: channel.ID, Content: "frick this bug"})
	req.NoError(err)

	// Then everyone received the storage-confirmed record, sender included
	req.Equal([]event.Type{event.TypeNewMessage}, actorSink.typesReceived())
	req.Equal([]event.Type{event.TypeNewMessage}, peerSink.typesReceived())

	delivered := actorSink.events[0].(event.NewMessage).Message
	req.Equal(persisted.ID, delivered.ID)
	req.Equal(actor.ID, delivered.AuthorID)

	// And the moderation pass replaced the censored word
	req.Equal("***** this bug", delivered.Content)
}

func TestChatService_Typing_Silently_Ignored_When_Not_Joined(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	peer := identity("bob")
	peerSink := &recordSink{}
	channelID := uuid.NewString()

	f.service.Connect(context.Background(), peer, peerSink)
	f.registry.Join(peer.ID, channelID)

	// When a non-member signals typing
	f.service.Typing(context.Background(), actor, chat.TypingCommand{ChannelID: channelID})

	// Then no indicator was broadcast and no state exists
	req.Empty(peerSink.events)
	req.False(f.typing.IsTyping(channelID, actor.ID))
}

func TestChatService_Typing_Excludes_The_Actor(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	peer := identity("bob")
	actorSink := &recordSink{}
	peerSink := &recordSink{}
	channelID := uuid.NewString()

	f.service.Connect(context.Background(), actor, actorSink)
	f.service.Connect(context.Background(), peer, peerSink)
	f.registry.Join(actor.ID, channelID)
	f.registry.Join(peer.ID, channelID)

	// When the actor types then stops
	f.service.Typing(context.Background(), actor, chat.TypingCommand{ChannelID: channelID})
	req.True(f.typing.IsTyping(channelID, actor.ID))
	f.service.StopTyping(context.Background(), actor, chat.TypingCommand{ChannelID: channelID})

	// Then only the peer heard both signals
	req.Empty(actorSink.events)
	req.Equal([]event.Type{event.TypeUserTyping, event.TypeUserStoppedTyping}, peerSink.typesReceived())
	req.False(f.typing.IsTyping(channelID, actor.ID))
}

func TestChatService_Disconnect_Cleans_Up_And_Notifies(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	peer := identity("bob")
	actorSink := &recordSink{}
	peerSink := &recordSink{}
	channelID := uuid.NewString()

	f.service.Connect(context.Background(), actor, actorSink)
	f.service.Connect(context.Background(), peer, peerSink)
	f.registry.Join(actor.ID, channelID)
	f.registry.Join(peer.ID, channelID)
	f.typing.Touch(channelID, actor.ID)

	// When the actor disconnects
	f.service.Disconnect(context.Background(), actor, actorSink)

	// Then every trace is gone
	req.False(f.registry.HasJoined(actor.ID, channelID))
	req.False(f.typing.IsTyping(channelID, actor.ID))
	_, stillRegistered := f.registry.Lookup(actor.ID)
	req.False(stillRegistered)

	// And the peer was notified once
	req.Equal([]event.Type{event.TypeUserLeft}, peerSink.typesReceived())

	// And a second disconnect is a harmless no-op
	f.service.Disconnect(context.Background(), actor, actorSink)
	req.Equal([]event.Type{event.TypeUserLeft}, peerSink.typesReceived())
}

func TestChatService_Disconnect_Of_Orphaned_Connection_Keeps_New_Session(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	oldSink := &recordSink{}
	newSink := &recordSink{}
	channelID := uuid.NewString()

	// Given a reconnect overwrote the first session and rejoined
	f.service.Connect(context.Background(), actor, oldSink)
	f.service.Connect(context.Background(), actor, newSink)
	f.registry.Join(actor.ID, channelID)

	// When the orphaned socket finally closes
	f.service.Disconnect(context.Background(), actor, oldSink)

	// Then the newer session's state is intact
	sink, ok := f.registry.Lookup(actor.ID)
	req.True(ok)
	req.Equal(newSink, sink)
	req.True(f.registry.HasJoined(actor.ID, channelID))
}

func TestChatService_LeaveChannel_Notifies_Both_Sides(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)
	actor := identity("alice")
	peer := identity("bob")
	actorSink := &recordSink{}
	peerSink := &recordSink{}
	channelID := uuid.NewString()

	f.service.Connect(context.Background(), actor, actorSink)
	f.service.Connect(context.Background(), peer, peerSink)
	f.registry.Join(actor.ID, channelID)
	f.registry.Join(peer.ID, channelID)

	// When leaving
	f.service.LeaveChannel(context.Background(), actor, chat.LeaveChannelCommand{ChannelID: channelID})

	// Then the actor got the confirmation and the peer the presence event
	req.Equal([]event.Type{event.TypeChannelLeft}, actorSink.typesReceived())
	req.Equal([]event.Type{event.TypeUserLeft}, peerSink.typesReceived())
	req.False(f.registry.HasJoined(actor.ID, channelID))
}
