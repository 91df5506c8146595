//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"team-hub/contract"
	"team-hub/domain"
	"team-hub/domain/chat"
	"team-hub/domain/event"
	apperrors "team-hub/errors"
	"team-hub/moderation"
	"team-hub/runtime"
)

var validate = validator.New()

// IChatService is the operation surface the transport layer dispatches into.
// Failures are returned as sentinel errors; the caller maps them to `error`
// events for the offending connection only.
type IChatService interface {
	Connect(ctx context.Context, identity domain.Identity, sink contract.EventSink)
	Disconnect(ctx context.Context, identity domain.Identity, sink contract.EventSink)
	JoinChannel(ctx context.Context, identity domain.Identity, cmd chat.JoinChannelCommand) error
	LeaveChannel(ctx context.Context, identity domain.Identity, cmd chat.LeaveChannelCommand)
	SendMessage(ctx context.Context, identity domain.Identity, cmd chat.SendMessageCommand) error
	Typing(ctx context.Context, identity domain.Identity, cmd chat.TypingCommand)
	StopTyping(ctx context.Context, identity domain.Identity, cmd chat.TypingCommand)
	BroadcastMessage(ctx context.Context, channelID string, msg domain.Message)
	NotifyChannelUpdate(ctx context.Context, channelID string, update any)
}

type ChatService struct {
	log          *slog.Logger
	store        contract.Storage
	registry     *runtime.Registry
	broadcaster  *runtime.Broadcaster
	typing       *runtime.TypingTracker
	moderator    *moderation.Moderator
	historyLimit int
}

func NewChatService(log *slog.Logger, store contract.Storage, registry *runtime.Registry,
	broadcaster *runtime.Broadcaster, typing *runtime.TypingTracker,
	moderator *moderation.Moderator, historyLimit int) *ChatService {
	return &ChatService{
		log:          log,
		store:        store,
		registry:     registry,
		broadcaster:  broadcaster,
		typing:       typing,
		moderator:    moderator,
		historyLimit: historyLimit,
	}
}

// Connect records the connection in the session registry. A second handshake
// for the same identity overwrites the entry; the registry keeps at most one
// connection per identity and the orphaned socket is handled on its own
// disconnect.
func (s *ChatService) Connect(_ context.Context, identity domain.Identity, sink contract.EventSink) {
	s.registry.Register(identity.ID, sink)
	s.log.Info(fmt.Sprintf("User %s connected", identity.Email))
}

// Disconnect tears down every trace of the connection: session entry, all
// channel memberships, typing state, then notifies each left channel's
// remaining subscribers. Cleanup is idempotent; absent entries are skipped.
// If the departing connection was orphaned by a newer handshake for the same
// identity, the newer session's state is left untouched.
func (s *ChatService) Disconnect(ctx context.Context, identity domain.Identity, sink contract.EventSink) {
	if !s.registry.IsCurrent(identity.ID, sink) {
		s.log.Debug(fmt.Sprintf("Orphaned connection for %s closed, keeping newer session", identity.Email))
		return
	}

	left := s.registry.RemoveConnection(identity.ID)
	s.typing.RemoveIdentity(identity.ID)

	for _, channelID := range left {
		s.broadcaster.BroadcastToChannel(ctx, channelID, event.UserLeft{
			ChannelID: channelID,
			User:      identity.Public(),
		}, identity.ID)
	}
	s.log.Info(fmt.Sprintf("User %s disconnected", identity.Email))
}

// JoinChannel authorizes the join against storage, registers the membership
// in both directions, and replies with the channel's recent history. Joining
// an already-joined channel is a no-op that still returns the snapshot.
func (s *ChatService) JoinChannel(ctx context.Context, identity domain.Identity, cmd chat.JoinChannelCommand) error {
	if cmd.ChannelID == "" {
		return apperrors.ErrChannelIDRequired
	}

	channel, err := s.store.GetChannelByID(ctx, cmd.ChannelID)
	if err != nil {
		return err
	}

	teams, err := s.store.GetUserTeams(ctx, identity.ID)
	if err != nil {
		return fmt.Errorf("team lookup failed: %w", err)
	}
	hasAccess := lo.SomeBy(teams, func(team domain.Team) bool {
		return team.ID == channel.TeamID
	})
	if !hasAccess {
		return apperrors.ErrAccessDenied
	}

	added := s.registry.Join(identity.ID, cmd.ChannelID)

	messages, err := s.store.GetChannelMessages(ctx, cmd.ChannelID, s.historyLimit)
	if err != nil {
		return fmt.Errorf("history fetch failed: %w", err)
	}
	if messages == nil {
		// An empty history must reach the client as [], not null.
		messages = []domain.Message{}
	}

	s.broadcaster.SendTo(ctx, identity.ID, event.ChannelJoined{
		ChannelID: cmd.ChannelID,
		Messages:  messages,
	})

	if added {
		s.broadcaster.BroadcastToChannel(ctx, cmd.ChannelID, event.UserJoined{
			ChannelID: cmd.ChannelID,
			User:      identity.Public(),
		}, identity.ID)
		s.log.Info(fmt.Sprintf("User %s joined channel %s", identity.Email, cmd.ChannelID))
	}
	return nil
}

// LeaveChannel removes the membership in both directions. Leaving a channel
// that was never joined is a no-op; no error is surfaced either way.
func (s *ChatService) LeaveChannel(ctx context.Context, identity domain.Identity, cmd chat.LeaveChannelCommand) {
	s.registry.Leave(identity.ID, cmd.ChannelID)
	s.typing.Stop(cmd.ChannelID, identity.ID)

	s.broadcaster.BroadcastToChannel(ctx, cmd.ChannelID, event.UserLeft{
		ChannelID: cmd.ChannelID,
		User:      identity.Public(),
	}, identity.ID)

	s.broadcaster.SendTo(ctx, identity.ID, event.ChannelLeft{ChannelID: cmd.ChannelID})
	s.log.Info(fmt.Sprintf("User %s left channel %s", identity.Email, cmd.ChannelID))
}

// SendMessage validates the payload shape, enforces "must join before send",
// persists the message, then broadcasts the storage-confirmed record to every
// subscriber, sender included.
func (s *ChatService) SendMessage(ctx context.Context, identity domain.Identity, cmd chat.SendMessageCommand) error {
	if err := validate.Struct(cmd); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			if fieldErrors[0].Field() == "ChannelID" {
				return apperrors.ErrChannelIDRequired
			}
			return apperrors.ErrContentRequired
		}
		return apperrors.ErrInvalidFrame
	}

	if _, err := s.store.GetChannelByID(ctx, cmd.ChannelID); err != nil {
		return err
	}

	if !s.registry.HasJoined(identity.ID, cmd.ChannelID) {
		return apperrors.ErrMustJoinFirst
	}

	msg := domain.Message{
		ChannelID: cmd.ChannelID,
		AuthorID:  identity.ID,
		Content:   s.moderator.Censor(cmd.Content),
		Type:      cmd.Type,
		ReplyToID: cmd.ReplyToID,
	}

	// Persist first: listeners must only ever see canonical, storage-confirmed
	// records. The channel could vanish between the check above and this
	// write; storage's own existence checks fail the individual write and the
	// error reaches the sender only.
	persisted, err := s.store.CreateMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("message persist failed: %w", err)
	}

	// Re-read the canonical record; fall back to the create result.
	canonical, err := s.store.GetMessageByID(ctx, persisted.ID.String())
	if err != nil {
		canonical = persisted
	}

	s.broadcaster.BroadcastToChannel(ctx, cmd.ChannelID, event.NewMessage{Message: canonical}, "")
	return nil
}

// Typing marks the identity as composing and notifies the other subscribers.
// Signals from identities that never joined the channel are silently ignored,
// unlike message sends.
func (s *ChatService) Typing(ctx context.Context, identity domain.Identity, cmd chat.TypingCommand) {
	if !s.registry.HasJoined(identity.ID, cmd.ChannelID) {
		return
	}
	s.typing.Touch(cmd.ChannelID, identity.ID)

	s.broadcaster.BroadcastToChannel(ctx, cmd.ChannelID, event.UserTyping{
		ChannelID: cmd.ChannelID,
		User:      identity.Public(),
	}, identity.ID)
}

// StopTyping clears the composing flag and notifies the other subscribers.
func (s *ChatService) StopTyping(ctx context.Context, identity domain.Identity, cmd chat.TypingCommand) {
	if !s.registry.HasJoined(identity.ID, cmd.ChannelID) {
		return
	}
	s.typing.Stop(cmd.ChannelID, identity.ID)

	s.broadcaster.BroadcastToChannel(ctx, cmd.ChannelID, event.UserStoppedTyping{
		ChannelID: cmd.ChannelID,
		User:      identity.Public(),
	}, identity.ID)
}

// ExpireTyping synthesizes the stop event for a typing state the sweep found
// past its deadline.
func (s *ChatService) ExpireTyping(ctx context.Context, state domain.TypingState) {
	s.broadcaster.BroadcastToChannel(ctx, state.ChannelID, event.UserStoppedTyping{
		ChannelID: state.ChannelID,
		User:      domain.PublicUser{ID: state.IdentityID},
	}, state.IdentityID)
}

// BroadcastMessage pushes a live notification for a message persisted outside
// the websocket path (e.g. a REST-layer mutation).
func (s *ChatService) BroadcastMessage(ctx context.Context, channelID string, msg domain.Message) {
	s.broadcaster.BroadcastToChannel(ctx, channelID, event.NewMessage{Message: msg}, "")
}

// NotifyChannelUpdate pushes a channel_updated notification to the channel's
// current subscribers.
func (s *ChatService) NotifyChannelUpdate(ctx context.Context, channelID string, update any) {
	s.broadcaster.BroadcastToChannel(ctx, channelID, event.ChannelUpdated{
		ChannelID: channelID,
		Update:    update,
	}, "")
}
