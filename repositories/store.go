package repositories

import (
	"context"

	"team-hub/contract"
	"team-hub/domain"
)

// Store composes the repositories into the Storage collaborator the
// messaging subsystem consumes. Context is accepted for interface symmetry;
// badger calls are local and do not block on the network.
type Store struct {
	messages IMessageRepository
	channels IChannelRepository
}

func NewStore(messages IMessageRepository, channels IChannelRepository) *Store {
	return &Store{messages: messages, channels: channels}
}

var _ contract.Storage = (*Store)(nil)

func (s *Store) GetChannelByID(_ context.Context, id string) (domain.Channel, error) {
	return s.channels.GetChannelByID(id)
}

func (s *Store) GetUserTeams(_ context.Context, userID string) ([]domain.Team, error) {
	return s.channels.GetUserTeams(userID)
}

func (s *Store) GetChannelMessages(_ context.Context, channelID string, limit int) ([]domain.Message, error) {
	return s.messages.GetChannelMessages(channelID, limit)
}

func (s *Store) CreateMessage(_ context.Context, msg domain.Message) (domain.Message, error) {
	return s.messages.StoreMessage(msg)
}

func (s *Store) GetMessageByID(_ context.Context, id string) (domain.Message, error) {
	return s.messages.GetMessageByID(id)
}
