//go:generate go run go.uber.org/mock/mockgen -source=channel.go -destination=../mocks/mock_channel_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"team-hub/domain"
	apperrors "team-hub/errors"
)

type IChannelRepository interface {
	CreateTeam(name string) (domain.Team, error)
	CreateChannel(teamID, name string) (domain.Channel, error)
	AddTeamMember(teamID, userID string) error
	GetChannelByID(id string) (domain.Channel, error)
	GetUserTeams(userID string) ([]domain.Team, error)
}

// ChannelRepository stores channels, teams, and team memberships.
// Keys: "channel:{id}", "team:{id}", "member:{user_id}:{team_id}".
type ChannelRepository struct {
	db *badger.DB
}

func NewChannelRepository(db *badger.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

func (r *ChannelRepository) CreateTeam(name string) (domain.Team, error) {
	team := domain.Team{ID: uuid.New().String(), Name: name}
	data, err := json.Marshal(team)
	if err != nil {
		return domain.Team{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("team:"+team.ID), data)
	})
	return team, err
}

func (r *ChannelRepository) CreateChannel(teamID, name string) (domain.Channel, error) {
	channel := domain.Channel{ID: uuid.New().String(), TeamID: teamID, Name: name}
	data, err := json.Marshal(channel)
	if err != nil {
		return domain.Channel{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte("team:" + teamID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.ErrTeamNotFound
			}
			return err
		}
		return txn.Set([]byte("channel:"+channel.ID), data)
	})
	return channel, err
}

func (r *ChannelRepository) AddTeamMember(teamID, userID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte("team:" + teamID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.ErrTeamNotFound
			}
			return err
		}
		return txn.Set([]byte(fmt.Sprintf("member:%s:%s", userID, teamID)), []byte(teamID))
	})
}

func (r *ChannelRepository) GetChannelByID(id string) (domain.Channel, error) {
	var channel domain.Channel
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("channel:" + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &channel)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Channel{}, apperrors.ErrChannelNotFound
	}
	if err != nil {
		return domain.Channel{}, err
	}
	return channel, nil
}

// GetUserTeams scans the membership prefix for the user and resolves each
// team record. A dangling membership whose team vanished is skipped.
func (r *ChannelRepository) GetUserTeams(userID string) ([]domain.Team, error) {
	var teamIDs []string
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("member:%s:", userID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				teamIDs = append(teamIDs, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	teams := make([]domain.Team, 0, len(teamIDs))
	err = r.db.View(func(txn *badger.Txn) error {
		for _, id := range teamIDs {
			item, err := txn.Get([]byte("team:" + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var team domain.Team
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &team)
			}); err != nil {
				return err
			}
			teams = append(teams, team)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}
