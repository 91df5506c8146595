package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"team-hub/errors"
	"team-hub/mocks"
	"team-hub/repositories"
)

func TestResolver_Resolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mocks.NewMockIUserRepository(ctrl)
	tokens := NewTokenService("test-secret", time.Hour)
	resolver := NewResolver(tokens, users)

	t.Run("resolves a valid token to its identity", func(t *testing.T) {
		req := require.New(t)
		userID := uuid.NewString()
		token, err := tokens.Generate(userID, []string{"user"})
		req.NoError(err)

		users.EXPECT().GetUserByID(userID).Return(repositories.User{
			ID:        userID,
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
		}, nil)

		identity, err := resolver.Resolve(context.Background(), token)

		req.NoError(err)
		req.Equal(userID, identity.ID)
		req.Equal("jane@example.com", identity.Email)
	})

	t.Run("rejects an empty token", func(t *testing.T) {
		req := require.New(t)

		_, err := resolver.Resolve(context.Background(), "")

		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("rejects a token whose user vanished", func(t *testing.T) {
		req := require.New(t)
		userID := uuid.NewString()
		token, err := tokens.Generate(userID, nil)
		req.NoError(err)

		users.EXPECT().GetUserByID(userID).
			Return(repositories.User{}, errors.ErrUserNotFound)

		_, err = resolver.Resolve(context.Background(), token)

		req.ErrorIs(err, errors.ErrInvalidToken)
	})

	t.Run("rejects a tampered token", func(t *testing.T) {
		req := require.New(t)
		other := NewTokenService("other-secret", time.Hour)
		token, err := other.Generate(uuid.NewString(), nil)
		req.NoError(err)

		_, err = resolver.Resolve(context.Background(), token)

		req.ErrorIs(err, errors.ErrInvalidToken)
	})
}
