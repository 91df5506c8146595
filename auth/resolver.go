package auth

import (
	"context"
	"fmt"

	"team-hub/domain"
	"team-hub/errors"
	"team-hub/repositories"
)

// Resolver turns a bearer token into the Identity it belongs to: signature
// and expiry are checked first, then the user must still exist in storage.
// A failure at either step rejects the handshake before any connection state
// is created.
type Resolver struct {
	tokens *TokenService
	users  repositories.IUserRepository
}

func NewResolver(tokens *TokenService, users repositories.IUserRepository) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

func (r *Resolver) Resolve(_ context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, errors.ErrInvalidToken
	}

	claims, err := r.tokens.Validate(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	user, err := r.users.GetUserByID(claims.UserID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	return domain.Identity{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}
