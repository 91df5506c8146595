package services

import (
	"fmt"

	"team-hub/auth"
	"team-hub/errors"
	"team-hub/repositories"
)

type IAuthService interface {
	Login(email, password string) (Token, error)
	Register(email, password, firstName, lastName string) (Token, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenService
}

type Token string

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenService) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(email, password, firstName, lastName string) (Token, error) {
	valReq := auth.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	}

	// 1. Validate business rules (email format, password complexity)
	// before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password using Argon2id. Done in the service layer to keep
	// the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash.
	userID, err := s.userRepository.CreateUser(email, hashedPassword, firstName, lastName)
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists if the email is taken
	}

	// 4. Generate the initial session token.
	token, err := s.tokens.Generate(userID, []string{"user"})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}

func (s *AuthService) Login(email, password string) (Token, error) {
	// Generic error on lookup failure to prevent user enumeration attacks.
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Roles)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	return Token(token), nil
}
