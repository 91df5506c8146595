//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	apperrors "team-hub/errors"
)

type IUserRepository interface {
	CreateUser(email, hashedPassword, firstName, lastName string) (string, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the repository-level representation of an account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateUser persists the user and a secondary id index.
// Keys: "user:{email}" holds the record, "userid:{id}" points back to the
// email key so handshake resolution can look users up by id.
func (u UserRepository) CreateUser(email, hashedPassword, firstName, lastName string) (string, error) {
	newID := uuid.New().String()
	record := User{
		ID:           newID,
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    firstName,
		LastName:     lastName,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := []byte("user:" + email)
		if _, err := txn.Get(key); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set([]byte("userid:"+newID), []byte(email))
	})

	return newID, err
}

// GetUserByEmail retrieves a user record by its primary key.
func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var record User

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:" + email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return record, nil
}

// GetUserByID follows the secondary index and then the primary key.
func (u UserRepository) GetUserByID(id string) (User, error) {
	var email string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("userid:" + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			email = string(val)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u.GetUserByEmail(email)
}
