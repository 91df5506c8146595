//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"team-hub/domain"
	"team-hub/domain/event"
)

// Storage is the persistence collaborator. Membership and presence never go
// through it; only channels, teams, and message history do.
type Storage interface {
	GetChannelByID(ctx context.Context, id string) (domain.Channel, error)
	GetUserTeams(ctx context.Context, userID string) ([]domain.Team, error)
	GetChannelMessages(ctx context.Context, channelID string, limit int) ([]domain.Message, error)
	CreateMessage(ctx context.Context, msg domain.Message) (domain.Message, error)
	GetMessageByID(ctx context.Context, id string) (domain.Message, error)
}

// IdentityResolver validates an opaque bearer token and yields the identity
// it belongs to. Used once per connection, during the upgrade handshake.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (domain.Identity, error)
}

// EventSink is one live delivery path for server events. A connection is a
// sink; tests substitute their own.
type EventSink interface {
	Consume(ctx context.Context, e event.ServerEvent) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
