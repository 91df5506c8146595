package errors

import "fmt"

var (
	// Protocol failures, reported as an `error` event to the offending
	// connection only. The connection stays open.
	ErrChannelIDRequired = fmt.Errorf("channel id is required")
	ErrContentRequired   = fmt.Errorf("message content is required")
	ErrChannelNotFound   = fmt.Errorf("channel not found")
	ErrAccessDenied      = fmt.Errorf("access denied to channel")
	ErrMustJoinFirst     = fmt.Errorf("you must join the channel first")
	ErrInvalidFrame      = fmt.Errorf("invalid message format")

	// Account failures.
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")

	// Storage failures.
	ErrMessageNotFound = fmt.Errorf("message not found")
	ErrTeamNotFound    = fmt.Errorf("team not found")

	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")
)
