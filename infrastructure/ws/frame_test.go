package ws

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "team-hub/errors"
)

func TestErrorEvent_Keeps_Known_Protocol_Messages(t *testing.T) {
	req := require.New(t)

	cases := map[error]string{
		apperrors.ErrChannelIDRequired: "channel id is required",
		apperrors.ErrContentRequired:   "message content is required",
		apperrors.ErrChannelNotFound:   "channel not found",
		apperrors.ErrAccessDenied:      "access denied to channel",
		apperrors.ErrMustJoinFirst:     "you must join the channel first",
		apperrors.ErrInvalidFrame:      "invalid message format",
	}

	for sentinel, message := range cases {
		e := errorEvent(FrameSendMessage, sentinel)
		req.Equal(message, e.Message)
	}
}

func TestErrorEvent_Keeps_Known_Message_For_Wrapped_Errors(t *testing.T) {
	req := require.New(t)

	wrapped := fmt.Errorf("handling frame: %w", apperrors.ErrMustJoinFirst)
	e := errorEvent(FrameSendMessage, wrapped)

	// The wrapping detail never reaches the client
	req.Equal("you must join the channel first", e.Message)
}

func TestErrorEvent_Collapses_Internal_Errors(t *testing.T) {
	req := require.New(t)

	internal := fmt.Errorf("badger: value log truncated")

	req.Equal("failed to join channel", errorEvent(FrameJoinChannel, internal).Message)
	req.Equal("failed to send message", errorEvent(FrameSendMessage, internal).Message)
	req.Equal("internal error", errorEvent(FrameTyping, internal).Message)
}
