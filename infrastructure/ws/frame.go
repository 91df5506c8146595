package ws

import (
	"encoding/json"
	"errors"

	"team-hub/domain/event"
	apperrors "team-hub/errors"
)

// FrameType discriminates the inbound client frames. The set is closed:
// anything else is logged and ignored without failing the connection.
type FrameType string

const (
	FrameJoinChannel  FrameType = "join_channel"
	FrameLeaveChannel FrameType = "leave_channel"
	FrameSendMessage  FrameType = "send_message"
	FrameTyping       FrameType = "typing"
	FrameStopTyping   FrameType = "stop_typing"
)

// Frame is the inbound wire shape, the mirror of event.Envelope. Data stays
// raw until the type is known.
type Frame struct {
	Type FrameType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// errorEvent maps a dispatch failure to the `error` event sent back to the
// offending connection. Known protocol errors carry their own message;
// anything else collapses to a generic per-operation message so internal
// details never reach the client.
func errorEvent(frameType FrameType, err error) event.Error {
	knowns := []error{
		apperrors.ErrChannelIDRequired,
		apperrors.ErrContentRequired,
		apperrors.ErrChannelNotFound,
		apperrors.ErrAccessDenied,
		apperrors.ErrMustJoinFirst,
		apperrors.ErrInvalidFrame,
	}
	for _, known := range knowns {
		if errors.Is(err, known) {
			return event.Error{Message: known.Error()}
		}
	}

	switch frameType {
	case FrameJoinChannel:
		return event.Error{Message: "failed to join channel"}
	case FrameSendMessage:
		return event.Error{Message: "failed to send message"}
	default:
		return event.Error{Message: "internal error"}
	}
}
