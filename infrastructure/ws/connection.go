package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"team-hub/domain"
	"team-hub/domain/chat"
	"team-hub/domain/event"
	apperrors "team-hub/errors"
	"team-hub/observability"
	"team-hub/services"
)

const (
	// Outbound writes must complete within this window or the peer is
	// considered gone.
	writeWait = 10 * time.Second

	// The peer must answer a ping within this window.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 64 * 1024
)

// Connection binds one websocket to one authenticated identity. It is the
// live EventSink for that identity: events queue into a buffered channel
// drained by the write pump, so a slow peer never blocks a broadcast.
type Connection struct {
	log        *slog.Logger
	ws         *websocket.Conn
	identity   domain.Identity
	chat       services.IChatService
	monitoring *observability.MonitoringManager

	send chan event.Envelope
	done chan struct{}
	once sync.Once
}

func NewConnection(log *slog.Logger, wsConn *websocket.Conn, identity domain.Identity,
	chatService services.IChatService, monitoring *observability.MonitoringManager, sendBuffer int) *Connection {
	return &Connection{
		log:        log,
		ws:         wsConn,
		identity:   identity,
		chat:       chatService,
		monitoring: monitoring,
		send:       make(chan event.Envelope, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Consume queues an event for delivery. It never blocks: a full buffer or a
// closed connection yields an error and the event is dropped for this sink
// only.
func (c *Connection) Consume(_ context.Context, e event.ServerEvent) error {
	select {
	case <-c.done:
		return fmt.Errorf("connection for %s is closed", c.identity.ID)
	default:
	}
	select {
	case c.send <- event.Wrap(e):
		return nil
	default:
		return fmt.Errorf("send buffer full for %s", c.identity.ID)
	}
}

// Run starts both pumps and blocks until the read side terminates. Teardown
// runs exactly once regardless of which side fails first.
func (c *Connection) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

func (c *Connection) readPump(ctx context.Context) {
	defer c.teardown(ctx)

	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn(fmt.Sprintf("Connection for %s dropped", c.identity.Email), "error", err)
			}
			return
		}
		c.monitoring.IncrFramesReceived()
		c.dispatch(ctx, raw)
	}
}

// dispatch decodes one inbound frame and routes it to the matching operation.
// A failure affects this frame only; the connection stays open.
func (c *Connection) dispatch(ctx context.Context, raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.reportError(ctx, "", fmt.Errorf("%w: %v", apperrors.ErrInvalidFrame, err))
		return
	}

	switch frame.Type {
	case FrameJoinChannel:
		var cmd chat.JoinChannelCommand
		if err := json.Unmarshal(frame.Data, &cmd); err != nil {
			c.reportError(ctx, frame.Type, apperrors.ErrInvalidFrame)
			return
		}
		if err := c.chat.JoinChannel(ctx, c.identity, cmd); err != nil {
			c.reportError(ctx, frame.Type, err)
		}

	case FrameLeaveChannel:
		var cmd chat.LeaveChannelCommand
		if err := json.Unmarshal(frame.Data, &cmd); err != nil {
			c.reportError(ctx, frame.Type, apperrors.ErrInvalidFrame)
			return
		}
		c.chat.LeaveChannel(ctx, c.identity, cmd)

	case FrameSendMessage:
		var cmd chat.SendMessageCommand
		if err := json.Unmarshal(frame.Data, &cmd); err != nil {
			c.reportError(ctx, frame.Type, apperrors.ErrInvalidFrame)
			return
		}
		if err := c.chat.SendMessage(ctx, c.identity, cmd); err != nil {
			c.reportError(ctx, frame.Type, err)
		}

	case FrameTyping:
		var cmd chat.TypingCommand
		if err := json.Unmarshal(frame.Data, &cmd); err != nil {
			return
		}
		c.chat.Typing(ctx, c.identity, cmd)

	case FrameStopTyping:
		var cmd chat.TypingCommand
		if err := json.Unmarshal(frame.Data, &cmd); err != nil {
			return
		}
		c.chat.StopTyping(ctx, c.identity, cmd)

	default:
		c.log.Warn(fmt.Sprintf("Ignoring unknown frame type %q from %s", frame.Type, c.identity.Email))
	}
}

func (c *Connection) reportError(ctx context.Context, frameType FrameType, err error) {
	c.monitoring.IncrErrorCount()
	c.log.Debug(fmt.Sprintf("Frame %q from %s rejected", frameType, c.identity.Email), "error", err)
	_ = c.Consume(ctx, errorEvent(frameType, err))
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case envelope := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(envelope); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// teardown runs the full disconnect sequence exactly once: registry and
// membership cleanup through the service, then the write pump shutdown.
func (c *Connection) teardown(ctx context.Context) {
	c.once.Do(func() {
		c.chat.Disconnect(ctx, c.identity, c)
		close(c.done)
		_ = c.ws.Close()
		c.monitoring.IncrConnectionsClosed()
	})
}
