// Package client is the Go counterpart of the gateway: a websocket client
// with event subscriptions and automatic reconnection with exponential
// backoff.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"team-hub/domain/chat"
	"team-hub/domain/event"
	"team-hub/infrastructure/ws"
)

// State is the connection lifecycle of the client.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	defaultBaseDelay   = time.Second
	defaultMaxAttempts = 5
)

// Handler receives the raw data payload of one server event.
type Handler func(data json.RawMessage)

// Options configures a Client. URL is the full endpoint without the token,
// e.g. "ws://localhost:8080/ws".
type Options struct {
	URL         string
	Token       string
	BaseDelay   time.Duration // defaults to 1s
	MaxAttempts int           // defaults to 5
	Log         *slog.Logger
}

// Client maintains one connection to the gateway. Reconnection is automatic
// after an abnormal close or a failed dial: attempt n waits BaseDelay*2^(n-1),
// up to MaxAttempts, then gives up. A clean close (normal closure or an explicit
// Disconnect) never reconnects.
//
// Channel membership is connection-scoped: it is cleared on every close and
// never rejoined automatically. Callers rejoin on connection_established.
type Client struct {
	log         *slog.Logger
	url         string
	token       string
	baseDelay   time.Duration
	maxAttempts int

	mu          sync.Mutex
	conn        *websocket.Conn
	state       State
	joined      map[string]struct{}
	handlers    map[event.Type]map[int]Handler
	nextHandler int
	stopped     bool // set by Disconnect, suppresses reconnection
}

func New(opts Options) *Client {
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Client{
		log:         opts.Log,
		url:         opts.URL,
		token:       opts.Token,
		baseDelay:   opts.BaseDelay,
		maxAttempts: opts.MaxAttempts,
		state:       StateIdle,
		joined:      make(map[string]struct{}),
		handlers:    make(map[event.Type]map[int]Handler),
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ReconnectDelay returns the wait before reconnection attempt n (1-based):
// BaseDelay doubled per prior attempt.
func (c *Client) ReconnectDelay(attempt int) time.Duration {
	return c.baseDelay << (attempt - 1)
}

// On subscribes a handler to a server event type and returns the matching
// unsubscribe function. Handlers run on the read loop goroutine.
func (c *Client) On(eventType event.Type, handler Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handlers[eventType] == nil {
		c.handlers[eventType] = make(map[int]Handler)
	}
	id := c.nextHandler
	c.nextHandler++
	c.handlers[eventType][id] = handler

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[eventType], id)
	}
}

// Connect dials the gateway and starts the read loop. It resets the stopped
// flag so a client closed by Disconnect can be reused. A failed dial is a
// transport error like any other: the client enters Reconnecting and keeps
// retrying in the background; the dial error is still returned so the caller
// knows the first attempt did not land.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateOpen || c.state == StateConnecting || c.state == StateReconnecting {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.stopped = false
	c.mu.Unlock()

	err := c.dial(ctx)
	if err == nil {
		return nil
	}

	c.setState(StateReconnecting)
	c.log.Warn("Dial failed", "error", err)
	go c.reconnect(ctx)
	return err
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// endpoint builds the dial URL with the token as an escaped query parameter.
func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}
	query := u.Query()
	query.Set("token", c.token)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// dial attempts a single handshake. On failure the state is left untouched:
// the caller owns the Connecting/Reconnecting/Closed transitions.
func (c *Client) dial(ctx context.Context) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return fmt.Errorf("invalid endpoint %s: %w", c.url, err)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s failed: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	go c.readLoop(ctx, conn)
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	var closeErr error
	for {
		var envelope struct {
			Type event.Type      `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&envelope); err != nil {
			closeErr = err
			break
		}
		c.track(envelope.Type, envelope.Data)
		c.fanOut(envelope.Type, envelope.Data)
	}
	c.handleClose(ctx, closeErr)
}

// track keeps the local joined set in sync with the server's acknowledgments.
func (c *Client) track(eventType event.Type, data json.RawMessage) {
	switch eventType {
	case event.TypeChannelJoined, event.TypeChannelLeft:
		var payload struct {
			ChannelID string `json:"channelId"`
		}
		if err := json.Unmarshal(data, &payload); err != nil || payload.ChannelID == "" {
			return
		}
		c.mu.Lock()
		if eventType == event.TypeChannelJoined {
			c.joined[payload.ChannelID] = struct{}{}
		} else {
			delete(c.joined, payload.ChannelID)
		}
		c.mu.Unlock()
	}
}

func (c *Client) fanOut(eventType event.Type, data json.RawMessage) {
	c.mu.Lock()
	handlers := make([]Handler, 0, len(c.handlers[eventType]))
	for _, h := range c.handlers[eventType] {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
}

// handleClose clears connection-scoped state and decides whether to
// reconnect. A clean close never reconnects; membership never survives a
// close either way.
func (c *Client) handleClose(ctx context.Context, err error) {
	c.mu.Lock()
	c.conn = nil
	c.joined = make(map[string]struct{})
	clean := c.stopped || websocket.IsCloseError(err, websocket.CloseNormalClosure)
	if clean {
		c.state = StateClosed
		c.mu.Unlock()
		c.log.Info("Connection closed cleanly, not reconnecting")
		return
	}
	c.state = StateReconnecting
	c.mu.Unlock()

	c.log.Warn("Connection lost", "error", err)
	c.reconnect(ctx)
}

func (c *Client) reconnect(ctx context.Context) {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		delay := c.ReconnectDelay(attempt)
		c.log.Info(fmt.Sprintf("Reconnecting in %s (attempt %d/%d)", delay, attempt, c.maxAttempts))

		select {
		case <-ctx.Done():
			c.setState(StateClosed)
			return
		case <-time.After(delay):
		}

		c.mu.Lock()
		if c.stopped {
			c.state = StateClosed
			c.mu.Unlock()
			return
		}
		c.state = StateConnecting
		c.mu.Unlock()

		err := c.dial(ctx)
		if err == nil {
			return
		}
		c.setState(StateReconnecting)
		c.log.Warn("Dial failed", "error", err)
	}

	c.log.Error(fmt.Sprintf("Giving up after %d reconnection attempts", c.maxAttempts))
	c.setState(StateClosed)
}

// Disconnect closes the connection cleanly. No reconnection follows.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.stopped = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
}

// JoinChannel asks the server for a channel subscription. Already-joined
// channels are skipped locally; the server treats the duplicate as a no-op
// anyway.
func (c *Client) JoinChannel(channelID string) {
	c.mu.Lock()
	_, already := c.joined[channelID]
	c.mu.Unlock()
	if already {
		return
	}
	c.send(ws.FrameJoinChannel, chat.JoinChannelCommand{ChannelID: channelID})
}

func (c *Client) LeaveChannel(channelID string) {
	c.send(ws.FrameLeaveChannel, chat.LeaveChannelCommand{ChannelID: channelID})
}

func (c *Client) SendMessage(cmd chat.SendMessageCommand) {
	c.send(ws.FrameSendMessage, cmd)
}

func (c *Client) Typing(channelID string) {
	c.send(ws.FrameTyping, chat.TypingCommand{ChannelID: channelID})
}

func (c *Client) StopTyping(channelID string) {
	c.send(ws.FrameStopTyping, chat.TypingCommand{ChannelID: channelID})
}

// send marshals one frame and writes it. Frames issued while the connection
// is not open are dropped with a warning, matching the server's per-frame
// failure isolation.
func (c *Client) send(frameType ws.FrameType, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateOpen || c.conn == nil {
		c.log.Warn(fmt.Sprintf("Dropping %s frame, connection is %s", frameType, c.state))
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		c.log.Warn(fmt.Sprintf("Dropping %s frame", frameType), "error", err)
		return
	}
	if err := c.conn.WriteJSON(ws.Frame{Type: frameType, Data: data}); err != nil {
		c.log.Warn(fmt.Sprintf("Write of %s frame failed", frameType), "error", err)
	}
}
