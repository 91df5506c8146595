// Package ws is the websocket edge of the messaging subsystem: handshake
// authentication, the per-connection read/write pumps, and the inbound frame
// dispatch into the chat service.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"team-hub/contract"
	"team-hub/domain/event"
	"team-hub/observability"
	"team-hub/services"
)

// Gateway upgrades authenticated HTTP requests into live connections.
//
// Authentication happens before the upgrade: a request without a resolvable
// bearer token is rejected with 401 and no websocket ever exists for it.
type Gateway struct {
	log        *slog.Logger
	resolver   contract.IdentityResolver
	chat       services.IChatService
	monitoring *observability.MonitoringManager
	sendBuffer int
	upgrader   websocket.Upgrader
}

func NewGateway(log *slog.Logger, resolver contract.IdentityResolver,
	chatService services.IChatService, monitoring *observability.MonitoringManager, sendBuffer int) *Gateway {
	return &Gateway{
		log:        log,
		resolver:   resolver,
		chat:       chatService,
		monitoring: monitoring,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles the /ws endpoint. The bearer token travels in the `token`
// query parameter since browser websocket clients cannot set headers.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	identity, err := g.resolver.Resolve(r.Context(), token)
	if err != nil {
		g.monitoring.IncrErrorCount()
		g.log.Warn("Rejected websocket handshake", "error", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	wsConn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		g.monitoring.IncrErrorCount()
		g.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	conn := NewConnection(g.log, wsConn, identity, g.chat, g.monitoring, g.sendBuffer)
	g.chat.Connect(r.Context(), identity, conn)
	g.monitoring.IncrConnectionsOpened()

	// Welcome the client with its own profile before any pump activity.
	if err := conn.Consume(r.Context(), event.ConnectionEstablished{User: identity.Profile()}); err != nil {
		g.log.Warn(fmt.Sprintf("Welcome event dropped for %s", identity.Email), "error", err)
	}

	// The request handler returns now; the request context dies with it, so
	// the connection runs on its own context until the read pump terminates.
	go conn.Run(context.Background())
}
