package e2e

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"team-hub/domain/event"
	"team-hub/infrastructure/ws"
)

type BaseWsSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.GatewayURL == "" {
		s.T().Skip("E2E_GATEWAY_URL not set, skipping gateway end-to-end suite")
	}
}

// WsConn dials the gateway with the suite token and logs a colorized header
// for the connection step.
func (s *BaseWsSuite) WsConn(t *testing.T, name string) *websocket.Conn {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	endpoint := fmt.Sprintf("%s?token=%s", s.Config.GatewayURL, s.Config.Token)
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	s.Require().NoError(err, "Failed to connect to gateway at "+s.Config.GatewayURL)
	return conn
}

// SendFrame marshals and writes one client frame, dumping the body when
// E2E_DEBUG_JSON is enabled.
func (s *BaseWsSuite) SendFrame(conn *websocket.Conn, frameType ws.FrameType, payload any) {
	data, err := json.Marshal(payload)
	s.Require().NoError(err)

	frame := ws.Frame{Type: frameType, Data: data}
	if s.Config.DebugJSON {
		body, _ := json.MarshalIndent(frame, "", "  ")
		s.T().Logf("SEND:\n%s", body)
	}
	s.Require().NoError(conn.WriteJSON(frame))
}

// WaitFor reads frames until one of the wanted type arrives or the timeout
// elapses, and returns its raw data payload. Other event types received in
// between are logged and discarded.
func (s *BaseWsSuite) WaitFor(conn *websocket.Conn, wanted event.Type, timeout time.Duration) json.RawMessage {
	deadline := time.Now().Add(timeout)
	s.Require().NoError(conn.SetReadDeadline(deadline))

	for time.Now().Before(deadline) {
		var envelope struct {
			Type event.Type      `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		s.Require().NoError(conn.ReadJSON(&envelope))

		if s.Config.DebugJSON {
			s.T().Logf("RECV %s:\n%s", envelope.Type, envelope.Data)
		}
		if envelope.Type == wanted {
			return envelope.Data
		}
		s.T().Logf("Skipping %s while waiting for %s", envelope.Type, wanted)
	}

	s.Require().Failf("timeout", "No %s event within %s", wanted, timeout)
	return nil
}
