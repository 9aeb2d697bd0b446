package main

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/parley-dev/parley/internal/protocol"
)

// client is a thin wrapper over one websocket connection speaking the parley
// wire protocol.
type client struct {
	conn      *websocket.Conn
	sessionID string
	persona   string
}

func dial(url, sessionID, persona string) (*client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &client{conn: conn, sessionID: sessionID, persona: persona}, nil
}

func (c *client) close() error {
	return c.conn.Close()
}

// send writes one transcription message. The persona rides along on the
// first message only; the server keeps it for the session afterwards.
func (c *client) send(text string) error {
	msg := protocol.Inbound{
		Type:      protocol.MessageTypeTranscription,
		Text:      text,
		SessionID: c.sessionID,
		Persona:   c.persona,
	}
	c.persona = ""
	return c.conn.WriteJSON(msg)
}

// read blocks for the next server frame and decodes it. Error envelopes are
// surfaced as Go errors.
func (c *client) read() (protocol.Outbound, error) {
	_, raw, err := c.conn.ReadMessage()
	if err != nil {
		return protocol.Outbound{}, err
	}

	var env protocol.ErrorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		return protocol.Outbound{}, fmt.Errorf("server error: %s", env.Error)
	}

	var out protocol.Outbound
	if err := json.Unmarshal(raw, &out); err != nil {
		return protocol.Outbound{}, fmt.Errorf("unexpected server frame: %w", err)
	}
	return out, nil
}
