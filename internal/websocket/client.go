package websocket

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Answers are tiny; anything larger is not from the shell.
	maxFrameSize = 512
	sendBuffer   = 256
)

// Client is one attached UI shell.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger
}

// NewClient wraps an upgraded connection. Register it with the hub, then run
// WritePump and ReadPump on their own goroutines.
func NewClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: logger,
	}
}

func (c *Client) extendRead(string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// ReadPump feeds notice answers to the hub until the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.extendRead("")
	c.conn.SetPongHandler(c.extendRead)

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket closed unexpectedly", slog.Any("error", err))
			}
			return
		}
		c.handleMessage(frame)
	}
}

// WritePump forwards hub events and keeps the connection alive with pings.
// It returns once the hub closes the send channel or a write fails.
func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		var (
			kind    int
			payload []byte
		)

		select {
		case msg, ok := <-c.send:
			if !ok {
				kind = websocket.CloseMessage
			} else {
				kind, payload = websocket.TextMessage, msg
			}
		case <-ping.C:
			kind = websocket.PingMessage
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, payload); err != nil || kind == websocket.CloseMessage {
			return
		}
	}
}

// handleMessage accepts answer frames only.
func (c *Client) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reject("invalid message format")
		return
	}

	if msg.Type != MessageTypeAnswer {
		c.reject("unknown message type")
		return
	}
	if msg.NoticeID == "" || msg.Choice == "" {
		c.reject("notice_id and choice are required")
		return
	}
	if !c.hub.answer(msg.NoticeID, msg.Choice) {
		c.reject("notice is not pending")
	}
}

// reject queues an error frame for this client only. It is dropped when the
// buffer is full.
func (c *Client) reject(reason string) {
	data, err := json.Marshal(WSMessage{Type: MessageTypeError, Error: reason})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
