// Package websocket pushes dispatch progress and user notices to the attached
// UI shell and collects answers to notices.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/welldanyogia/webrana-mailsender/internal/fallback"
	"github.com/welldanyogia/webrana-mailsender/internal/mailer"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeTransition MessageType = "transition"
	MessageTypeNotice     MessageType = "notice"
	MessageTypeAnswer     MessageType = "answer"
	MessageTypeError      MessageType = "error"
)

// DefaultNoticeTimeout bounds how long Show waits for an answer.
const DefaultNoticeTimeout = 5 * time.Minute

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type       MessageType        `json:"type"`
	NoticeID   string             `json:"notice_id,omitempty"`
	Notice     *fallback.Notice   `json:"notice,omitempty"`
	Transition *mailer.Transition `json:"transition,omitempty"`
	Choice     fallback.Choice    `json:"choice,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// Hub maintains the set of active clients and broadcasts events to all of them
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex

	// Notices waiting for an answer, by notice id
	pendingMu sync.Mutex
	pending   map[string]chan fallback.Choice

	noticeTimeout time.Duration
	logger        *slog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		broadcast:     make(chan []byte, 256),
		pending:       make(map[string]chan fallback.Choice),
		noticeTimeout: DefaultNoticeTimeout,
		logger:        logger,
	}
}

// SetNoticeTimeout changes how long Show waits for an answer.
func (h *Hub) SetNoticeTimeout(d time.Duration) {
	h.noticeTimeout = d
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) publish(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	select {
	case h.broadcast <- data:
	default:
		if h.logger != nil {
			h.logger.Warn("broadcast queue full, dropping event", slog.String("type", string(msg.Type)))
		}
	}
}

// Transition broadcasts a dispatch state change. Hub is a mailer.Observer.
func (h *Hub) Transition(_ context.Context, t mailer.Transition) {
	h.publish(WSMessage{Type: MessageTypeTransition, Transition: &t})
}

// Show broadcasts n and waits for the first answer from any client. With no
// client attached, or when nobody answers in time, the first button wins.
func (h *Hub) Show(ctx context.Context, n fallback.Notice) fallback.Choice {
	fallbackChoice := fallback.ChoiceOK
	if len(n.Buttons) > 0 {
		fallbackChoice = n.Buttons[0]
	}
	if h.ClientCount() == 0 {
		return fallbackChoice
	}

	id := uuid.New().String()
	answer := make(chan fallback.Choice, 1)
	h.pendingMu.Lock()
	h.pending[id] = answer
	h.pendingMu.Unlock()
	defer func() {
		h.pendingMu.Lock()
		delete(h.pending, id)
		h.pendingMu.Unlock()
	}()

	h.publish(WSMessage{Type: MessageTypeNotice, NoticeID: id, Notice: &n})

	timer := time.NewTimer(h.noticeTimeout)
	defer timer.Stop()

	select {
	case c := <-answer:
		if len(n.Buttons) > 0 && !containsChoice(n.Buttons, c) {
			return fallbackChoice
		}
		return c
	case <-timer.C:
		if h.logger != nil {
			h.logger.Warn("notice not answered", slog.String("notice_id", id), slog.String("title", n.Title))
		}
		return fallbackChoice
	case <-ctx.Done():
		return fallbackChoice
	}
}

// answer delivers a client's choice. Unknown or already answered notices are
// ignored and reported as false.
func (h *Hub) answer(noticeID string, c fallback.Choice) bool {
	h.pendingMu.Lock()
	ch, ok := h.pending[noticeID]
	if ok {
		delete(h.pending, noticeID)
	}
	h.pendingMu.Unlock()
	if !ok {
		return false
	}
	ch <- c
	return true
}

func containsChoice(buttons []fallback.Choice, c fallback.Choice) bool {
	for _, b := range buttons {
		if b == c {
			return true
		}
	}
	return false
}
