package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/ayusman/lukis/internal/canvas"
	"github.com/ayusman/lukis/internal/painter"
)

const (
	// eventBuffer is how many messages may queue before new ones are dropped.
	eventBuffer = 64
	writeWait   = time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Message is the envelope sent to websocket clients.
type Message struct {
	Type  string         `json:"type"`
	Event *painter.Event `json:"event,omitempty"`
	Brush *canvas.Brush  `json:"brush,omitempty"`
}

// EventsHandler broadcasts fingertip and brush events via WebSocket.
type EventsHandler struct {
	logger  *log.Logger
	queue   chan []byte
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex

	lastHand  bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewEventsHandler creates a new EventsHandler and starts its broadcaster.
func NewEventsHandler(logger *log.Logger) *EventsHandler {
	if logger == nil {
		logger = log.Default()
	}
	h := &EventsHandler{
		logger:  logger,
		queue:   make(chan []byte, eventBuffer),
		clients: make(map[*websocket.Conn]bool),
		done:    make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// PublishEvent queues a fingertip event. Consecutive events without a
// hand are sent once. It never blocks the caller.
func (h *EventsHandler) PublishEvent(ev painter.Event) {
	h.mu.Lock()
	skip := !ev.Hand && !h.lastHand
	h.lastHand = ev.Hand
	h.mu.Unlock()

	if skip {
		return
	}
	h.publish(Message{Type: "fingertip", Event: &ev})
}

// PublishBrush queues a brush change.
func (h *EventsHandler) PublishBrush(b canvas.Brush) {
	h.publish(Message{Type: "brush", Brush: &b})
}

func (h *EventsHandler) publish(m Message) {
	if h.Clients() == 0 {
		return
	}

	msg, err := json.Marshal(m)
	if err != nil {
		return
	}

	select {
	case h.queue <- msg:
	case <-h.done:
	default:
		h.logger.Debug("event dropped", "type", m.Type)
	}
}

// Clients returns the number of connected websocket clients.
func (h *EventsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcaster and disconnects all clients.
func (h *EventsHandler) Close() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
		}
		h.mu.Unlock()
	})
}

// broadcast sends queued messages to all connected clients.
func (h *EventsHandler) broadcast() {
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.queue:
			h.mu.RLock()
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.logger.Debug("websocket write failed", "err", err)
				}
			}
			h.mu.RUnlock()
		}
	}
}
