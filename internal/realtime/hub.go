// Package realtime pushes change notifications to connected clients so
// open dashboards can refetch without polling.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"savvy/internal/log"
)

// ChangeEvent tells a client that one of its tables changed. The client
// is expected to refetch, the event carries no row data.
type ChangeEvent struct {
	Type      string    `json:"type"`
	Table     string    `json:"table"`
	Timestamp time.Time `json:"timestamp"`
}

// Tables that emit change events
const (
	TableTransactions = "transactions"
	TableBudgets      = "budgets"
	TableGoals        = "goals"
)

// Hub fans change events out to every connection a user has open.
type Hub struct {
	mu          sync.Mutex
	clients     map[string]map[*Client]bool
	subscribers map[string]map[int]func(ChangeEvent)
	nextSubID   int
	logger      *log.Logger

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		subscribers: make(map[string]map[int]func(ChangeEvent)),
		logger:      logger.WithComponent(log.ComponentRealtime),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

// Run processes client registrations until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()
			h.logger.Info("Client registered", log.FieldUserID, client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.userID]; ok && conns[client] {
				delete(conns, client)
				if len(conns) == 0 {
					delete(h.clients, client.userID)
				}
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", log.FieldUserID, client.userID)

		case <-h.done:
			return
		}
	}
}

// Stop terminates the Run loop and disconnects all clients.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}

// Notify tells every connection and subscriber of userID that table
// changed. Slow connections are dropped rather than blocking.
func (h *Hub) Notify(userID, table string) {
	event := ChangeEvent{
		Type:      "change",
		Table:     table,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal change event", log.FieldError, err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			delete(h.clients[userID], client)
			close(client.send)
		}
	}

	for _, fn := range h.subscribers[userID] {
		fn(event)
	}
}

// Subscribe registers an in-process callback for a user's change events
// and returns a function that removes it.
func (h *Hub) Subscribe(userID string, fn func(ChangeEvent)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[int]func(ChangeEvent))
	}
	id := h.nextSubID
	h.nextSubID++
	h.subscribers[userID][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[userID], id)
		if len(h.subscribers[userID]) == 0 {
			delete(h.subscribers, userID)
		}
	}
}

// ConnectionCount returns the number of open connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}
