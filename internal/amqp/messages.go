package amqp

import (
	"encoding/json"
	"time"
)

// Mirror message operations
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// MirrorMessage tells the mirror worker that a transaction changed.
// It carries only the ID and operation, the worker fetches the full
// transaction from the database.
type MirrorMessage struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMirrorMessage creates a new mirror message for the given transaction
func NewMirrorMessage(id, op string) *MirrorMessage {
	return &MirrorMessage{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MirrorMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MirrorMessageFromJSON creates a message from JSON bytes
func MirrorMessageFromJSON(data []byte) (*MirrorMessage, error) {
	var msg MirrorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
