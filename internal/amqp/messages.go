package amqp

import (
	"encoding/json"
	"time"

	"github.com/kwanghifi/kwanghifi/internal/core"
)

// Event kinds carried in SaleEventMessage.Kind
const (
	SaleCreated = "created"
	SaleUpdated = "updated"
	SaleDeleted = "deleted"
)

// SaleEventMessage is one ledger mutation. It carries the full record
// so the consumer never has to read the tracker's store: for deletes
// the record is the last state before removal.
type SaleEventMessage struct {
	Kind      string          `json:"kind"`
	Record    core.SaleRecord `json:"record"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewSaleEventMessage creates an event message stamped with the current time
func NewSaleEventMessage(kind string, record core.SaleRecord) *SaleEventMessage {
	return &SaleEventMessage{
		Kind:      kind,
		Record:    record,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SaleEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SaleEventMessageFromJSON creates a message from JSON bytes
func SaleEventMessageFromJSON(data []byte) (*SaleEventMessage, error) {
	var msg SaleEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
