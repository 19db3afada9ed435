package amqp

import (
	"encoding/json"
	"time"
)

// CustomerUpdateMessage announces that a customer profile was edited.
// It carries only the identity key and a timestamp; consumers re-read the
// row from the database rather than trusting a possibly stale payload.
type CustomerUpdateMessage struct {
	SSN       string    `json:"ssn"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCustomerUpdateMessage(ssn string) *CustomerUpdateMessage {
	return &CustomerUpdateMessage{
		SSN:       ssn,
		UpdatedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CustomerUpdateMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CustomerUpdateMessageFromJSON creates a message from JSON bytes
func CustomerUpdateMessageFromJSON(data []byte) (*CustomerUpdateMessage, error) {
	var msg CustomerUpdateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
