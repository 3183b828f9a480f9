package protocol

import "encoding/json"

// Envelope is the standard WebSocket message wrapper. Ack is a client-chosen
// id echoed on the reply for events that have one; 0 means no reply expected.
type Envelope struct {
	Event string          `json:"event"`
	Ack   int             `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope creates an envelope with a JSON-encoded payload.
func NewEnvelope(event string, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}

// MustEnvelope is like NewEnvelope but panics on error.
func MustEnvelope(event string, payload interface{}) Envelope {
	e, err := NewEnvelope(event, payload)
	if err != nil {
		panic(err)
	}
	return e
}
