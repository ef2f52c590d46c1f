package queue

import (
	"encoding/json"
	"time"
)

const (
	TypeSessionCompleted = "session.completed"
	TypeSessionFeedback  = "session.feedback"
)

// MessageVersion is bumped when the payload shape changes.
const MessageVersion = 1

// Message is a session event for the adaptive-state worker. Feedback is set
// only for session.feedback.
type Message struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
	Feedback   string    `json:"feedback,omitempty"`
	RequestID  string    `json:"requestId"`
	Version    int       `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
