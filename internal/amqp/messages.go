package amqp

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// UserCreatedMessage announces a newly registered user. The worker answers it
// by provisioning the user's ledger.
type UserCreatedMessage struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

var errMissingUserID = errors.New("user_id is required")

// NewUserCreatedMessage creates a new message stamped with the current time
func NewUserCreatedMessage(userID string) *UserCreatedMessage {
	return &UserCreatedMessage{
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *UserCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *UserCreatedMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return errMissingUserID
	}
	return nil
}

// UserCreatedMessageFromJSON decodes and validates a message body.
func UserCreatedMessageFromJSON(data []byte) (*UserCreatedMessage, error) {
	var msg UserCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	msg.UserID = strings.TrimSpace(msg.UserID)
	return &msg, nil
}
