package models

import (
	"encoding/json"
	"time"
)

// Message represents a single entry of the room history, in the shape
// returned by the messages API
type Message struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId,omitempty"`
	PersonID    string    `json:"personId"`
	PersonEmail string    `json:"personEmail"`
	Text        string    `json:"text,omitempty"`
	Markdown    string    `json:"markdown,omitempty"`
	HTML        string    `json:"html,omitempty"`
	Files       []string  `json:"files,omitempty"`
	Created     time.Time `json:"created"`

	// Raw holds the API record verbatim for the structured dump.
	Raw json.RawMessage `json:"-"`
}

// RawJSON returns the verbatim API record for the message, falling back
// to re-marshalling the known fields when the raw body was not captured.
func (m *Message) RawJSON() (json.RawMessage, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	return json.Marshal(m)
}

// GroupedMessage is a Message annotated with its visual-grouping flag:
// Continuation marks a message that belongs to the same speaker turn as
// the message rendered immediately before it.
type GroupedMessage struct {
	Message
	Continuation bool
}
