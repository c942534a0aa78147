package models

import (
	"encoding/json"
	"time"
)

// Room represents a Webex space whose history is being archived
type Room struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type,omitempty"`
	IsLocked     bool      `json:"isLocked,omitempty"`
	TeamID       string    `json:"teamId,omitempty"`
	CreatorID    string    `json:"creatorId"`
	Created      time.Time `json:"created,omitempty"`
	LastActivity time.Time `json:"lastActivity,omitempty"`

	// Raw holds the API response body verbatim so the record dump can
	// pass through fields this struct does not model.
	Raw json.RawMessage `json:"-"`
}

// RawJSON returns the verbatim API record for the room, falling back to
// re-marshalling the known fields when the raw body was not captured.
func (r *Room) RawJSON() (json.RawMessage, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(r)
}
