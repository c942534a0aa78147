package webexapi

import "webex-room-archiver/internal/models"

// Client is the transport used to read rooms, people, and message
// history from the Webex API. Implementations must return an *APIError
// for unexpected response statuses so callers can distinguish not-found
// from other failures.
type Client interface {
	GetRoom(id string) (*models.Room, error)
	GetPerson(id string) (*models.Person, error)
	GetMe() (*models.Person, error)
	ListMessages(roomID string, mentionedPeople string) ([]models.Message, error)
}
