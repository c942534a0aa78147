package webexapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"webex-room-archiver/internal/models"
)

const defaultPageSize = 1000

// RESTClient talks to the Webex REST API with a personal bearer token
type RESTClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewRESTClient creates a RESTClient for the given API base URL
// (ex: "https://webexapis.com/v1") with a per-request timeout.
func NewRESTClient(baseURL, token string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// GetRoom retrieves the room record. The raw response body is kept on
// the returned Room so the record dump can pass it through verbatim.
func (c *RESTClient) GetRoom(id string) (*models.Room, error) {
	body, _, err := c.get(c.baseURL + "/rooms/" + url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var room models.Room
	if err := json.Unmarshal(body, &room); err != nil {
		return nil, fmt.Errorf("decoding room %s: %w", id, err)
	}
	room.Raw = body
	return &room, nil
}

// GetPerson retrieves a person record by identifier
func (c *RESTClient) GetPerson(id string) (*models.Person, error) {
	body, _, err := c.get(c.baseURL + "/people/" + url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var person models.Person
	if err := json.Unmarshal(body, &person); err != nil {
		return nil, fmt.Errorf("decoding person %s: %w", id, err)
	}
	person.Resolved = true
	return &person, nil
}

// GetMe retrieves the record of the identity owning the bearer token
func (c *RESTClient) GetMe() (*models.Person, error) {
	body, _, err := c.get(c.baseURL + "/people/me")
	if err != nil {
		return nil, err
	}

	var person models.Person
	if err := json.Unmarshal(body, &person); err != nil {
		return nil, fmt.Errorf("decoding own identity: %w", err)
	}
	person.Resolved = true
	return &person, nil
}

// ListMessages retrieves the full message history of a room in API
// delivery order (newest first), following pagination links until the
// history is exhausted. A non-empty mentionedPeople value restricts the
// listing to messages mentioning that identity.
func (c *RESTClient) ListMessages(roomID string, mentionedPeople string) ([]models.Message, error) {
	query := url.Values{}
	query.Set("roomId", roomID)
	query.Set("max", fmt.Sprintf("%d", defaultPageSize))
	if mentionedPeople != "" {
		query.Set("mentionedPeople", mentionedPeople)
	}

	next := c.baseURL + "/messages?" + query.Encode()

	var messages []models.Message
	for next != "" {
		body, nextLink, err := c.get(next)
		if err != nil {
			return nil, err
		}

		var page struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding message page: %w", err)
		}

		for _, item := range page.Items {
			var msg models.Message
			if err := json.Unmarshal(item, &msg); err != nil {
				return nil, fmt.Errorf("decoding message: %w", err)
			}
			msg.Raw = item
			messages = append(messages, msg)
		}

		next = nextLink
	}

	return messages, nil
}

var nextLinkRe = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="next"`)

// get performs an authenticated GET and returns the response body plus
// the pagination link from the Link header, if any.
func (c *RESTClient) get(rawURL string) ([]byte, string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &APIError{StatusCode: resp.StatusCode, Endpoint: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response from %s: %w", rawURL, err)
	}

	nextLink := ""
	if m := nextLinkRe.FindStringSubmatch(resp.Header.Get("Link")); m != nil {
		nextLink = m[1]
	}

	return body, nextLink, nil
}
