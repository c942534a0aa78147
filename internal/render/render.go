package render

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"webex-room-archiver/internal/models"
)

// TranscriptContext carries everything a transcript render needs. All
// identity and attachment data must already be resolved; rendering is a
// pure function of this context.
type TranscriptContext struct {
	Room            *models.Room
	Creator         *models.Person
	Messages        []models.GroupedMessage
	People          map[string]*models.Person
	Attachments     map[string]models.AttachmentMetadata
	DownloadAvatars bool
	TimestampFormat string
}

// Renderer produces the transcript outputs for one room
type Renderer struct {
	engine TemplateEngine
	log    logrus.FieldLogger
}

// NewRenderer creates a Renderer on top of a template engine
func NewRenderer(engine TemplateEngine, log logrus.FieldLogger) *Renderer {
	return &Renderer{
		engine: engine,
		log:    log,
	}
}

// RenderText produces the plain-text transcript
func (r *Renderer) RenderText(ctx TranscriptContext) (string, error) {
	r.log.Debugf("Rendering text transcript with %d messages", len(ctx.Messages))
	return r.engine.Render(TextTemplate, ctx)
}

// RenderHTML produces the HTML transcript. Continuation flags drive the
// compact visual grouping; avatar references are emitted only when
// avatar download was requested.
func (r *Renderer) RenderHTML(ctx TranscriptContext) (string, error) {
	r.log.Debugf("Rendering HTML transcript with %d messages", len(ctx.Messages))
	return r.engine.Render(HTMLTemplate, ctx)
}

// RenderJSON serializes the message records verbatim as
// {"items": [...]}, preserving the API's own field set.
func RenderJSON(messages []models.GroupedMessage) ([]byte, error) {
	items := make([]json.RawMessage, 0, len(messages))
	for i := range messages {
		raw, err := messages[i].RawJSON()
		if err != nil {
			return nil, fmt.Errorf("serializing message %s: %w", messages[i].ID, err)
		}
		items = append(items, raw)
	}

	payload := struct {
		Items []json.RawMessage `json:"items"`
	}{Items: items}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializing transcript: %w", err)
	}
	return data, nil
}

// RenderSpaceDetails serializes the room and creator records. The room
// record passes through verbatim; an unresolved creator keeps the
// placeholder shape.
func RenderSpaceDetails(room *models.Room, creator *models.Person) ([]byte, error) {
	roomJSON, err := room.RawJSON()
	if err != nil {
		return nil, fmt.Errorf("serializing room record: %w", err)
	}

	payload := struct {
		Space   json.RawMessage `json:"space"`
		Creator *models.Person  `json:"creator"`
	}{Space: roomJSON, Creator: creator}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializing space details: %w", err)
	}
	return data, nil
}
