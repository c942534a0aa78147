package attachments

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"webex-room-archiver/internal/models"
	"webex-room-archiver/internal/webexapi"
)

// MalformedMetadataError reports a successful metadata response whose
// Content-Disposition header carried no parsable filename. This is a
// hard stop: downloads need a destination filename.
type MalformedMetadataError struct {
	URL                string
	ContentDisposition string
}

func (e *MalformedMetadataError) Error() string {
	return fmt.Sprintf("no filename in Content-Disposition %q for url %s", e.ContentDisposition, e.URL)
}

var filenameRe = regexp.MustCompile(`(?i)filename="(.+?)"`)

// Probe resolves attachment metadata from the file endpoint's response
// headers without transferring the file body
type Probe struct {
	http  *http.Client
	token string
}

// NewProbe creates a Probe that authenticates with the given bearer token
func NewProbe(httpClient *http.Client, token string) *Probe {
	return &Probe{
		http:  httpClient,
		token: token,
	}
}

// Details issues a HEAD request for the attachment URL. A not-found
// response marks the file as deleted rather than failing: files can
// disappear from the server between being referenced in history and
// being archived, and that must not abort the run.
func (p *Probe) Details(url string) (models.AttachmentMetadata, error) {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return models.AttachmentMetadata{}, fmt.Errorf("building metadata request for %s: %w", url, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	// An empty Accept-Encoding makes the server report the true byte length
	req.Header.Set("Accept-Encoding", "")

	resp, err := p.http.Do(req)
	if err != nil {
		return models.AttachmentMetadata{}, fmt.Errorf("requesting metadata for %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return models.AttachmentMetadata{URL: url, Deleted: true}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.AttachmentMetadata{}, &webexapi.APIError{StatusCode: resp.StatusCode, Endpoint: url}
	}

	disposition := resp.Header.Get("Content-Disposition")
	match := filenameRe.FindStringSubmatch(disposition)
	if match == nil {
		return models.AttachmentMetadata{}, &MalformedMetadataError{URL: url, ContentDisposition: disposition}
	}

	// Zero or absent lengths are accepted verbatim; the remote is
	// authoritative and an empty file is legal.
	length, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)

	return models.AttachmentMetadata{
		URL:                url,
		ContentDisposition: disposition,
		ContentLength:      length,
		ContentType:        resp.Header.Get("Content-Type"),
		Filename:           match[1],
	}, nil
}
