package archiver

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus/hooks/test"

	"webex-room-archiver/internal/attachments"
	"webex-room-archiver/internal/downloader"
	"webex-room-archiver/internal/models"
	"webex-room-archiver/internal/render"
	"webex-room-archiver/internal/webexapi"
)

type MockClient struct {
	Room       *models.Room
	Me         *models.Person
	People     map[string]*models.Person
	Messages   []models.Message
	GotMention string

	PersonCalls int
}

func (m *MockClient) GetRoom(id string) (*models.Room, error) {
	if m.Room == nil || m.Room.ID != id {
		return nil, &webexapi.APIError{StatusCode: http.StatusNotFound, Endpoint: "/rooms/" + id}
	}
	return m.Room, nil
}

func (m *MockClient) GetPerson(id string) (*models.Person, error) {
	m.PersonCalls++
	person, ok := m.People[id]
	if !ok {
		return nil, &webexapi.APIError{StatusCode: http.StatusNotFound, Endpoint: "/people/" + id}
	}
	return person, nil
}

func (m *MockClient) GetMe() (*models.Person, error) {
	return m.Me, nil
}

func (m *MockClient) ListMessages(roomID, mentionedPeople string) ([]models.Message, error) {
	m.GotMention = mentionedPeople
	return m.Messages, nil
}

var messageTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// teamSyncClient builds the canonical fixture: room "Team Sync" with two
// messages from a@x.com ten seconds apart and one from b@x.com, listed
// newest first.
func teamSyncClient() *MockClient {
	return &MockClient{
		Room: &models.Room{
			ID:        "abc123",
			Title:     "Team Sync",
			CreatorID: "p1",
			Raw:       json.RawMessage(`{"id":"abc123","title":"Team Sync","creatorId":"p1"}`),
		},
		Me: &models.Person{ID: "me", DisplayName: "Archivist", Type: "person", Resolved: true},
		People: map[string]*models.Person{
			"p1": {ID: "p1", Emails: []string{"a@x.com"}, DisplayName: "Alice", Resolved: true},
			"p2": {ID: "p2", Emails: []string{"b@x.com"}, DisplayName: "Bob", Resolved: true},
		},
		Messages: []models.Message{
			{ID: "m3", PersonID: "p2", PersonEmail: "b@x.com", Text: "sounds good", Created: messageTime.Add(5 * time.Minute)},
			{ID: "m2", PersonID: "p1", PersonEmail: "a@x.com", Text: "second thought", Created: messageTime.Add(10 * time.Second)},
			{ID: "m1", PersonID: "p1", PersonEmail: "a@x.com", Text: "first thought", Created: messageTime},
		},
	}
}

func newTestArchiver(client webexapi.Client, httpClient *http.Client) *Archiver {
	log, _ := test.NewNullLogger()
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	probe := attachments.NewProbe(httpClient, "token")
	dl := downloader.New(httpClient, "token", log)
	renderer := render.NewRenderer(render.NewEngine(), log)
	return New(client, probe, dl, renderer, log)
}

func testOptions(t *testing.T) models.ArchiveConfig {
	opts := models.DefaultArchiveConfig()
	opts.OutputDir = t.TempDir()
	return opts
}

func TestArchiveRoomEndToEnd(t *testing.T) {
	client := teamSyncClient()
	opts := testOptions(t)

	bundle, err := newTestArchiver(client, nil).ArchiveRoom("abc123", opts)
	if err != nil {
		t.Fatalf("ArchiveRoom() error: %v", err)
	}

	if bundle != "Team_Sync_abc123.tgz" {
		t.Errorf("Expected bundle 'Team_Sync_abc123.tgz', got '%s'", bundle)
	}

	entries := readBundle(t, filepath.Join(opts.OutputDir, bundle))
	for _, expected := range []string{
		"Team_Sync_abc123/Team_Sync_abc123.txt",
		"Team_Sync_abc123/Team_Sync_abc123.html",
		"Team_Sync_abc123/Team_Sync_abc123.json",
		"Team_Sync_abc123/space_details.json",
	} {
		if _, ok := entries[expected]; !ok {
			t.Errorf("Expected bundle entry %s", expected)
		}
	}

	html := entries["Team_Sync_abc123/Team_Sync_abc123.html"]
	if got := strings.Count(html, `class="message continuation"`); got != 1 {
		t.Errorf("Expected exactly 1 continuation-grouped message, got %d", got)
	}

	// Non-bot callers fetch the full history
	if client.GotMention != "" {
		t.Errorf("Expected unfiltered history, got mention filter '%s'", client.GotMention)
	}

	// Two unique senders plus the creator lookup
	if client.PersonCalls != 3 {
		t.Errorf("Expected 3 identity lookups, got %d", client.PersonCalls)
	}
}

func TestArchiveRoomCreatorNotFound(t *testing.T) {
	client := teamSyncClient()
	client.Room.CreatorID = "vanished"
	opts := testOptions(t)

	bundle, err := newTestArchiver(client, nil).ArchiveRoom("abc123", opts)
	if err != nil {
		t.Fatalf("Expected run to complete with placeholder creator, got %v", err)
	}

	entries := readBundle(t, filepath.Join(opts.OutputDir, bundle))

	var details struct {
		Creator struct {
			DisplayName string `json:"displayName"`
		} `json:"creator"`
	}
	if err := json.Unmarshal([]byte(entries["Team_Sync_abc123/space_details.json"]), &details); err != nil {
		t.Fatalf("Parsing space_details.json: %v", err)
	}
	if details.Creator.DisplayName != models.UnresolvedDisplayName {
		t.Errorf("Expected placeholder creator, got '%s'", details.Creator.DisplayName)
	}
}

func TestArchiveRoomWithAttachments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "gone"):
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodHead:
			w.Header().Set("Content-Disposition", `attachment; filename="notes.txt"`)
			w.Header().Set("Content-Type", "text/plain")
		default:
			fmt.Fprint(w, "attachment body")
		}
	}))
	defer server.Close()

	client := teamSyncClient()
	client.Messages[0].Files = []string{server.URL + "/contents/f1", server.URL + "/contents/gone"}

	opts := testOptions(t)
	bundle, err := newTestArchiver(client, server.Client()).ArchiveRoom("abc123", opts)
	if err != nil {
		t.Fatalf("ArchiveRoom() error: %v", err)
	}

	entries := readBundle(t, filepath.Join(opts.OutputDir, bundle))
	if entries["Team_Sync_abc123/attachments/notes.txt"] != "attachment body" {
		t.Error("Expected live attachment to be downloaded into the bundle")
	}

	// The deleted file renders with an indicator but is never fetched
	text := entries["Team_Sync_abc123/Team_Sync_abc123.txt"]
	if !strings.Contains(text, "(deleted)") {
		t.Error("Expected deleted-file indicator in the text transcript")
	}
	for name := range entries {
		if strings.Contains(name, "attachments/") && strings.Contains(name, "gone") {
			t.Errorf("Deleted file must not be downloaded, found %s", name)
		}
	}
}

func TestArchiveRoomBotListsMentionsOnly(t *testing.T) {
	client := teamSyncClient()
	client.Me.Type = "bot"

	if _, err := newTestArchiver(client, nil).ArchiveRoom("abc123", testOptions(t)); err != nil {
		t.Fatalf("ArchiveRoom() error: %v", err)
	}
	if client.GotMention != "me" {
		t.Errorf("Expected bot caller to filter by mentions, got '%s'", client.GotMention)
	}
}

func TestArchiveRoomTearsDownOnFailure(t *testing.T) {
	// Metadata probe fails with a server error partway through the run
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := teamSyncClient()
	client.Messages[0].Files = []string{server.URL + "/contents/f1"}

	opts := testOptions(t)
	_, err := newTestArchiver(client, server.Client()).ArchiveRoom("abc123", opts)
	if err == nil {
		t.Fatal("Expected archive attempt to fail")
	}

	if _, statErr := os.Stat(filepath.Join(opts.OutputDir, "Team_Sync_abc123")); !os.IsNotExist(statErr) {
		t.Error("Expected working folder to be torn down on failure")
	}
	if _, statErr := os.Stat(filepath.Join(opts.OutputDir, "Team_Sync_abc123.tgz")); !os.IsNotExist(statErr) {
		t.Error("Expected no bundle after a failed run")
	}
}

func TestArchiveRoomDeleteFolder(t *testing.T) {
	client := teamSyncClient()
	opts := testOptions(t)
	opts.DeleteFolder = true

	bundle, err := newTestArchiver(client, nil).ArchiveRoom("abc123", opts)
	if err != nil {
		t.Fatalf("ArchiveRoom() error: %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(opts.OutputDir, "Team_Sync_abc123")); !os.IsNotExist(statErr) {
		t.Error("Expected uncompressed folder to be deleted")
	}
	if _, statErr := os.Stat(filepath.Join(opts.OutputDir, bundle)); statErr != nil {
		t.Errorf("Expected bundle to remain: %v", statErr)
	}
}

func TestArchiveRoomConflict(t *testing.T) {
	client := teamSyncClient()
	opts := testOptions(t)
	opts.OverwriteFolder = false

	arch := newTestArchiver(client, nil)
	if _, err := arch.ArchiveRoom("abc123", opts); err != nil {
		t.Fatalf("First ArchiveRoom() error: %v", err)
	}

	_, err := arch.ArchiveRoom("abc123", opts)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected conflict error on second run, got %v", err)
	}
}

// readBundle extracts a tgz into a map of entry name to contents
func readBundle(t *testing.T, path string) map[string]string {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Opening bundle: %v", err)
	}
	defer func() {
		_ = file.Close()
	}()

	gz, err := gzip.NewReader(file)
	if err != nil {
		t.Fatalf("Reading gzip stream: %v", err)
	}

	entries := make(map[string]string)
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Reading tar stream: %v", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("Reading tar entry %s: %v", header.Name, err)
		}
		entries[header.Name] = string(data)
	}
	return entries
}
