package downloader

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func newTestDownloader(client *http.Client) *Downloader {
	log, _ := test.NewNullLogger()
	return New(client, "token", log)
}

func TestDownloadAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, "contents of %s", r.URL.Path)
	}))
	defer server.Close()

	folder := t.TempDir()
	files := make(map[string]string)
	for i := 0; i < 10; i++ {
		files[fmt.Sprintf("%s/file%d", server.URL, i)] = fmt.Sprintf("file%d.bin", i)
	}

	dl := newTestDownloader(server.Client())
	if err := dl.DownloadAll(folder, files, 3); err != nil {
		t.Fatalf("DownloadAll() error: %v", err)
	}

	for i := 0; i < 10; i++ {
		path := filepath.Join(folder, fmt.Sprintf("file%d.bin", i))
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Expected %s to exist: %v", path, err)
		}
		expected := fmt.Sprintf("contents of /file%d", i)
		if string(data) != expected {
			t.Errorf("File %d: expected %q, got %q", i, expected, string(data))
		}
	}
}

func TestDownloadAllFirstFailureWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	folder := t.TempDir()
	files := map[string]string{
		server.URL + "/broken": "broken.bin",
	}
	for i := 0; i < 9; i++ {
		files[fmt.Sprintf("%s/ok%d", server.URL, i)] = fmt.Sprintf("ok%d.bin", i)
	}

	dl := newTestDownloader(server.Client())
	err := dl.DownloadAll(folder, files, 3)
	if err == nil {
		t.Fatal("Expected one failing download to fail the operation")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("Expected error to name the failing url, got %v", err)
	}
}

func TestDownloadAllEmptySet(t *testing.T) {
	dl := newTestDownloader(http.DefaultClient)
	if err := dl.DownloadAll(t.TempDir(), nil, 3); err != nil {
		t.Errorf("Expected empty set to succeed, got %v", err)
	}
}
