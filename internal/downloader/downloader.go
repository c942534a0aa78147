package downloader

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Downloader fetches sets of URLs into a folder with bounded
// concurrency. Bodies are streamed straight to disk, never buffered
// whole in memory.
type Downloader struct {
	http  *http.Client
	token string
	log   logrus.FieldLogger
}

// New creates a Downloader that authenticates with the given bearer token
func New(httpClient *http.Client, token string, log logrus.FieldLogger) *Downloader {
	return &Downloader{
		http:  httpClient,
		token: token,
		log:   log,
	}
}

// DownloadAll fetches every URL in files (a URL-to-filename map) into
// folder, running at most workers transfers at a time. All URLs are
// submitted up front; the first failure is returned and fails the whole
// operation, while transfers already in flight drain on their own.
func (d *Downloader) DownloadAll(folder string, files map[string]string, workers int) error {
	if len(files) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	group := new(errgroup.Group)
	group.SetLimit(workers)

	for url, filename := range files {
		url, filename := url, filename
		group.Go(func() error {
			return d.download(folder, url, filename)
		})
	}

	return group.Wait()
}

// download streams one URL's body to folder/filename
func (d *Downloader) download(folder, url, filename string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building download request for %s: %w", url, err)
	}
	req.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("downloading %s: unexpected status %d", url, resp.StatusCode)
	}

	destination := filepath.Join(folder, filename)
	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destination, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("writing %s: %w", destination, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", destination, err)
	}

	d.log.Debugf("Downloaded %s to %s", url, destination)
	return nil
}
