package archivefolder

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// ConflictError reports that the destination folder already exists and
// overwriting was not permitted
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("archive folder %s already exists", e.Path)
}

//go:embed all:static
var staticFS embed.FS

// Subdirectory names inside an archive folder.
const (
	AttachmentsDir = "attachments"
	AvatarsDir     = "avatars"
)

// Folder manages the working directory of one archive run: creation,
// static asset seeding, compression, and all-or-nothing teardown.
type Folder struct {
	dir  string
	name string
	log  logrus.FieldLogger
}

// New creates a Folder handle for dir/name. Nothing touches the
// filesystem until Create is called.
func New(dir, name string, log logrus.FieldLogger) *Folder {
	return &Folder{
		dir:  dir,
		name: name,
		log:  log,
	}
}

// Name returns the folder's base name
func (f *Folder) Name() string {
	return f.name
}

// Path returns the folder's location on disk
func (f *Folder) Path() string {
	return filepath.Join(f.dir, f.name)
}

// Create makes the archive folder and its requested subtrees. An
// existing folder is removed first when overwrite is set and is a
// ConflictError otherwise. When htmlAssets is set the folder is seeded
// with the bundled stylesheet/script/font files the HTML transcript
// links to.
func (f *Folder) Create(overwrite, attachments, avatars, htmlAssets bool) error {
	target := f.Path()

	if _, err := os.Stat(target); err == nil {
		if !overwrite {
			return &ConflictError{Path: target}
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("removing existing folder %s: %w", target, err)
		}
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("creating folder %s: %w", target, err)
	}

	if attachments {
		if err := os.Mkdir(filepath.Join(target, AttachmentsDir), 0o755); err != nil {
			return fmt.Errorf("creating attachments folder: %w", err)
		}
	}

	if avatars {
		if err := os.Mkdir(filepath.Join(target, AvatarsDir), 0o755); err != nil {
			return fmt.Errorf("creating avatars folder: %w", err)
		}
	}

	if htmlAssets {
		if err := f.seedStaticAssets(); err != nil {
			return err
		}
	}

	return nil
}

// seedStaticAssets copies the embedded static tree (.css/.js/.fonts)
// into the folder
func (f *Folder) seedStaticAssets() error {
	return fs.WalkDir(staticFS, "static", func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry == "static" {
			return nil
		}

		rel, err := filepath.Rel("static", filepath.FromSlash(entry))
		if err != nil {
			return err
		}
		target := filepath.Join(f.Path(), rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating asset folder %s: %w", target, err)
			}
			return nil
		}

		data, err := staticFS.ReadFile(entry)
		if err != nil {
			return fmt.Errorf("reading bundled asset %s: %w", entry, err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("seeding asset %s: %w", target, err)
		}
		return nil
	})
}

// WriteFile writes one output file into the folder
func (f *Folder) WriteFile(name string, data []byte) error {
	target := filepath.Join(f.Path(), name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

// Subdir returns the on-disk path of a subdirectory inside the folder
func (f *Folder) Subdir(name string) string {
	return filepath.Join(f.Path(), name)
}

// Destroy removes the folder tree. Idempotent: destroying a missing
// folder is not an error.
func (f *Folder) Destroy() error {
	target := f.Path()
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("removing folder %s: %w", target, err)
	}
	return nil
}
