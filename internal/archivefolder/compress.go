package archivefolder

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// ArchiveExtension is the suffix of the final compressed bundle
const ArchiveExtension = ".tgz"

// Compress packs the folder into <name>.tgz next to it and returns the
// bundle's file name. Entries are stored under the folder name so the
// bundle unpacks into a single directory.
func (f *Folder) Compress() (string, error) {
	bundleName := f.name + ArchiveExtension
	bundlePath := filepath.Join(f.dir, bundleName)

	out, err := os.Create(bundlePath)
	if err != nil {
		return "", fmt.Errorf("creating bundle %s: %w", bundlePath, err)
	}
	defer func() {
		_ = out.Close()
	}()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	root := f.Path()
	err = filepath.Walk(root, func(entry string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(f.dir, entry)
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("building tar header for %s: %w", entry, err)
		}
		header.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("writing tar header for %s: %w", entry, err)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		file, err := os.Open(entry)
		if err != nil {
			return fmt.Errorf("opening %s: %w", entry, err)
		}
		defer func() {
			_ = file.Close()
		}()

		if _, err := io.Copy(tw, file); err != nil {
			return fmt.Errorf("archiving %s: %w", entry, err)
		}
		return nil
	})
	if err != nil {
		_ = tw.Close()
		_ = gz.Close()
		return "", err
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("finalizing tar stream: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("finalizing gzip stream: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing bundle %s: %w", bundlePath, err)
	}

	f.log.Infof("Compressed archive folder to %s", bundleName)
	return bundleName, nil
}
