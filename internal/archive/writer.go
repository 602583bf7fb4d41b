package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ulikunitz/xz"
)

// Create packs srcDir into an archive at dstPath, compressed according to
// the extension. Entries are stored below baseDir inside the archive.
func Create(srcDir, dstPath, baseDir string) error {
	if !IsArchive(dstPath) {
		return fmt.Errorf("unsupported archive format: %s", dstPath)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer outFile.Close()

	var w io.WriteCloser
	switch compression(dstPath) {
	case "xz":
		w, err = xz.NewWriter(outFile)
		if err != nil {
			return fmt.Errorf("xz writer: %w", err)
		}
	case "gz":
		w = gzip.NewWriter(outFile)
	default:
		w = nopCloser{outFile}
	}

	tw := tar.NewWriter(w)
	if err := addDir(tw, srcDir, baseDir); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish compression: %w", err)
	}
	return outFile.Close()
}

func addDir(tw *tar.Writer, srcDir, baseDir string) error {
	now := time.Now()

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		// Skip root directory
		if relPath == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(filepath.Join(baseDir, relPath))
		if info.IsDir() {
			header.Name += "/"
		}

		// Normalize timestamps for reproducibility
		header.ModTime = now

		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if !info.IsDir() {
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			if _, err := io.Copy(tw, file); err != nil {
				return err
			}
		}

		return nil
	})
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
