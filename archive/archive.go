// Package archive extracts submission archives into a directory.
//
// Supported formats are zip, tar, tar.gz (tgz) and tar.zst (tzst), selected by
// the file extension. Entries that would escape the destination directory are
// rejected and every zip entry is checksum verified while extracted.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Format is the archive format
type Format int

// Supported formats
const (
	FormatUnknown Format = iota
	FormatZip
	FormatTar
	FormatTarGzip
	FormatTarZstd
)

// ErrUnsupportedFormat is returned when the archive format cannot be detected
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// ErrUnsafePath is returned when an entry escapes the destination directory
var ErrUnsafePath = errors.New("archive entry escapes destination")

var formatNames = []string{"unknown", "zip", "tar", "tar.gz", "tar.zst"}

func (f Format) String() string {
	if int(f) < 0 || int(f) >= len(formatNames) {
		return formatNames[0]
	}
	return formatNames[f]
}

// DetectFormat detects archive format from the file name
func DetectFormat(name string) Format {
	n := strings.ToLower(name)
	switch {
	case strings.HasSuffix(n, ".zip"):
		return FormatZip
	case strings.HasSuffix(n, ".tar.gz"), strings.HasSuffix(n, ".tgz"):
		return FormatTarGzip
	case strings.HasSuffix(n, ".tar.zst"), strings.HasSuffix(n, ".tzst"):
		return FormatTarZstd
	case strings.HasSuffix(n, ".tar"):
		return FormatTar
	default:
		return FormatUnknown
	}
}

// Extract extracts archive at src into the existing directory dst
func Extract(src, dst string) error {
	switch f := DetectFormat(src); f {
	case FormatZip:
		return extractZip(src, dst)
	case FormatTar, FormatTarGzip, FormatTarZstd:
		return extractTarFile(src, dst, f)
	default:
		return fmt.Errorf("extract %s: %w", filepath.Base(src), ErrUnsupportedFormat)
	}
}

func extractZip(src, dst string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(dst, f.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}
		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir: %w", err)
			}
		case mode.IsRegular():
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("open zip entry %s: %w", f.Name, err)
			}
			err = writeFile(target, rc, mode.Perm())
			rc.Close()
			if err != nil {
				return fmt.Errorf("extract zip entry %s: %w", f.Name, err)
			}
		default:
			// skip links and other types
		}
	}
	return nil
}

func extractTarFile(src, dst string, f Format) error {
	file, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	switch f {
	case FormatTarGzip:
		gr, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("create gzip reader: %w", err)
		}
		defer gr.Close()
		r = gr

	case FormatTarZstd:
		zr, err := zstd.NewReader(file)
		if err != nil {
			return fmt.Errorf("create zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return extractTar(r, dst)
}

func extractTar(r io.Reader, dst string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}
		target, err := safeJoin(dst, hdr.Name)
		if err != nil {
			return err
		}
		if target == "" {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir: %w", err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, fs.FileMode(hdr.Mode).Perm()); err != nil {
				return fmt.Errorf("extract tar entry %s: %w", hdr.Name, err)
			}
		default:
			// skip other types
		}
	}
}

// safeJoin returns the path of entry name inside dst, empty for the root
func safeJoin(dst, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" {
		return "", nil
	}
	cleanName := filepath.Clean(filepath.FromSlash(name))
	if cleanName == "." {
		return "", nil
	}
	if filepath.IsAbs(cleanName) || cleanName == ".." || strings.HasPrefix(cleanName, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	target := filepath.Join(dst, cleanName)
	if !strings.HasPrefix(target, filepath.Clean(dst)+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	// the owner must be able to read back the sources
	perm |= 0o600
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
