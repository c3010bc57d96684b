package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Create writes files (slash separated name -> content) into a new archive at
// dst. The format is detected from dst as Extract does.
func Create(dst string, files map[string]string) (err error) {
	format := DetectFormat(dst)
	if format == FormatUnknown {
		return fmt.Errorf("create %s: %w", dst, ErrUnsupportedFormat)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	switch format {
	case FormatZip:
		return createZip(f, names, files)
	case FormatTarGzip:
		gw := gzip.NewWriter(f)
		if err := createTar(gw, names, files); err != nil {
			return err
		}
		return gw.Close()
	case FormatTarZstd:
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		if err := createTar(zw, names, files); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	default:
		return createTar(f, names, files)
	}
}

func createZip(w io.Writer, names []string, files map[string]string) error {
	zw := zip.NewWriter(w)
	for _, n := range names {
		fw, err := zw.Create(n)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(fw, files[n]); err != nil {
			return err
		}
	}
	return zw.Close()
}

func createTar(w io.Writer, names []string, files map[string]string) error {
	tw := tar.NewWriter(w)
	for _, n := range names {
		hdr := &tar.Header{
			Name:     n,
			Mode:     0o644,
			Size:     int64(len(files[n])),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := io.WriteString(tw, files[n]); err != nil {
			return err
		}
	}
	return tw.Close()
}
