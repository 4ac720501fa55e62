package aixm

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// zstdReadCloser adapts a *zstd.Decoder (which exposes Close with no
// error return) to io.ReadCloser, closing the underlying file too.
type zstdReadCloser struct {
	dec  *zstd.Decoder
	file *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.file.Close()
}

// OpenSource opens an AIXM document for streaming. Files ending in
// ".zst" are transparently decompressed, the same accommodation
// mmp-vice makes for its zstd-compressed airspace resources
// (pkg/aviation/db.go parseMVAs) — French AIP extracts are large enough
// that shipping them zstd-compressed is routine.
func OpenSource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd reader for %s: %w", path, err)
	}
	return &zstdReadCloser{dec: dec, file: f}, nil
}
