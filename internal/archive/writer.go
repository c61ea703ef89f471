// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/pdiddy/pdf2comic/pkg/types"
)

// ErrFlushed is returned when a Writer is used after Flush.
var ErrFlushed = errors.New("archive already flushed")

// Writer accumulates a zip archive in memory. Nothing touches the
// filesystem until Flush, which may be called once.
type Writer struct {
	buf     bytes.Buffer
	zw      *zip.Writer
	names   map[string]bool
	flushed bool
	now     func() time.Time
}

// NewWriter begins an empty in-memory archive.
func NewWriter() *Writer {
	w := &Writer{names: make(map[string]bool), now: time.Now}
	w.zw = zip.NewWriter(&w.buf)
	return w
}

// WriteEntry appends a stored (uncompressed) entry. Names must be unique.
func (w *Writer) WriteEntry(name string, data []byte) error {
	if w.flushed {
		return ErrFlushed
	}
	if w.names[name] {
		return fmt.Errorf("%w: %s", types.ErrDuplicateEntry, name)
	}

	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: w.now(),
	}
	ew, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("creating entry %s: %w", name, err)
	}
	if _, err := ew.Write(data); err != nil {
		return fmt.Errorf("writing entry %s: %w", name, err)
	}
	w.names[name] = true
	return nil
}

// Len returns the number of entries written so far.
func (w *Writer) Len() int {
	return len(w.names)
}

// Flush finalizes the archive and writes it to path, truncating any
// existing file.
func (w *Writer) Flush(path string) error {
	if w.flushed {
		return ErrFlushed
	}
	w.flushed = true

	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := os.WriteFile(path, w.buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
