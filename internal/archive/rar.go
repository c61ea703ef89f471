// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/nwaples/rardecode/v2"

	"github.com/pdiddy/pdf2comic/pkg/types"
)

// rarReader supports rar's sequential-only decoding by extracting every
// file entry once into a spool directory, so entries can then be read by
// name in any order.
type rarReader struct {
	spoolDir string
	files    map[string]string // entry name -> spool file
	names    []string
}

func openRar(path string) (_ *rarReader, err error) {
	rc, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", types.ErrDecode, path, err)
	}
	defer rc.Close()

	spool, err := os.MkdirTemp("", ".pdf2comic-rar-*")
	if err != nil {
		return nil, fmt.Errorf("creating spool directory: %w", err)
	}
	r := &rarReader{spoolDir: spool, files: make(map[string]string)}
	defer func() {
		if err != nil {
			r.Close()
		}
	}()

	for i := 0; ; i++ {
		hdr, err := rc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", types.ErrDecode, path, err)
		}
		if hdr.IsDir {
			continue
		}
		if _, dup := r.files[hdr.Name]; dup {
			continue
		}

		dest := filepath.Join(spool, strconv.Itoa(i))
		if err := spoolEntry(dest, rc); err != nil {
			return nil, fmt.Errorf("%w: extracting %s from %s: %v", types.ErrDecode, hdr.Name, path, err)
		}
		r.files[hdr.Name] = dest
		r.names = append(r.names, hdr.Name)
	}

	sort.Strings(r.names)
	return r, nil
}

func spoolEntry(dest string, src io.Reader) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}

func (r *rarReader) Entries() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *rarReader) ReadEntry(name string) ([]byte, error) {
	p, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, name)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: reading entry %s: %v", types.ErrDecode, name, err)
	}
	return data, nil
}

func (r *rarReader) Close() error {
	return os.RemoveAll(r.spoolDir)
}
