// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zip"

	"github.com/pdiddy/pdf2comic/pkg/types"
)

// zipReader reads entries through the zip central directory.
type zipReader struct {
	rc    *zip.ReadCloser
	files map[string]*zip.File
	names []string
}

func openZip(path string) (*zipReader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", types.ErrDecode, path, err)
	}

	z := &zipReader{rc: rc, files: make(map[string]*zip.File, len(rc.File))}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if _, dup := z.files[f.Name]; dup {
			continue
		}
		z.files[f.Name] = f
		z.names = append(z.names, f.Name)
	}
	sort.Strings(z.names)
	return z, nil
}

func (z *zipReader) Entries() []string {
	out := make([]string, len(z.names))
	copy(out, z.names)
	return out
}

func (z *zipReader) ReadEntry(name string) ([]byte, error) {
	f, ok := z.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, name)
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening entry %s: %v", types.ErrDecode, name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading entry %s: %v", types.ErrDecode, name, err)
	}
	return data, nil
}

func (z *zipReader) Close() error {
	return z.rc.Close()
}
