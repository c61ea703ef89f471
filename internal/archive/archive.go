// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive reads page archives (zip and rar containers) and builds
// zip output archives in memory.
package archive

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdf2comic/pkg/types"
)

// MetadataEntry is copied byte-for-byte from source to output archives.
const MetadataEntry = "ComicInfo.xml"

// OutputExt is the extension of every archive this package writes.
const OutputExt = "cbz"

// containerExtensions maps source archive extensions to their container kind.
var containerExtensions = map[string]types.ContainerKind{
	".cbz": types.ContainerZip,
	".zip": types.ContainerZip,
	".cbr": types.ContainerRar,
	".rar": types.ContainerRar,
}

// KindOf returns the container kind for path based on its extension.
func KindOf(path string) (types.ContainerKind, error) {
	kind, ok := containerExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a zip or rar archive", types.ErrUnsupportedFormat, filepath.Base(path))
	}
	return kind, nil
}

// Reader lists and reads the entries of a source archive.
type Reader interface {
	// Entries returns file entry names sorted lexicographically. On-disk
	// order is never assumed to match page order.
	Entries() []string

	// ReadEntry returns the raw bytes of the named entry.
	ReadEntry(name string) ([]byte, error)

	Close() error
}

// Open opens the archive at path with the decoder for its container kind.
func Open(path string) (Reader, error) {
	kind, err := KindOf(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case types.ContainerZip:
		z, err := openZip(path)
		if err != nil {
			return nil, err
		}
		return z, nil
	case types.ContainerRar:
		r, err := openRar(path)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: container %s", types.ErrUnsupportedFormat, kind)
	}
}
