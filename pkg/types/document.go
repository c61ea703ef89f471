// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
)

// SourceKind classifies an input document.
type SourceKind int

const (
	// SourceDocument is a paginated document rendered page by page (PDF).
	SourceDocument SourceKind = iota + 1
	// SourcePageArchive is an existing archive of page images.
	SourcePageArchive
)

func (k SourceKind) String() string {
	switch k {
	case SourceDocument:
		return "document"
	case SourcePageArchive:
		return "page-archive"
	default:
		return "unknown"
	}
}

// ContainerKind identifies an archive container format.
type ContainerKind int

const (
	// ContainerZip is readable and writable (.cbz, .zip).
	ContainerZip ContainerKind = iota + 1
	// ContainerRar is read-only (.cbr, .rar).
	ContainerRar
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerZip:
		return "zip"
	case ContainerRar:
		return "rar"
	default:
		return "unknown"
	}
}

// ConversionStatus is the outcome of converting one document.
type ConversionStatus string

const (
	ConversionDone    ConversionStatus = "converted"
	ConversionSkipped ConversionStatus = "skipped"
	ConversionFailed  ConversionStatus = "failed"
)

// Document is one classified source file. It is immutable once built.
type Document struct {
	// Path is the filesystem path of the source.
	Path string `json:"path" yaml:"path"`

	// Kind is the detected source kind.
	Kind SourceKind `json:"kind" yaml:"kind"`

	// Container is set for page archives only.
	Container ContainerKind `json:"container,omitempty" yaml:"container,omitempty"`
}

// BaseName returns the file name without its extension.
func (d Document) BaseName() string {
	name := filepath.Base(d.Path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// PageBase returns the base name with spaces replaced by underscores,
// used as the prefix of page entry names.
func (d Document) PageBase() string {
	return strings.ReplaceAll(d.BaseName(), " ", "_")
}
