// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Input validation errors. These abort the whole invocation before any
// conversion work starts.
var (
	ErrInputNotFound     = errors.New("input not found")
	ErrInputEmpty        = errors.New("input directory is empty")
	ErrUnknownTarget     = errors.New("invalid comic format")
	ErrUnsupportedTarget = errors.New("target format not supported")
)

// Per-document errors. In batch mode the document is skipped and the
// batch continues.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrDecode            = errors.New("decode failed")
	ErrEncode            = errors.New("encode failed")
	ErrEmptyDocument     = errors.New("no pages found")
	ErrNotFound          = errors.New("entry not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrOverwriteSource   = errors.New("output would overwrite source")
)
