// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "Book.cbz", "Book.cbz"},
		{"exact", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"ascii", strings.Repeat("a", 31), strings.Repeat("a", 27) + "..."},
		{"multibyte", strings.Repeat("漫", 40), strings.Repeat("漫", 27) + "..."},
		{"mixed", "ab" + strings.Repeat("é", 40), "ab" + strings.Repeat("é", 25) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, 30)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
