package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"cover.png", "image/png"},
		{"cover.PNG", "image/png"},
		{"page.jpg", "image/jpeg"},
		{"page.jpeg", "image/jpeg"},
		{"page.webp", "image/webp"},
		{"illustrations/abc-123.png", "image/png"},
		{"notes.txt", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ContentTypeFor(tt.filename), "filename %q", tt.filename)
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", ".png"},
		{"IMAGE/PNG", ".png"},
		{"image/jpeg", ".jpg"},
		{"image/webp", ".webp"},
		{"application/pdf", ".bin"},
		{"", ".bin"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtensionFor(tt.contentType), "content type %q", tt.contentType)
	}
}

func TestContentTypeRoundTrip(t *testing.T) {
	for _, ct := range []string{"image/png", "image/jpeg", "image/webp"} {
		assert.Equal(t, ct, ContentTypeFor("img"+ExtensionFor(ct)))
	}
}
