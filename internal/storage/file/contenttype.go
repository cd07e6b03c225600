package file

import (
	"path"
	"strings"
)

// The store only distinguishes the image formats the generation
// backends actually emit; anything else is treated as opaque binary.

// ContentTypeFor maps a filename extension to a content type.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// ExtensionFor maps a content type to a filename extension. Unknown
// types get a generic extension.
func ExtensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
