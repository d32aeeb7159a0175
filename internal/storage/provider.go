// Package storage defines the receipt image archive abstraction.
package storage

import "path/filepath"

// Archive is the interface for archived receipt image operations. Paths are
// relative to the archive root.
type Archive interface {
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Delete removes the file at path.
	Delete(path string) error
}

// PathFor derives the archive location of an uploaded file from its content
// checksum and MIME type. Files are sharded by the first two checksum
// characters to keep directories small.
func PathFor(sum, mimeType string) string {
	return filepath.Join(sum[:2], sum+extFor(mimeType))
}

func extFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	default:
		return ".jpg"
	}
}
