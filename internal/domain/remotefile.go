package domain

import (
	"strings"
)

// RemoteFile is one file as reported by a camera source.
type RemoteFile struct {
	// Dir is the card directory (e.g. 103_FUJI) for network sources and the
	// absolute directory for filesystem sources.
	Dir         string
	Name        string
	Type        string
	EncodedTime *int64
}

// Key is the deduplication key within a source.
func (f RemoteFile) Key() string {
	return f.Name
}

func IsRawExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".arw", ".cr2", ".cr3", ".nef", ".raf", ".rw2", ".orf", ".dng":
		return true
	default:
		return false
	}
}

func IsJpegExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

// IsImageExtension reports whether ext is a RAW or JPEG extension.
func IsImageExtension(ext string) bool {
	return IsRawExtension(ext) || IsJpegExtension(ext)
}
