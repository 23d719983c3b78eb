package domain

import "strings"

type AccessMode int

const (
	ModeNetwork AccessMode = iota
	ModeFilesystem
)

func (m AccessMode) String() string {
	switch m {
	case ModeNetwork:
		return "network"
	case ModeFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Source is a camera endpoint found at poll time. It is never persisted.
type Source struct {
	Name       string
	Identifier string
	Mode       AccessMode

	// Network mode.
	SSID     string
	Password string

	// Filesystem mode.
	MountPath string
}

// DisplayName strips prefix and leading whitespace from identifier, falling
// back to fallback when nothing is left.
//
//	DisplayName("ez Share X100S", "ez Share", "ezshare") == "X100S"
//	DisplayName("ez Share", "ez Share", "ezshare")       == "ezshare"
func DisplayName(identifier, prefix, fallback string) string {
	name := identifier
	if _, after, found := strings.Cut(identifier, prefix); found && prefix != "" {
		name = after
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	return name
}
