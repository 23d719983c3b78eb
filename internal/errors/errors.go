package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	InvalidConfig  Kind = "invalid_config"
	NotFound       Kind = "not_found"
	ExifFailure    Kind = "exif_failure"
	IOFailure      Kind = "io_failure"
	Internal       Kind = "internal"
	Discovery      Kind = "discovery"
	Listing        Kind = "listing"
	Fetch          Kind = "fetch"
	DateResolution Kind = "date_resolution"
	Upload         Kind = "upload"
	Commit         Kind = "commit"
	Network        Kind = "network"
)

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// New builds an AppError from a message instead of an underlying error.
func New(kind Kind, op, path, msg string) error {
	return Wrap(kind, op, path, stderrors.New(msg))
}

// KindOf returns the kind of the outermost AppError in err's chain, or
// Internal when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether any AppError in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Kind == kind {
			return true
		}
		err = appErr.Err
	}
	return false
}

func UserMessage(err error) string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case InvalidConfig:
		return fmt.Sprintf("Invalid configuration: %v", appErr.Err)
	case NotFound:
		return fmt.Sprintf("Path not found: %s", appErr.Path)
	case ExifFailure:
		return fmt.Sprintf("EXIF read failed: %s", appErr.Path)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s", appErr.Path)
	case Listing:
		return fmt.Sprintf("Could not list files on camera: %v", appErr.Err)
	case Upload:
		return fmt.Sprintf("Upload failed: %v", appErr.Err)
	case Commit:
		return fmt.Sprintf("Could not update history %s: %v", appErr.Path, appErr.Err)
	case Network:
		return fmt.Sprintf("Network error: %v", appErr.Err)
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}
