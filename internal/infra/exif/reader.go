package exif

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	appErrors "dcimsync/internal/errors"

	goexif "github.com/rwcarlsen/goexif/exif"
)

const (
	layout = "2006:01:02 15:04:05"

	// zeroTimestamp is written by some card firmware when the camera clock
	// was never set.
	zeroTimestamp = "0000:00:00 00:00:00"
)

var (
	ErrNoTimestamp   = errors.New("exif datetime not found")
	ErrZeroTimestamp = errors.New("exif datetime is the all-zero sentinel")
)

type Reader struct{}

// CaptureTime returns the capture timestamp stored in the file at path. The
// wall clock values are returned as encoded, in UTC, with no zone applied.
func (Reader) CaptureTime(ctx context.Context, path string) (time.Time, error) {
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	default:
	}

	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return time.Time{}, appErrors.Wrap(appErrors.NotFound, "open", path, err)
	}
	if err != nil {
		return time.Time{}, appErrors.Wrap(appErrors.IOFailure, "open", path, err)
	}
	defer file.Close()

	x, err := goexif.Decode(file)
	if err != nil {
		return time.Time{}, appErrors.Wrap(appErrors.ExifFailure, "decode", path, err)
	}

	// A zeroed DateTimeOriginal means the clock was never set. DateTime is
	// only a modification time, so it is not consulted in that case.
	if str, ok := dateTag(x, goexif.DateTimeOriginal); ok {
		if str == zeroTimestamp {
			return time.Time{}, ErrZeroTimestamp
		}
		if parsed, err := time.Parse(layout, str); err == nil {
			return parsed, nil
		}
	}
	if str, ok := dateTag(x, goexif.DateTime); ok {
		if str == zeroTimestamp {
			return time.Time{}, ErrZeroTimestamp
		}
		if parsed, err := time.Parse(layout, str); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, ErrNoTimestamp
}

func dateTag(x *goexif.Exif, field goexif.FieldName) (string, bool) {
	tag, err := x.Get(field)
	if err != nil {
		return "", false
	}
	str, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	return strings.TrimRight(strings.TrimSpace(str), "\x00"), true
}
