package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"dcimsync/internal/domain"

	"github.com/stretchr/testify/assert"
)

func encoded(v int64) *int64 {
	return &v
}

func TestResolveFromEncodedTime(t *testing.T) {
	exif := &mockExif{taken: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := DateResolver{Exif: exif, Offset: 234637072, Clock: &fakeClock{}}

	date := r.Resolve(context.Background(), domain.RemoteFile{Name: "IMG_2.JPG", EncodedTime: encoded(1000)}, "/tmp/IMG_2.JPG")

	assert.Equal(t, "19770608", date)
	assert.Zero(t, exif.calls, "exif is not consulted when the card encodes a time")
}

func TestResolveFromExif(t *testing.T) {
	exif := &mockExif{taken: time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)}
	r := DateResolver{Exif: exif, Clock: &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}

	assert.Equal(t, "20240309", r.Resolve(context.Background(), domain.RemoteFile{Name: "A.JPG"}, "/tmp/A.JPG"))
}

func TestResolveFallsBackToToday(t *testing.T) {
	today := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	for name, exif := range map[string]*mockExif{
		"zero timestamp": {err: errors.New("zero timestamp")},
		"no exif":        {err: errors.New("no exif data")},
		"zero value":     {},
	} {
		t.Run(name, func(t *testing.T) {
			r := DateResolver{Exif: exif, Clock: &fakeClock{now: today}}
			assert.Equal(t, "20250630", r.Resolve(context.Background(), domain.RemoteFile{Name: "A.RAF"}, "/tmp/A.RAF"))
		})
	}
}
