package app

import (
	"context"
	"time"

	"dcimsync/internal/domain"
	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/logging"
)

// DateLayout is the YYYYMMDD form used in staging group names.
const DateLayout = "20060102"

// DateResolver picks the date a file is grouped under: the card's encoded
// time, then the EXIF capture time, then today.
type DateResolver struct {
	Exif ExifReader
	// Offset is added to RemoteFile.EncodedTime to obtain a Unix epoch.
	Offset int64
	Clock  Clock
	Logger logging.Logger
}

func (r DateResolver) Resolve(ctx context.Context, file domain.RemoteFile, stagedPath string) string {
	if file.EncodedTime != nil {
		date := time.Unix(*file.EncodedTime+r.Offset, 0).UTC().Format(DateLayout)
		r.Logger.Verbosef("Date of %s from encoded time %d: %s", file.Name, *file.EncodedTime, date)
		return date
	}

	if r.Exif != nil {
		taken, err := r.Exif.CaptureTime(ctx, stagedPath)
		if err == nil && !taken.IsZero() {
			date := taken.Format(DateLayout)
			r.Logger.Infof("Fetched the date from exif: %s", date)
			return date
		}
		if err != nil {
			err = appErrors.Wrap(appErrors.DateResolution, "exif", stagedPath, err)
			r.Logger.Infof("No usable date in exif, using today: %v", err)
		}
	}

	return r.now().Format(DateLayout)
}

func (r DateResolver) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock.Now()
}
