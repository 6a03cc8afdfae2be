// Package exif reads the capture timestamp embedded in uploaded photos.
package exif

import (
	"bytes"
	"log/slog"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"
)

// DateTaken returns the DateTimeOriginal (or DateTime) tag of an image. Files without EXIF
// data, such as PDFs, report false. Malformed metadata never fails the caller.
func DateTaken(data []byte) (taken time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("exif decoder panicked", "panic", r)

			taken, ok = time.Time{}, false
		}
	}()

	x, err := goexif.Decode(bytes.NewReader(data))
	if err != nil {
		return time.Time{}, false
	}

	t, err := x.DateTime()
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}

	return t, true
}
