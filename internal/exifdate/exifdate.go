package exifdate

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
)

// Infer reads the embedded capture time from an image and returns it as an
// ISO calendar date. ok is false when the file carries no usable EXIF data;
// callers fall back to the current date or manual entry.
func Infer(data []byte) (date string, ok bool) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	tm, err := x.DateTime()
	if err != nil {
		return "", false
	}
	return tm.Format("2006-01-02"), true
}
