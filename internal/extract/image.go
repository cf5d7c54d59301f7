package extract

import (
	"context"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
	"github.com/hippo-mem/hippo/internal/memory"
)

// exifTimeLayout matches the EXIF DateTimeOriginal format, "2006:01:02 15:04:05".
const exifTimeLayout = "2006:01:02 15:04:05"

// ImageExtractor reads EXIF tags (camera, lens, exposure, GPS) from image
// files via github.com/rwcarlsen/goexif.
type ImageExtractor struct{}

// NewImageExtractor builds an ImageExtractor.
func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{}
}

// Extract reads EXIF data from path. Files with no EXIF segment (PNG,
// GIF, most screenshots) are not an error: an empty Metadata is returned.
func (e *ImageExtractor) Extract(_ context.Context, path string, _ memory.Kind) (memory.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return memory.Metadata{}, hippoerrors.ExtractorError("failed to open image for EXIF extraction", err).WithDetail("path", path)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// No EXIF segment is the common case, not a failure worth surfacing.
		return memory.Metadata{}, nil
	}

	info := &memory.ExifInfo{}
	if tag, err := x.Get(exif.Make); err == nil {
		if v, err := tag.StringVal(); err == nil {
			info.CameraMake = v
		}
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if v, err := tag.StringVal(); err == nil {
			info.CameraModel = v
		}
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if v, err := tag.Int(0); err == nil {
			info.ISO = v
		}
	}
	if tag, err := x.Get(exif.FocalLength); err == nil {
		if r, err := tag.Rat(0); err == nil && r.Denom().Sign() != 0 {
			f, _ := r.Float64()
			info.FocalLength = f
		}
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil {
			info.Orientation = v
		}
	}
	if tag, err := x.Get(exif.DateTimeOriginal); err == nil {
		if v, err := tag.StringVal(); err == nil {
			if t, err := time.Parse(exifTimeLayout, v); err == nil {
				info.TakenAt = &t
			}
		}
	}

	meta := memory.Metadata{Exif: info}

	if loc := gpsLocation(x); loc != nil {
		meta.Location = loc
	}

	return meta, nil
}

// gpsLocation extracts a Location from GPS EXIF tags: South/West
// references negate latitude/longitude, and a GPSAltitudeRef of 1
// negates altitude (below sea level).
func gpsLocation(x *exif.Exif) *memory.Location {
	lat, lon, err := x.LatLong()
	if err != nil {
		// goexif's LatLong already applies the N/S and E/W sign convention.
		return nil
	}

	loc := &memory.Location{Lat: lat, Lon: lon}

	if tag, err := x.Get(exif.GPSAltitude); err == nil {
		if r, err := tag.Rat(0); err == nil && r.Denom().Sign() != 0 {
			alt, _ := r.Float64()
			if refTag, err := x.Get(exif.GPSAltitudeRef); err == nil {
				if ref, err := refTag.Int(0); err == nil && ref == 1 {
					alt = -alt
				}
			}
			loc.Alt = &alt
		}
	}

	return loc
}
