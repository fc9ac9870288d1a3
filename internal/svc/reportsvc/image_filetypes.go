package reportsvc

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

var (
	// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
	ErrUnknownInterpolator = errors.New("unknown interpolator")

	// ErrUnsupportedImageFormat is returned when a report image format has no encoder.
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
)

//nolint:gochecknoglobals
var (
	imageEncoders = map[string]func(io.Writer, image.Image) error{
		"png":  png.Encode,
		"jpeg": func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, &jpeg.Options{Quality: 95}) },
		"tiff": func(w io.Writer, i image.Image) error { return tiff.Encode(w, i, nil) },
	}

	// interpolMap maps interpolator names to their implementations.
	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}
)

// imageExt returns the file extension for a report image format.
func imageExt(format string) string {
	if strings.EqualFold(format, "jpeg") {
		return ".jpg"
	}

	return "." + strings.ToLower(format)
}

func getEncoderByFormat(format string) (func(io.Writer, image.Image) error, error) {
	encoder, ok := imageEncoders[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedImageFormat, format)
	}

	return encoder, nil
}

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}

	return interpol, nil
}
