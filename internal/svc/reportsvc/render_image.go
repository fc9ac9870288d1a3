package reportsvc

import (
	"bytes"
	"fmt"
	"image"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const imageMargin = 12

// RenderImage rasterizes a text report with a fixed-width font, scales it by
// the given factor and encodes it in the given format ("png", "jpeg", "tiff").
func RenderImage(text, format string, scale int, interpolator string) ([]byte, error) {
	encoder, err := getEncoderByFormat(format)
	if err != nil {
		return nil, err
	}

	interpol, err := getInterpolatorByName(interpolator)
	if err != nil {
		return nil, err
	}

	bitmap := drawText(text)

	if scale > 1 {
		bounds := bitmap.Bounds()
		scaled := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*scale, bounds.Dy()*scale))
		interpol.Scale(scaled, scaled.Bounds(), bitmap, bounds, draw.Over, nil)
		bitmap = scaled
	}

	var buf bytes.Buffer
	if err := encoder(&buf, bitmap); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return buf.Bytes(), nil
}

func drawText(text string) *image.RGBA {
	face := basicfont.Face7x13
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	columns := 0
	for _, line := range lines {
		columns = max(columns, utf8.RuneCountInString(line))
	}

	lineHeight := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	bitmap := image.NewRGBA(image.Rect(0, 0,
		2*imageMargin+columns*face.Advance,
		2*imageMargin+len(lines)*lineHeight,
	))
	draw.Draw(bitmap, bitmap.Bounds(), image.White, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  bitmap,
		Src:  image.Black,
		Face: face,
	}

	for i, line := range lines {
		drawer.Dot = fixed.P(imageMargin, imageMargin+i*lineHeight+ascent)
		drawer.DrawString(line)
	}

	return bitmap
}
