// Package imaging turns uploaded screenshots into a canonical RGB PNG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxPixels bounds width*height of an accepted image. It leaves room for
// multi-monitor 8K captures while keeping the decoded buffers under a few
// hundred MiB.
const MaxPixels = 50_000_000

// ErrTooLarge is wrapped by a DecodeError for images above MaxPixels.
var ErrTooLarge = errors.New("image dimensions exceed limit")

// DecodeError reports bytes that are not a decodable raster image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Normalize decodes raw in any registered format and re-encodes its first
// frame as an opaque 8-bit RGB PNG. Alpha is discarded, not composited.
func Normalize(raw []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, &DecodeError{Err: fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrTooLarge)}
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	rgb := toRGB(src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgb); err != nil {
		return nil, fmt.Errorf("encode %s as png: %w", format, err)
	}
	return buf.Bytes(), nil
}

// toRGB copies src into an RGBA image whose alpha channel is fully opaque,
// which makes the png encoder emit a three-channel truecolor image.
func toRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			si := n.PixOffset(b.Min.X, b.Min.Y+y)
			di := dst.PixOffset(0, y)
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[di] = n.Pix[si]
				dst.Pix[di+1] = n.Pix[si+1]
				dst.Pix[di+2] = n.Pix[si+2]
				dst.Pix[di+3] = 0xff
				si += 4
				di += 4
			}
		}
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}
