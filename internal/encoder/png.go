package encoder

import (
	"bytes"
	"image"
	"image/png"
	"io"
)

// PNGEncoder encodes images to PNG using Go's standard library. Quality is
// ignored. The webp encoder also uses it to hand pixels to cwebp losslessly.
type PNGEncoder struct{}

func (e *PNGEncoder) Format() string    { return "png" }
func (e *PNGEncoder) Extension() string { return "png" }
func (e *PNGEncoder) Available() bool   { return true }

func (e *PNGEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(512 * 1024)
	if err := writePNG(&buf, img, png.BestCompression); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePNG(w io.Writer, img image.Image, level png.CompressionLevel) error {
	enc := &png.Encoder{CompressionLevel: level}
	return enc.Encode(w, img)
}
