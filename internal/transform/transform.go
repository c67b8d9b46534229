// Package transform turns downloaded image bytes into a fixed-size,
// re-encoded image.
package transform

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/AnyUserName/imgsync/internal/encoder"
	"github.com/AnyUserName/imgsync/internal/profile"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Error reports input that could not be decoded, an invalid target, or an
// encoder failure.
type Error struct {
	Op  string // "decode", "resize" or "encode"
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("transcode: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Transcoder resizes with a centered cover fit and re-encodes at a fixed
// quality.
type Transcoder struct {
	enc     encoder.Encoder
	quality int
}

// New returns a Transcoder. A quality outside 1-100 falls back to
// encoder.DefaultQuality.
func New(enc encoder.Encoder, quality int) *Transcoder {
	if quality <= 0 || quality > 100 {
		quality = encoder.DefaultQuality
	}
	return &Transcoder{enc: enc, quality: quality}
}

func (t *Transcoder) Quality() int      { return t.quality }
func (t *Transcoder) Extension() string { return t.enc.Extension() }

// Transcode decodes data, fills size exactly (scaling to cover the box and
// cropping the overflow around the center) and encodes the result.
func (t *Transcoder) Transcode(data []byte, size profile.Size) ([]byte, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, &Error{Op: "resize", Err: fmt.Errorf("invalid target size %s", size)}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &Error{Op: "decode", Err: err}
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, &Error{Op: "decode", Err: fmt.Errorf("empty image")}
	}

	out := Fill(img, size)

	encoded, err := t.enc.Encode(out, t.quality)
	if err != nil {
		return nil, &Error{Op: "encode", Err: err}
	}
	return encoded, nil
}

// Fill is the cover fit used by Transcode.
func Fill(img image.Image, size profile.Size) *image.NRGBA {
	return imaging.Fill(img, size.Width, size.Height, imaging.Center, imaging.Lanczos)
}
