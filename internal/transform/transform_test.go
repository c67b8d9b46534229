package transform

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/AnyUserName/imgsync/internal/encoder"
	"github.com/AnyUserName/imgsync/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// striped is red on the left third, green in the middle, blue on the right.
func striped(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{A: 255}
			switch {
			case x < w/3:
				c.R = 255
			case x < 2*w/3:
				c.G = 255
			default:
				c.B = 255
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTranscodeExactSize(t *testing.T) {
	tc := New(&encoder.JPEGEncoder{}, 85)
	src := pngBytes(t, striped(300, 100))

	for _, size := range []profile.Size{{Width: 80, Height: 80}, {Width: 192, Height: 108}, {Width: 600, Height: 600}} {
		out, err := tc.Transcode(src, size)
		require.NoError(t, err)
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, size.Width, cfg.Width)
		assert.Equal(t, size.Height, cfg.Height)
	}
}

func TestFillCropsAroundCenter(t *testing.T) {
	// A 300x100 image filled into a square keeps only the middle third.
	out := Fill(striped(300, 100), profile.Size{Width: 50, Height: 50})
	assert.Equal(t, image.Rect(0, 0, 50, 50), out.Bounds())

	for _, x := range []int{5, 25, 44} {
		c := out.NRGBAAt(x, 25)
		assert.Greater(t, int(c.G), 200, "x=%d", x)
		assert.Less(t, int(c.R), 60, "x=%d", x)
		assert.Less(t, int(c.B), 60, "x=%d", x)
	}
}

func TestTranscodeDeterministic(t *testing.T) {
	tc := New(&encoder.JPEGEncoder{}, 85)
	src := pngBytes(t, striped(120, 90))
	a, err := tc.Transcode(src, profile.Size{Width: 64, Height: 64})
	require.NoError(t, err)
	b, err := tc.Transcode(src, profile.Size{Width: 64, Height: 64})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTranscodeErrors(t *testing.T) {
	tc := New(&encoder.JPEGEncoder{}, 85)

	_, err := tc.Transcode([]byte("<html>not an image</html>"), profile.Size{Width: 10, Height: 10})
	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "decode", terr.Op)

	_, err = tc.Transcode(pngBytes(t, striped(9, 9)), profile.Size{Width: 0, Height: 10})
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "resize", terr.Op)

	failing := New(failingEncoder{}, 85)
	_, err = failing.Transcode(pngBytes(t, striped(9, 9)), profile.Size{Width: 3, Height: 3})
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "encode", terr.Op)
}

func TestQualityFallback(t *testing.T) {
	assert.Equal(t, encoder.DefaultQuality, New(&encoder.JPEGEncoder{}, 0).Quality())
	assert.Equal(t, encoder.DefaultQuality, New(&encoder.JPEGEncoder{}, 101).Quality())
	assert.Equal(t, 60, New(&encoder.JPEGEncoder{}, 60).Quality())
}

type failingEncoder struct{}

func (failingEncoder) Format() string                          { return "fail" }
func (failingEncoder) Extension() string                       { return "fail" }
func (failingEncoder) Available() bool                         { return true }
func (failingEncoder) Encode(image.Image, int) ([]byte, error) { return nil, errors.New("boom") }
