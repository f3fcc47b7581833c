package tessel

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image"
	_ "image/jpeg"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/esimov/tessel/bsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"
)

var red = FromSRGB(1, 0, 0)

// halves returns a tessellation with a white left and a red right half.
func halves() *bsp.Tree[Color] {
	tree := bsp.New(White)
	tree.Split(curve.Point{X: 0.5, Y: 0.5}, curve.Vec2{X: 1}, red)
	return tree
}

func TestExport_WriteSVG(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, halves(), 200, 100))
	out := buf.String()

	assert.Contains(out, `width="200" height="100"`)
	assert.Contains(out, `viewBox="0 0 1 1"`)
	assert.Equal(2, strings.Count(out, "<path"))
	assert.Contains(out, `fill="rgb(255, 255, 255)"`)
	assert.Contains(out, `fill="rgb(255, 0, 0)"`)
	assert.Equal(2, strings.Count(out, `stroke="none"`))
	assert.Contains(out, `d="M0.5 0 L0 0 L0 1 L0.5 1 Z"`)

	// The document is well formed.
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err != nil {
			assert.ErrorContains(err, "EOF")
			break
		}
	}
}

func TestExport_WriteSVGError(t *testing.T) {
	err := WriteSVG(failingWriter{}, halves(), 10, 10)
	assert.ErrorIs(t, err, errWrite)
}

func TestExport_Rasterize(t *testing.T) {
	assert := assert.New(t)

	img := Rasterize(halves(), 100, 50, 1)
	assert.Equal(image.Rect(0, 0, 100, 50), img.Bounds())

	left := img.NRGBAAt(10, 25)
	right := img.NRGBAAt(90, 25)
	assert.Equal([4]uint8{255, 255, 255, 255}, [4]uint8{left.R, left.G, left.B, left.A})
	assert.InDelta(255, int(right.R), 1)
	assert.InDelta(0, int(right.G), 1)
	assert.InDelta(0, int(right.B), 1)
	assert.Equal(uint8(255), right.A)
}

func TestExport_RasterizeSupersampled(t *testing.T) {
	assert := assert.New(t)

	img := Rasterize(halves(), 40, 40, 4)
	assert.Equal(image.Rect(0, 0, 40, 40), img.Bounds())

	right := img.NRGBAAt(35, 20)
	assert.InDelta(255, int(right.R), 2)
	assert.InDelta(0, int(right.G), 2)
}

func TestExport_RasterizeIsOpaque(t *testing.T) {
	p := &Processor{Seed: 37}
	p.SplitMany(200)

	img := Rasterize(p.Tree(), 64, 64, 1)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			t.Fatalf("pixel %d is not opaque: alpha %d", i/4, img.Pix[i])
		}
	}
}

func TestExport_Encode(t *testing.T) {
	cases := []struct {
		ext    string
		format string
	}{
		{".png", "png"},
		{".jpg", "jpeg"},
		{".JPEG", "jpeg"},
		{".gif", "gif"},
	}

	for _, tc := range cases {
		t.Run(tc.ext, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, halves(), tc.ext, RenderOptions{Width: 32, Height: 16}))

			img, format, err := image.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, tc.format, format)
			assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())
		})
	}
}

func TestExport_EncodeSVGAndDefaults(t *testing.T) {
	for _, ext := range []string{".svg", "svg", ".SVG"} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, halves(), ext, RenderOptions{}), ext)
		assert.Contains(t, buf.String(), `width="512" height="512"`, ext)
	}
}

func TestExport_EncodeUnsupported(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, halves(), ".txt", RenderOptions{})
	assert.True(t, errors.Is(err, imaging.ErrUnsupportedFormat))
	assert.Zero(t, buf.Len())
}

var errWrite = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}
