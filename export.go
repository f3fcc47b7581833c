package tessel

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/disintegration/imaging"
	"github.com/esimov/tessel/bsp"
	"golang.org/x/image/vector"
)

// Default output dimensions.
const (
	DefaultSize        = 512
	DefaultSupersample = 2
	maxSupersample     = 8
)

// SupportedExtensions lists the output file extensions understood by Encode.
var SupportedExtensions = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".bmp"}

// RenderOptions sets the size of the rendered image. Zero values select the
// defaults.
type RenderOptions struct {
	Width, Height int
	// Supersample renders at a multiple of the output size and downscales
	// the result, which smooths the edges shared by adjacent regions. It is
	// ignored for SVG output.
	Supersample int
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width <= 0 {
		o.Width = DefaultSize
	}
	if o.Height <= 0 {
		o.Height = DefaultSize
	}
	if o.Supersample <= 0 {
		o.Supersample = DefaultSupersample
	}
	o.Supersample = min(o.Supersample, maxSupersample)
	return o
}

// Encode renders the tessellation to w. The format is selected by the file
// extension ext, with or without its leading dot: ".svg" writes vector
// output, every other extension known to imaging writes a raster image.
func Encode(w io.Writer, tree *bsp.Tree[Color], ext string, opts RenderOptions) error {
	opts = opts.withDefaults()
	if strings.EqualFold(strings.TrimPrefix(ext, "."), "svg") {
		return WriteSVG(w, tree, opts.Width, opts.Height)
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return fmt.Errorf("%q: %w", ext, err)
	}
	img := Rasterize(tree, opts.Width, opts.Height, opts.Supersample)
	return imaging.Encode(w, img, format, imaging.JPEGQuality(100))
}

// WriteSVG writes the tessellation as an SVG document of the given pixel
// size. The drawing covers the unit square viewBox with one path per region.
func WriteSVG(w io.Writer, tree *bsp.Tree[Color], width, height int) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Startview(width, height, 0, 0, 1, 1)

	var d strings.Builder
	for c, poly := range tree.LeafPolygons(UnitSquare) {
		if len(poly) == 0 {
			continue
		}
		d.Reset()
		for i, v := range poly {
			if i == 0 {
				d.WriteString("M")
			} else {
				d.WriteString(" L")
			}
			d.WriteString(formatCoord(v.X))
			d.WriteByte(' ')
			d.WriteString(formatCoord(v.Y))
		}
		d.WriteString(" Z")

		r, g, b := c.SRGB()
		canvas.Path(d.String(),
			fmt.Sprintf(`fill="rgb(%d, %d, %d)"`, r, g, b),
			`stroke="none"`,
		)
		if ew.err != nil {
			return ew.err
		}
	}
	canvas.End()
	return ew.err
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}

// Rasterize draws the tessellation into a new opaque image of the given
// size. With a supersample factor above one the tessellation is drawn at a
// higher resolution and downscaled with a Lanczos filter.
func Rasterize(tree *bsp.Tree[Color], width, height, supersample int) *image.NRGBA {
	supersample = max(supersample, 1)
	sw, sh := width*supersample, height*supersample

	dst := image.NewRGBA(image.Rect(0, 0, sw, sh))
	// Pixels along shared edges are only partially covered by each region.
	draw.Draw(dst, dst.Bounds(), image.NewUniform(White), image.Point{}, draw.Src)
	var z vector.Rasterizer
	for c, poly := range tree.LeafPolygons(UnitSquare) {
		fillPolygon(&z, dst, poly, c)
	}

	if supersample == 1 {
		return imaging.Clone(dst)
	}
	return imaging.Resize(dst, width, height, imaging.Lanczos)
}

// fillPolygon fills poly, given in unit square coordinates, onto dst. Only
// the pixels within the polygon's bounding box are rasterized.
func fillPolygon(z *vector.Rasterizer, dst *image.RGBA, poly bsp.Polygon, c Color) {
	if len(poly) < 3 {
		return
	}
	size := dst.Bounds().Size()
	sx, sy := float64(size.X), float64(size.Y)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range poly {
		minX, maxX = min(minX, v.X*sx), max(maxX, v.X*sx)
		minY, maxY = min(minY, v.Y*sy), max(maxY, v.Y*sy)
	}
	r := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	z.Reset(r.Dx(), r.Dy())
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	for i, v := range poly {
		x, y := float32(v.X*sx-ox), float32(v.Y*sy-oy)
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	z.Draw(dst, r, image.NewUniform(c), image.Point{})
}

// errWriter keeps the first write error, since the SVG writer discards them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

// isValidExtension checks for the supported output extensions.
func isValidExtension(ext string) bool {
	for _, ex := range SupportedExtensions {
		if strings.EqualFold(ex, ext) {
			return true
		}
	}
	return false
}

var errUnsupportedFormat = errors.New("unsupported output format")
