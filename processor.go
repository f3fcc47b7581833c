package tessel

import (
	"io"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/esimov/tessel/bsp"
	"github.com/esimov/tessel/utils"
	"honnef.co/go/curve"
)

// Default processor settings.
const (
	DefaultNormalRandomness = 0.5
	DefaultColorRandomness  = 0.5
	DefaultColorSamples     = 3
	DefaultSampleRadius     = 0.05

	// MaxColorSamples is the upper bound of Processor.ColorSamples.
	MaxColorSamples = 64

	// minDrag is the shortest drag that still defines a split direction.
	minDrag = 1e-3
)

// UnitSquare is the region covered by a tessellation.
var UnitSquare = bsp.NewRect(curve.Point{}, curve.Point{X: 1, Y: 1})

var center = curve.Point{X: 0.5, Y: 0.5}

// Processor options
type Processor struct {
	// NormalRandomness blends split directions between pointing away from
	// the centre (0) and fully random (1).
	NormalRandomness float64
	// ColorRandomness blends new colours between the colours sampled around
	// the split point (0) and a random sRGB colour (1).
	ColorRandomness float64
	// ColorSamples is the number of neighbourhood samples averaged by
	// RandomColor. Zero selects DefaultColorSamples.
	ColorSamples int
	// SampleRadius is the radius of the sampled neighbourhood. Zero selects
	// DefaultSampleRadius.
	SampleRadius float64
	// Override, if set, is used for every new region instead of a sampled
	// colour.
	Override *Color
	// Seed seeds the random source; equal seeds give equal tessellations.
	Seed uint64

	// Splits is the number of random splits Generate performs after
	// applying Script.
	Splits int
	Script *Script

	Width, Height int
	Supersample   int

	Spinner *utils.Spinner
	Logger  *slog.Logger

	tree *bsp.Tree[Color]
	rng  *rand.Rand
	// index is the position of the processor within a batch; it offsets
	// every seed, including the one set by a script.
	index uint64
}

// Stats describes the shape of a tessellation.
type Stats struct {
	Nodes   int
	Regions int
	Height  int
}

func (p *Processor) init() {
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	}
	if p.tree == nil {
		p.tree = bsp.New(White)
	}
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Validate checks the processor settings with the same rules scripts
// follow. Zero ColorSamples and SampleRadius select the defaults.
func (p *Processor) Validate() error {
	if err := checkUnitInterval("normalRandomness", p.NormalRandomness); err != nil {
		return err
	}
	if err := checkUnitInterval("colorRandomness", p.ColorRandomness); err != nil {
		return err
	}
	if p.ColorSamples != 0 {
		if err := checkColorSamples(p.ColorSamples); err != nil {
			return err
		}
	}
	if p.SampleRadius != 0 {
		if err := checkSampleRadius(p.SampleRadius); err != nil {
			return err
		}
	}
	return nil
}

// Tree returns the current tessellation.
func (p *Processor) Tree() *bsp.Tree[Color] {
	p.init()
	return p.tree
}

// Reset discards every split and starts over from a single white region. The
// random source keeps its state.
func (p *Processor) Reset() {
	p.init()
	p.tree = bsp.New(White)
}

// Reseed restarts the random source from seed.
func (p *Processor) Reseed(seed uint64) {
	p.Seed = seed
	p.rng = nil
	p.init()
}

// RandomSplit splits the region under a uniformly random point.
func (p *Processor) RandomSplit() {
	p.init()
	at := curve.Point{X: p.rng.Float64(), Y: p.rng.Float64()}
	normal := p.RandomNormal(at)
	p.tree.Split(at, normal, p.RandomColor(at))
}

// SplitMany performs n random splits.
func (p *Processor) SplitMany(n int) {
	for range n {
		p.RandomSplit()
	}
}

// Split splits the region under at along the given direction, colouring the
// new region with RandomColor. The normal does not need to be normalized; a
// zero normal is replaced by RandomNormal.
func (p *Processor) Split(at curve.Point, normal curve.Vec2) {
	p.init()
	n, ok := normalize(normal)
	if !ok {
		n = p.RandomNormal(at)
	}
	p.tree.Split(at, n, p.RandomColor(at))
}

// SplitAt splits the region under at in a random direction pointing into the
// first quadrant.
func (p *Processor) SplitAt(at curve.Point) {
	p.init()
	p.Split(at, curve.Vec2{X: p.rng.Float64(), Y: p.rng.Float64()})
}

// DragSplit splits the region under the midpoint of a drag gesture, along a
// line perpendicular to the drag. Drags too short to define a direction fall
// back to RandomNormal.
func (p *Processor) DragSplit(from, to curve.Point) {
	p.init()
	d := to.Sub(from)
	mid := curve.Point(curve.Vec2(from).Add(d.Mul(0.5)))

	normal, ok := normalize(d)
	if !ok || d.Hypot() < minDrag {
		normal = p.RandomNormal(mid)
	}
	p.tree.Split(mid, normal, p.RandomColor(mid))
}

// Paint recolours the region under at.
func (p *Processor) Paint(at curve.Point) {
	p.init()
	c := p.RandomColor(at)
	*p.tree.GetMut(at) = c
}

// Unsplit undoes the split that created the region under at. It reports
// false if that region can't be merged with its sibling.
func (p *Processor) Unsplit(at curve.Point) bool {
	p.init()
	return p.tree.Unsplit(at)
}

// RandomColor picks the colour of a region created at the given point.
func (p *Processor) RandomColor(at curve.Point) Color {
	p.init()
	if p.Override != nil {
		return *p.Override
	}
	random := FromSRGB(p.rng.Float64(), p.rng.Float64(), p.rng.Float64())

	samples := p.ColorSamples
	if samples <= 0 {
		samples = DefaultColorSamples
	}
	samples = utils.Min(samples, MaxColorSamples)

	radius := p.SampleRadius
	if radius <= 0 {
		radius = DefaultSampleRadius
	}

	var sum Color
	for range samples {
		q := curve.Vec2(at).Add(p.randomInDisk(radius))
		q.X = utils.Clamp(q.X, 0, 1)
		q.Y = utils.Clamp(q.Y, 0, 1)
		sum = sum.Add(p.tree.Get(curve.Point(q)))
	}
	sampled := sum.Scale(1 / float64(samples))

	return sampled.Mix(random, utils.Clamp(p.ColorRandomness, 0, 1))
}

// RandomNormal picks a unit split direction for a split at the given point.
func (p *Processor) RandomNormal(at curve.Point) curve.Vec2 {
	p.init()
	random := p.randomDirection()
	outward := at.Sub(center)
	n, ok := normalize(outward.Lerp(random, utils.Clamp(p.NormalRandomness, 0, 1)))
	if !ok {
		return random
	}
	return n
}

// Stats returns the size of the current tessellation.
func (p *Processor) Stats() Stats {
	p.init()
	return Stats{
		Nodes:   p.tree.Len(),
		Regions: p.tree.Leaves(),
		Height:  p.tree.Height(),
	}
}

// Generate builds a new tessellation: it starts from a single region, runs
// the script and finishes with the configured number of random splits.
func (p *Processor) Generate() error {
	p.Reset()
	if p.Script != nil {
		if err := p.Apply(p.Script); err != nil {
			return err
		}
	}
	p.SplitMany(p.Splits)

	st := p.Stats()
	p.logger().Debug("tessellation generated",
		slog.Uint64("seed", p.Seed),
		slog.Int("nodes", st.Nodes),
		slog.Int("regions", st.Regions),
		slog.Int("height", st.Height),
	)
	return nil
}

// Process generates a tessellation and encodes it to w in the format given
// by the file extension ext.
func (p *Processor) Process(w io.Writer, ext string) error {
	if err := p.Generate(); err != nil {
		return err
	}
	return Encode(w, p.tree, ext, RenderOptions{
		Width:       p.Width,
		Height:      p.Height,
		Supersample: p.Supersample,
	})
}

// clone returns the processor generating image i of a batch: it has the same
// settings, an empty tessellation and its own random source.
func (p *Processor) clone(i uint64) *Processor {
	c := *p
	c.Seed = p.Seed + i
	c.index = p.index + i
	c.tree = nil
	c.rng = nil
	if p.Override != nil {
		o := *p.Override
		c.Override = &o
	}
	return &c
}

func (p *Processor) randomDirection() curve.Vec2 {
	angle := p.rng.Float64() * 2 * math.Pi
	return curve.Vec2{X: math.Sin(angle), Y: math.Cos(angle)}
}

func (p *Processor) randomInDisk(radius float64) curve.Vec2 {
	return p.randomDirection().Mul(p.rng.Float64() * radius)
}

// normalize returns v scaled to unit length. It reports false for vectors
// too short to have a direction.
func normalize(v curve.Vec2) (curve.Vec2, bool) {
	l := v.Hypot()
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return curve.Vec2{}, false
	}
	return v.Mul(1 / l), true
}
