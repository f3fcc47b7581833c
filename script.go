package tessel

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"
	"honnef.co/go/curve"
)

// Script is a recorded sequence of tessellation operations, usually loaded
// from a YAML file:
//
//	options:
//	  colorRandomness: 0.2
//	  seed: 7
//	ops:
//	  - split: {at: [0.5, 0.5], normal: [1, 0]}
//	  - drag: {from: [0.1, 0.1], to: [0.4, 0.3]}
//	  - random: 50
//	  - paint: {at: [0.2, 0.8]}
type Script struct {
	Options *ScriptOptions `yaml:"options,omitempty"`
	Ops     []Op           `yaml:"ops"`
}

// ScriptOptions overrides processor settings. Unset fields keep the
// processor's values.
type ScriptOptions struct {
	NormalRandomness *float64 `yaml:"normalRandomness,omitempty"`
	ColorRandomness  *float64 `yaml:"colorRandomness,omitempty"`
	ColorSamples     *int     `yaml:"colorSamples,omitempty"`
	SampleRadius     *float64 `yaml:"sampleRadius,omitempty"`
	Override         string   `yaml:"override,omitempty"`
	Seed             *uint64  `yaml:"seed,omitempty"`
}

// Coord is a point or vector written as a two element list.
type Coord []float64

// Op is a single script operation. Exactly one field must be set.
type Op struct {
	Random  *int     `yaml:"random,omitempty"`
	Split   *SplitOp `yaml:"split,omitempty"`
	Click   *PointOp `yaml:"click,omitempty"`
	Drag    *DragOp  `yaml:"drag,omitempty"`
	Paint   *PointOp `yaml:"paint,omitempty"`
	Unsplit *PointOp `yaml:"unsplit,omitempty"`
	Reset   bool     `yaml:"reset,omitempty"`
}

// SplitOp splits at a point along an explicit normal. Without a normal the
// direction is chosen by Processor.RandomNormal.
type SplitOp struct {
	At     Coord `yaml:"at"`
	Normal Coord `yaml:"normal,omitempty"`
}

type PointOp struct {
	At Coord `yaml:"at"`
}

type DragOp struct {
	From Coord `yaml:"from"`
	To   Coord `yaml:"to"`
}

var errNoOp = errors.New("no operation given")

// LoadScript decodes a YAML script. Unknown keys are rejected.
func LoadScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("unable to decode the script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScriptFile reads a YAML script from a file.
func LoadScriptFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open the script file: %w", err)
	}
	defer f.Close()
	return LoadScript(f)
}

// Validate checks every operation of the script without running it.
func (s *Script) Validate() error {
	if o := s.Options; o != nil {
		if _, err := o.override(); err != nil {
			return fmt.Errorf("options: %w", err)
		}
		if o.ColorSamples != nil {
			if err := checkColorSamples(*o.ColorSamples); err != nil {
				return fmt.Errorf("options: %w", err)
			}
		}
		if o.SampleRadius != nil {
			if err := checkSampleRadius(*o.SampleRadius); err != nil {
				return fmt.Errorf("options: %w", err)
			}
		}
		if o.NormalRandomness != nil {
			if err := checkUnitInterval("normalRandomness", *o.NormalRandomness); err != nil {
				return fmt.Errorf("options: %w", err)
			}
		}
		if o.ColorRandomness != nil {
			if err := checkUnitInterval("colorRandomness", *o.ColorRandomness); err != nil {
				return fmt.Errorf("options: %w", err)
			}
		}
	}
	for i, op := range s.Ops {
		if err := op.validate(); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

func (o *ScriptOptions) override() (*Color, error) {
	if o.Override == "" {
		return nil, nil
	}
	c, err := ParseHex(o.Override)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (op Op) validate() error {
	n := 0
	if op.Random != nil {
		n++
		if *op.Random < 0 {
			return fmt.Errorf("random: negative split count %d", *op.Random)
		}
	}
	if op.Split != nil {
		n++
		if _, err := op.Split.At.point(); err != nil {
			return fmt.Errorf("split: at: %w", err)
		}
		if op.Split.Normal != nil {
			if _, err := op.Split.Normal.vec(); err != nil {
				return fmt.Errorf("split: normal: %w", err)
			}
		}
	}
	for name, pop := range map[string]*PointOp{"click": op.Click, "paint": op.Paint, "unsplit": op.Unsplit} {
		if pop == nil {
			continue
		}
		n++
		if _, err := pop.At.point(); err != nil {
			return fmt.Errorf("%s: at: %w", name, err)
		}
	}
	if op.Drag != nil {
		n++
		if _, err := op.Drag.From.point(); err != nil {
			return fmt.Errorf("drag: from: %w", err)
		}
		if _, err := op.Drag.To.point(); err != nil {
			return fmt.Errorf("drag: to: %w", err)
		}
	}
	if op.Reset {
		n++
	}

	switch n {
	case 0:
		return errNoOp
	case 1:
		return nil
	default:
		return fmt.Errorf("%d operations given, expected one", n)
	}
}

func (c Coord) vec() (curve.Vec2, error) {
	if len(c) != 2 {
		return curve.Vec2{}, fmt.Errorf("expected 2 coordinates, got %d", len(c))
	}
	if !isFinite(c[0]) || !isFinite(c[1]) {
		return curve.Vec2{}, fmt.Errorf("coordinates (%g, %g) are not finite", c[0], c[1])
	}
	return curve.Vec2{X: c[0], Y: c[1]}, nil
}

// point converts c to a point, which must lie within the unit square.
func (c Coord) point() (curve.Point, error) {
	v, err := c.vec()
	if err != nil {
		return curve.Point{}, err
	}
	if !(v.X >= 0 && v.X <= 1 && v.Y >= 0 && v.Y <= 1) {
		return curve.Point{}, fmt.Errorf("point (%g, %g) is outside of the unit square", v.X, v.Y)
	}
	return curve.Point(v), nil
}

// Apply applies the script options to p and runs the operations in order.
// The script is validated first, so an invalid script leaves p unchanged.
func (p *Processor) Apply(s *Script) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.init()

	if o := s.Options; o != nil {
		if o.NormalRandomness != nil {
			p.NormalRandomness = *o.NormalRandomness
		}
		if o.ColorRandomness != nil {
			p.ColorRandomness = *o.ColorRandomness
		}
		if o.ColorSamples != nil {
			p.ColorSamples = *o.ColorSamples
		}
		if o.SampleRadius != nil {
			p.SampleRadius = *o.SampleRadius
		}
		if c, _ := o.override(); c != nil {
			p.Override = c
		}
		if o.Seed != nil {
			p.Reseed(*o.Seed + p.index)
		}
	}

	for i, op := range s.Ops {
		p.apply(i, op)
	}
	return nil
}

// apply runs a validated operation.
func (p *Processor) apply(i int, op Op) {
	switch {
	case op.Random != nil:
		p.SplitMany(*op.Random)
	case op.Split != nil:
		at, _ := op.Split.At.point()
		var normal curve.Vec2
		if op.Split.Normal != nil {
			normal, _ = op.Split.Normal.vec()
		}
		p.Split(at, normal)
	case op.Click != nil:
		at, _ := op.Click.At.point()
		p.SplitAt(at)
	case op.Drag != nil:
		from, _ := op.Drag.From.point()
		to, _ := op.Drag.To.point()
		p.DragSplit(from, to)
	case op.Paint != nil:
		at, _ := op.Paint.At.point()
		p.Paint(at)
	case op.Unsplit != nil:
		at, _ := op.Unsplit.At.point()
		if !p.Unsplit(at) {
			p.logger().Debug("unsplit skipped", slog.Int("op", i), slog.Any("at", at))
		}
	case op.Reset:
		p.Reset()
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// checkUnitInterval reports an error unless v lies in [0, 1].
func checkUnitInterval(name string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%s must be between 0 and 1, got %g", name, v)
	}
	return nil
}

func checkColorSamples(n int) error {
	if n < 1 || n > MaxColorSamples {
		return fmt.Errorf("colorSamples must be between 1 and %d, got %d", MaxColorSamples, n)
	}
	return nil
}

func checkSampleRadius(r float64) error {
	if !(r > 0) || math.IsInf(r, 0) {
		return fmt.Errorf("sampleRadius must be positive, got %g", r)
	}
	return nil
}
