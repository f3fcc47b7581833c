package tessel

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"honnef.co/go/curve"
)

const sampleScript = `
options:
  normalRandomness: 0.3
  colorRandomness: 0.7
  colorSamples: 8
  sampleRadius: 0.1
  seed: 7
ops:
  - split: {at: [0.5, 0.5], normal: [1, 0]}
  - drag: {from: [0.1, 0.1], to: [0.1, 0.4]}
  - click: {at: [0.8, 0.8]}
  - random: 5
  - paint: {at: [0.2, 0.8]}
`

func TestScript_Load(t *testing.T) {
	assert := assert.New(t)

	s, err := LoadScript(strings.NewReader(sampleScript))
	require.NoError(t, err)
	require.NotNil(t, s.Options)
	assert.Equal(0.3, *s.Options.NormalRandomness)
	assert.Equal(8, *s.Options.ColorSamples)
	assert.Equal(uint64(7), *s.Options.Seed)
	assert.Len(s.Ops, 5)
	assert.Equal(Coord{1, 0}, s.Ops[0].Split.Normal)
	assert.Equal(5, *s.Ops[3].Random)
}

func TestScript_Apply(t *testing.T) {
	assert := assert.New(t)

	s, err := LoadScript(strings.NewReader(sampleScript))
	require.NoError(t, err)

	p := &Processor{Seed: 1}
	require.NoError(t, p.Apply(s))

	assert.Equal(0.3, p.NormalRandomness)
	assert.Equal(0.7, p.ColorRandomness)
	assert.Equal(8, p.ColorSamples)
	assert.Equal(0.1, p.SampleRadius)
	assert.Equal(uint64(7), p.Seed)
	assert.Equal(Stats{Nodes: 17, Regions: 9, Height: p.Stats().Height}, p.Stats())

	pl := rootPlane(t, p)
	assert.Equal(curve.Vec2{X: 1}, pl.Normal)
	assert.Equal(0.5, pl.Distance)

	// The script seed wins over the processor's own seed.
	other := &Processor{Seed: 2}
	require.NoError(t, other.Apply(s))
	assert.Equal(regions(p), regions(other))
}

func TestScript_ResetAndUnsplit(t *testing.T) {
	assert := assert.New(t)

	s, err := LoadScript(strings.NewReader(`
ops:
  - random: 10
  - reset: true
  - split: {at: [0.5, 0.5]}
  - unsplit: {at: [0.1, 0.1]}
  - unsplit: {at: [0.1, 0.1]}
`))
	require.NoError(t, err)

	p := &Processor{Seed: 3}
	require.NoError(t, p.Apply(s))
	assert.Equal(Stats{Nodes: 1, Regions: 1}, p.Stats())
}

func TestScript_Errors(t *testing.T) {
	cases := []struct {
		name   string
		script string
		err    string
	}{
		{
			name:   "unknown key",
			script: "ops:\n  - explode: {at: [0.5, 0.5]}\n",
			err:    "explode",
		},
		{
			name:   "two operations",
			script: "ops:\n  - random: 1\n  - {random: 2, reset: true}\n",
			err:    "op 1: 2 operations given",
		},
		{
			name:   "empty operation",
			script: "ops:\n  - {}\n",
			err:    "op 0: no operation given",
		},
		{
			name:   "outside of the unit square",
			script: "ops:\n  - click: {at: [1.5, 0.5]}\n",
			err:    "op 0: click: at: point (1.5, 0.5) is outside of the unit square",
		},
		{
			name:   "nan point",
			script: "ops:\n  - split: {at: [.nan, 0.5], normal: [1, 0]}\n",
			err:    "op 0: split: at: coordinates (NaN, 0.5) are not finite",
		},
		{
			name:   "nan normal",
			script: "ops:\n  - split: {at: [0.5, 0.5], normal: [1, .nan]}\n",
			err:    "op 0: split: normal: coordinates (1, NaN) are not finite",
		},
		{
			name:   "infinite normal",
			script: "ops:\n  - split: {at: [0.5, 0.5], normal: [.inf, 0]}\n",
			err:    "op 0: split: normal: coordinates (+Inf, 0) are not finite",
		},
		{
			name:   "nan paint",
			script: "ops:\n  - random: 2\n  - paint: {at: [0.5, .nan]}\n",
			err:    "op 1: paint: at: coordinates (0.5, NaN) are not finite",
		},
		{
			name:   "nan randomness",
			script: "options:\n  normalRandomness: .nan\n",
			err:    "options: normalRandomness must be between 0 and 1, got NaN",
		},
		{
			name:   "nan radius",
			script: "options:\n  sampleRadius: .nan\n",
			err:    "options: sampleRadius must be positive, got NaN",
		},
		{
			name:   "bad coordinate",
			script: "ops:\n  - drag: {from: [0.5], to: [0.1, 0.1]}\n",
			err:    "op 0: drag: from: expected 2 coordinates, got 1",
		},
		{
			name:   "negative random",
			script: "ops:\n  - random: -3\n",
			err:    "op 0: random: negative split count -3",
		},
		{
			name:   "bad override",
			script: "options:\n  override: blue\n",
			err:    "options: tessel: invalid colour",
		},
		{
			name:   "too many samples",
			script: "options:\n  colorSamples: 65\n",
			err:    "options: colorSamples must be between 1 and 64, got 65",
		},
		{
			name:   "randomness out of range",
			script: "options:\n  colorRandomness: 1.5\n",
			err:    "options: colorRandomness must be between 0 and 1, got 1.5",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScript(strings.NewReader(tc.script))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestScript_ApplyInvalidLeavesProcessorUnchanged(t *testing.T) {
	assert := assert.New(t)

	samples := 65
	s := &Script{
		Options: &ScriptOptions{ColorSamples: &samples},
		Ops:     []Op{{Split: &SplitOp{At: Coord{0.5, 0.5}}}},
	}
	p := &Processor{Seed: 1}
	assert.Error(p.Apply(s))
	assert.Equal(0, p.ColorSamples)
	assert.Equal(1, p.Stats().Nodes)
}

func TestScript_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScript), 0644))

	s, err := LoadScriptFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Ops, 5)

	_, err = LoadScriptFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScript_Empty(t *testing.T) {
	s, err := LoadScript(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, s.Ops)
}

func TestScript_NaNPointLeavesTreeUntouched(t *testing.T) {
	assert := assert.New(t)

	s := &Script{Ops: []Op{
		{Split: &SplitOp{At: Coord{math.NaN(), 0.5}, Normal: Coord{1, 0}}},
	}}
	p := &Processor{Seed: 1}
	assert.ErrorContains(p.Apply(s), "op 0")
	assert.Equal(1, p.Stats().Nodes)
}
