package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/esimov/tessel"
	"github.com/esimov/tessel/bsp"
	"github.com/esimov/tessel/utils"
)

const helpBanner = `
┌┬┐┌─┐┌─┐┌─┐┌─┐┬
 │ ├┤ └─┐└─┐├┤ │
 ┴ └─┘└─┘└─┘└─┘┴─┘

Random tessellations of the unit square.
    Version: %s

`

// pipeName is the file name that indicates stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	destination      = flag.String("out", pipeName, "Destination file, directory (with -n) or - for stdout")
	format           = flag.String("format", tessel.DefaultFormat, "Output format used for stdout and directories")
	count            = flag.Int("n", 1, "Number of images to generate")
	splits           = flag.Int("splits", 500, "Number of random splits")
	normalRandomness = flag.Float64("nr", tessel.DefaultNormalRandomness, "Split direction randomness (0..1)")
	colorRandomness  = flag.Float64("cr", tessel.DefaultColorRandomness, "Colour randomness (0..1)")
	colorSamples     = flag.Int("samples", tessel.DefaultColorSamples, "Number of sampled neighbour colours (1..64)")
	sampleRadius     = flag.Float64("radius", tessel.DefaultSampleRadius, "Radius of the sampled neighbourhood")
	override         = flag.String("color", "", "Use this colour (#rrggbb) for every region")
	seed             = flag.Uint64("seed", 0, "Random seed (0 picks one from the clock)")
	script           = flag.String("script", "", "YAML operation script applied before the random splits")
	width            = flag.Int("width", tessel.DefaultSize, "Image width")
	height           = flag.Int("height", tessel.DefaultSize, "Image height")
	supersample      = flag.Int("ss", tessel.DefaultSupersample, "Supersampling factor for raster output")
	workers          = flag.Int("conc", runtime.NumCPU(), "Number of images to generate concurrently")
	verbose          = flag.Bool("v", false, "Verbose logging")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	bsp.SetLogger(logger.With(slog.String("component", "bsp")))

	if *count < 1 || *splits < 0 {
		flag.Usage()
		fatalf("the number of images and splits can't be negative")
	}

	proc := &tessel.Processor{
		NormalRandomness: *normalRandomness,
		ColorRandomness:  *colorRandomness,
		ColorSamples:     *colorSamples,
		SampleRadius:     *sampleRadius,
		Seed:             *seed,
		Splits:           *splits,
		Width:            *width,
		Height:           *height,
		Supersample:      *supersample,
		Logger:           logger,
	}
	if err := proc.Validate(); err != nil {
		flag.Usage()
		fatalf("invalid options: %v", err)
	}
	if proc.Seed == 0 {
		proc.Seed = uint64(time.Now().UnixNano())
	}
	if *override != "" {
		c, err := tessel.ParseHex(*override)
		if err != nil {
			fatalf("%v", err)
		}
		proc.Override = &c
	}
	if *script != "" {
		s, err := tessel.LoadScriptFile(*script)
		if err != nil {
			fatalf("%v", err)
		}
		proc.Script = s
	}
	logger.Debug("starting", slog.Uint64("seed", proc.Seed), slog.Int("splits", proc.Splits))

	op := &tessel.Ops{
		Dst:      *destination,
		PipeName: pipeName,
		Format:   *format,
		Count:    *count,
		Workers:  *workers,
	}
	if err := op.Execute(proc); err != nil {
		fatalf("%v", err)
	}
	if n := bsp.NonCrossings(); n > 0 {
		logger.Warn("inconsistent plane crossings while clipping", slog.Uint64("count", n))
	}
}

func fatalf(format string, args ...any) {
	log.Fatalf("%s%s",
		utils.DecorateText("\n"+fmt.Sprintf(format, args...), utils.ErrorMessage),
		utils.DefaultColor,
	)
}
