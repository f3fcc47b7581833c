/*
Package tessel generates colourful tessellations of the unit square by splitting
it over and over again along random lines, then renders them as SVG or raster
images.

The package provides a command line interface, supporting various flags for
controlling the randomness of the splits and colours. To check the supported
commands type:

	$ tessel --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"log"
		"os"

		"github.com/esimov/tessel"
	)

	func main() {
		p := &tessel.Processor{
			NormalRandomness: 0.5,
			ColorRandomness:  0.5,
			Splits:           500,
			Seed:             42,
		}

		f, err := os.Create("output.png")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		if err := p.Process(f, ".png"); err != nil {
			log.Fatalf("Error generating image: %v", err)
		}
	}

The tessellation itself is a bsp.Tree[Color], which can be split, painted
and inspected directly through Processor.Tree.
*/
package tessel
