/*
Package seamcarver is a content aware image resize library, which reduces the width
of an image by repeatedly removing the vertical seam of the lowest energy.

Every seam removal runs the same pipeline:

  - EnergyMap computes the gradient magnitude of every pixel, with neighbours wrapping around the image edges;
  - Carver.ComputeSeams accumulates the minimum cumulative energy of the vertical paths ending at every pixel;
  - Carver.FindLowestEnergySeams backtracks the cheapest path from the bottom row to the top one;
  - Carver.RemoveSeam copies the image without the seam pixels.

The package also provides a command line interface. To check the supported flags type:

	$ seamcarver --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"github.com/esimov/seamcarver"
	)

	func main() {
		p := &seamcarver.Processor{
			NewWidth: 320,
		}

		if err := p.Process(in, out); err != nil {
			fmt.Printf("Error rescaling image: %s", err.Error())
		}
	}
*/
package seamcarver
