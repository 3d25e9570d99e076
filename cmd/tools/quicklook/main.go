// Command quicklook renders a PNG heatmap of one calibrated MVIRI
// dataset from a scene dump.
package main

import (
	"flag"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/meteosat-archive/mviri-fcdr/internal/fcdr"
	"github.com/meteosat-archive/mviri-fcdr/internal/mvarray"
	"github.com/meteosat-archive/mviri-fcdr/internal/scenedump"
)

var (
	scenePath   = flag.String("scene", "", "Path to a scene dump (.json)")
	dataset     = flag.String("dataset", "IR", "Dataset name to render")
	calibration = flag.String("calibration", "radiance", "Calibration level for channel datasets")
	output      = flag.String("o", "quicklook.png", "Output PNG path")
)

// arrayGrid adapts a labeled array to gonum/plot's heatmap grid.
type arrayGrid struct {
	arr *mvarray.Array
}

func (g arrayGrid) Dims() (c, r int)   { return g.arr.Width(), g.arr.Height() }
func (g arrayGrid) Z(c, r int) float64 { return float64(g.arr.At(c, r)) }
func (g arrayGrid) X(c int) float64    { return g.arr.X[c] }
func (g arrayGrid) Y(r int) float64    { return g.arr.Y[r] }

func main() {
	flag.Parse()
	if *scenePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	scene, err := scenedump.Load(*scenePath)
	if err != nil {
		log.Fatalf("failed to load scene: %v", err)
	}
	engine := fcdr.New(scene, fcdr.Options{})

	res := fcdr.ResolutionHigh
	if fcdr.IsChannel(*dataset) {
		res = fcdr.NativeResolution(fcdr.Channel(*dataset))
	}
	ds, err := engine.Dataset(*dataset, res, fcdr.Calibration(*calibration))
	if err != nil {
		log.Fatalf("failed to resolve dataset: %v", err)
	}

	hm := plotter.NewHeatMap(arrayGrid{arr: ds.Array}, palette.Heat(64, 1))
	p := plot.New()
	p.Title.Text = *dataset + " " + ds.Array.Name
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, *output); err != nil {
		log.Fatalf("failed to save quicklook: %v", err)
	}
	log.Printf("Wrote %s", *output)
}
