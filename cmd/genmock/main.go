// Command genmock writes a synthetic Gironde dataset in the formats of the
// open-data exports, for local runs of fusion and fusionctl.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -rows 8 -cols 8 -seed 7
//	fusionctl --data-dir data/mock summary
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/couchcryptid/gironde-risk-etl/internal/mockdata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	opts := mockdata.DefaultOptions()

	out := flag.String("out", "data/mock", "output directory")
	rows := flag.Int("rows", opts.Rows, "grid rows")
	cols := flag.Int("cols", opts.Cols, "grid columns")
	cell := flag.Float64("cell", opts.Cell, "cell side in degrees")
	seed := flag.Uint64("seed", opts.Seed, "random seed")
	year := flag.Int("year", opts.FireWindow.CurrentYear, "current wildfire year")
	window := flag.Int("window", opts.FireWindow.Years, "wildfire window in years")
	readings := flag.Int("readings", opts.Readings, "hourly readings per gauge")
	end := flag.String("readings-end", opts.ReadingsEnd.Format(time.DateTime), "timestamp of the last reading")
	flag.Parse()

	last, err := time.Parse(time.DateTime, *end)
	if err != nil {
		return fmt.Errorf("invalid -readings-end: %w", err)
	}

	opts.Rows, opts.Cols, opts.Cell, opts.Seed = *rows, *cols, *cell, *seed
	opts.FireWindow.CurrentYear, opts.FireWindow.Years = *year, *window
	opts.Readings, opts.ReadingsEnd = *readings, last

	m, err := mockdata.Generate(*out, opts)
	if err != nil {
		return err
	}

	log.Printf("wrote %d municipalities to %s", m.Municipalities, m.Dir)
	log.Printf("expected: %d fires in window (%d in %d), %d cavities, %d movements, clay %d high / %d medium",
		m.FiresInWindow, m.FiresCurrent, opts.FireWindow.CurrentYear, m.Cavities, m.Movements, m.ClayHigh, m.ClayMedium)
	return nil
}
