// Package mockdata writes a synthetic Gironde dataset in the exact formats
// of the open-data exports: a grid of square municipalities with social,
// wildfire, clay, river level, cavity and ground movement records.
// The output is deterministic for a given seed, and the Manifest carries
// the figures the pipeline is expected to reproduce.
package mockdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/gironde-risk-etl/internal/config"
	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
)

// File names written by Generate.
const (
	BoundariesFile = "communes-gironde.json"
	SocialFile     = "filosofi_gironde.csv"
	FireFile       = "NewIncendies.csv"
	ClayFile       = "ri_alearga_s.csv"
	WaterFile      = "Vigicrues_Hauteurs_O972001001.csv"
	CavitiesFile   = "cavite_33.csv"
	MovementsFile  = "mvt_dptList_33.csv"
)

var names = []string{
	"Mérignac", "Pessac", "Talence", "Bègles", "Lormont", "Cenon", "Eysines", "Blanquefort",
	"Bruges", "Floirac", "Léognan", "Saint-Émilion", "Gradignan", "Villenave-d'Ornon", "Le Bouscat", "Ambarès-et-Lagrave",
}

// Options shapes the generated grid.
type Options struct {
	Rows, Cols  int
	Origin      orb.Point // south-west corner, lon/lat
	Cell        float64   // cell side in degrees
	Seed        uint64
	FireWindow  domain.FireWindow
	Readings    int       // hourly readings per populated station
	ReadingsEnd time.Time // timestamp of the last reading
}

// DefaultOptions covers the Bordeaux area with a 6x6 grid whose centroids
// all lie within 15 km of a populated gauge.
func DefaultOptions() Options {
	return Options{
		Rows:        6,
		Cols:        6,
		Origin:      orb.Point{-0.70, 44.78},
		Cell:        0.04,
		Seed:        33,
		FireWindow:  domain.FireWindow{CurrentYear: 2024, Years: 10},
		Readings:    48,
		ReadingsEnd: time.Date(2025, time.December, 8, 12, 0, 0, 0, time.UTC),
	}
}

// Manifest describes a generated dataset.
type Manifest struct {
	Dir            string
	Sources        config.Sources
	Municipalities int
	Codes          []string
	FiresInWindow  int
	FiresCurrent   int
	Cavities       int
	Movements      int
	ClayHigh       int
	ClayMedium     int
	MaskedPoverty  int
}

type commune struct {
	code, name string
	cell       orb.Polygon
	center     orb.Point
}

// Generate writes the dataset into dir, creating it if needed.
func Generate(dir string, opts Options) (Manifest, error) {
	if opts.Rows <= 0 || opts.Cols <= 0 || opts.Cell <= 0 {
		return Manifest{}, errors.New("grid must be at least 1x1 with a positive cell size")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Manifest{}, fmt.Errorf("create %s: %w", dir, err)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	communes := grid(opts)
	m := Manifest{
		Dir: dir,
		Sources: config.Sources{
			Boundaries: filepath.Join(dir, BoundariesFile),
			Social:     filepath.Join(dir, SocialFile),
			Fire:       filepath.Join(dir, FireFile),
			Clay:       filepath.Join(dir, ClayFile),
			Water:      filepath.Join(dir, WaterFile),
			Cavities:   filepath.Join(dir, CavitiesFile),
			Movements:  filepath.Join(dir, MovementsFile),
		},
		Municipalities: len(communes),
	}
	for _, c := range communes {
		m.Codes = append(m.Codes, c.code)
	}

	steps := []struct {
		path  string
		write func(io.Writer) error
	}{
		{m.Sources.Boundaries, func(w io.Writer) error { return writeBoundaries(w, communes) }},
		{m.Sources.Social, func(w io.Writer) error { return writeSocial(w, rng, communes, &m) }},
		{m.Sources.Fire, func(w io.Writer) error { return writeFire(w, rng, communes, opts.FireWindow, &m) }},
		{m.Sources.Clay, func(w io.Writer) error { return writeClay(w, rng, communes, opts.Cell, &m) }},
		{m.Sources.Water, func(w io.Writer) error { return writeWater(w, rng, opts) }},
		{m.Sources.Cavities, func(w io.Writer) error {
			return writeCounts(w, rng, communes, "numInsee;nom_commune", &m.Cavities)
		}},
		{m.Sources.Movements, func(w io.Writer) error {
			return writeCounts(w, rng, communes, "num_insee;lib_commune", &m.Movements)
		}},
	}
	for _, s := range steps {
		if err := writeFile(s.path, s.write); err != nil {
			return Manifest{}, err
		}
	}
	return m, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func grid(opts Options) []commune {
	out := make([]commune, 0, opts.Rows*opts.Cols)
	for r := range opts.Rows {
		for c := range opts.Cols {
			i := r*opts.Cols + c
			minLon := opts.Origin[0] + float64(c)*opts.Cell
			minLat := opts.Origin[1] + float64(r)*opts.Cell
			name := fmt.Sprintf("Commune %d", i+1)
			if i < len(names) {
				name = names[i]
			}
			out = append(out, commune{
				code:   fmt.Sprintf("33%03d", i+1),
				name:   name,
				cell:   square(minLon, minLat, opts.Cell),
				center: orb.Point{minLon + opts.Cell/2, minLat + opts.Cell/2},
			})
		}
	}
	return out
}

func square(minLon, minLat, side float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat},
		{minLon + side, minLat},
		{minLon + side, minLat + side},
		{minLon, minLat + side},
		{minLon, minLat},
	}}
}

func writeBoundaries(w io.Writer, communes []commune) error {
	fc := geojson.NewFeatureCollection()
	for _, c := range communes {
		f := geojson.NewFeature(c.cell)
		f.Properties["code"] = c.code
		f.Properties["nom"] = c.name
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func newCSV(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return cw
}

func decimalComma(v float64, prec int) string {
	return strings.Replace(fmt.Sprintf("%.*f", prec, v), ".", ",", 1)
}

// writeSocial emits poverty rates inversely related to median income. One
// commune in seven has its poverty rate statistically masked.
func writeSocial(w io.Writer, rng *rand.Rand, communes []commune, m *Manifest) error {
	cw := newCSV(w)
	if err := cw.Write([]string{"CODGEO", "LIBGEO", "TP6017", "MED17"}); err != nil {
		return err
	}
	for i, c := range communes {
		poverty := 6 + rng.Float64()*20
		income := 31000 - 450*poverty + rng.Float64()*1500
		rate := decimalComma(poverty, 1)
		if i%7 == 6 {
			rate = "s"
			m.MaskedPoverty++
		}
		if err := cw.Write([]string{c.code, c.name, rate, fmt.Sprintf("%.0f", income)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeFire emits the BDIFF export: three metadata lines, then one row per
// fire, Windows-1252 encoded. Some rows carry only the municipality name,
// others belong to a neighbouring department.
func writeFire(w io.Writer, rng *rand.Rand, communes []commune, window domain.FireWindow, m *Manifest) error {
	enc := transform.NewWriter(w, charmap.Windows1252.NewEncoder())
	preamble := "Base de Données sur les Incendies de Forêts en France\nExport généré le 08/12/2025\n\n"
	if _, err := io.WriteString(enc, preamble); err != nil {
		return err
	}
	cw := newCSV(enc)
	if err := cw.Write([]string{"Année", "Numéro", "Département", "Code INSEE", "Nom de la commune", "Surface parcourue (m2)"}); err != nil {
		return err
	}

	n := 0
	row := func(year int, dept, code, name string) error {
		n++
		return cw.Write([]string{fmt.Sprint(year), fmt.Sprint(n), dept, code, name, fmt.Sprint(100 + rng.IntN(50000))})
	}
	for i, c := range communes {
		for range rng.IntN(4) {
			year := window.CurrentYear - rng.IntN(window.Years+3)
			code, name := c.code, c.name
			if i%5 == 0 {
				code, name = "", strings.ToUpper(c.name)
			}
			if err := row(year, "33", code, name); err != nil {
				return err
			}
			if window.Contains(year) {
				m.FiresInWindow++
			}
			if year == window.CurrentYear {
				m.FiresCurrent++
			}
		}
	}
	if err := row(window.CurrentYear, "24", "24322", "Périgueux"); err != nil {
		return err
	}
	if err := row(window.CurrentYear, "33", "33999", "Inconnue"); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return enc.Close()
}

// writeClay emits one zone per commune, slightly inset from its cell, plus
// an invalid shape.
func writeClay(w io.Writer, rng *rand.Rand, communes []commune, cell float64, m *Manifest) error {
	cw := newCSV(w)
	if err := cw.Write([]string{"Geo Point", "Geo Shape", "alea", "dept"}); err != nil {
		return err
	}
	levels := []string{"Faible", "Moyen", "Fort", "Inconnu"}
	inset := cell * 0.1
	for _, c := range communes {
		level := levels[rng.IntN(len(levels))]
		switch domain.ParseRiskLevel(level) {
		case domain.RiskHigh:
			m.ClayHigh++
		case domain.RiskMedium:
			m.ClayMedium++
		}
		b := c.cell.Bound()
		zone := square(b.Min[0]+inset, b.Min[1]+inset, cell-2*inset)
		shape, err := geojson.NewGeometry(zone).MarshalJSON()
		if err != nil {
			return err
		}
		point := fmt.Sprintf("%.5f, %.5f", c.center[1], c.center[0])
		if err := cw.Write([]string{point, string(shape), level, "33"}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"", `{"type":"Polygon","coordinates":[]}`, "Fort", "33"}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// writeWater emits hourly readings for the first two default stations. The
// third station column stays empty.
func writeWater(w io.Writer, rng *rand.Rand, opts Options) error {
	cw := newCSV(w)
	header := []string{"Date et heure locale"}
	for _, s := range domain.DefaultStations {
		header = append(header, s.Column)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	start := opts.ReadingsEnd.Add(-time.Duration(opts.Readings-1) * time.Hour)
	for i := range opts.Readings {
		at := start.Add(time.Duration(i) * time.Hour)
		rec := []string{at.Format("2006-01-02 15:04:05")}
		for j := range domain.DefaultStations {
			v := ""
			if j < 2 {
				v = decimalComma(2+float64(j)+rng.Float64()*2, 2)
			}
			rec = append(rec, v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeCounts emits zero to three inventory rows per commune.
func writeCounts(w io.Writer, rng *rand.Rand, communes []commune, header string, total *int) error {
	cw := newCSV(w)
	if err := cw.Write(strings.Split(header, ";")); err != nil {
		return err
	}
	for _, c := range communes {
		for range rng.IntN(4) {
			if err := cw.Write([]string{c.code, c.name}); err != nil {
				return err
			}
			*total++
		}
	}
	cw.Flush()
	return cw.Error()
}
