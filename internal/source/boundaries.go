package source

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
)

// ParseBoundaries reads the municipality FeatureCollection. Identifiers and
// names come from the `code` and `nom` properties, which may be typed as
// strings or numbers. Features without a code are skipped.
func ParseBoundaries(r io.Reader) ([]domain.Boundary, error) {
	text, err := DecodeText(r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(text)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundaries: %w", err)
	}

	out := make([]domain.Boundary, 0, len(fc.Features))
	for _, f := range fc.Features {
		code := domain.NormalizeCode(property(f.Properties, "code"))
		if code == "" {
			continue
		}
		out = append(out, domain.Boundary{
			Code:     code,
			Name:     strings.TrimSpace(property(f.Properties, "nom")),
			Geometry: f.Geometry,
		})
	}
	return out, nil
}

func property(p geojson.Properties, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
