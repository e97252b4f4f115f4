// Package query provides the read-only views over the fact table: search,
// rankings, the clay risk breakdown and per-station reports. Every view is
// deterministic for a given table.
package query

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
)

// Records is the read side of the fact table.
type Records interface {
	All() []domain.Municipality
}

// Match identifies a municipality in a list.
type Match struct {
	ID   string `json:"insee"`
	Name string `json:"name"`
}

// sortByName orders matches alphabetically with French collation rules,
// ties broken by identifier.
func sortByName(ms []Match) {
	// Collators keep internal buffers and are not safe to share.
	c := collate.New(language.French)
	slices.SortStableFunc(ms, func(a, b Match) int {
		if n := c.CompareString(a.Name, b.Name); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
