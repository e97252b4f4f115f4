package query

import (
	"strings"
	"unicode/utf8"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
)

const (
	// DefaultSearchLimit caps the number of search results.
	DefaultSearchLimit = 8
	minSearchRunes     = 2
)

// Search finds municipalities whose normalized name contains the query or
// whose identifier starts with it. Names starting with the query come
// first. Queries shorter than two characters after normalization match
// nothing.
func Search(r Records, text string, limit int) []Match {
	q := domain.NormalizeName(text)
	if utf8.RuneCountInString(q) < minSearchRunes {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var prefix, other []Match
	for _, m := range r.All() {
		name := domain.NormalizeName(m.Name)
		switch {
		case strings.HasPrefix(name, q):
			prefix = append(prefix, Match{ID: m.ID, Name: m.Name})
		case strings.Contains(name, q), strings.HasPrefix(m.ID, q):
			other = append(other, Match{ID: m.ID, Name: m.Name})
		}
	}

	out := append(prefix, other...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
