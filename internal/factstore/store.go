// Package factstore holds the municipality fact table: one record per
// boundary feature, keyed by INSEE code, guarded for concurrent readers
// while the join engines write through Update.
package factstore

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/geo"
)

// Located is a municipality identifier with its centroid.
type Located struct {
	ID       string
	Centroid orb.Point
}

// CreateReport summarizes a CreateFromBoundaries call.
type CreateReport struct {
	Created    int
	Duplicates int
	Degenerate int
}

// Store is the in-memory fact table.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.Municipality
	byName  map[string]string
	logger  *slog.Logger
}

// New creates an empty Store.
func New(logger *slog.Logger) *Store {
	return &Store{
		records: make(map[string]*domain.Municipality),
		byName:  make(map[string]string),
		logger:  logger,
	}
}

// CreateFromBoundaries adds one record per feature. A feature whose code is
// already present is skipped. A feature with unusable geometry still gets a
// record, but without a centroid and outside the name lookup.
func (s *Store) CreateFromBoundaries(features []domain.Boundary) CreateReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report CreateReport
	for _, f := range features {
		if _, exists := s.records[f.Code]; exists {
			report.Duplicates++
			s.logger.Warn("duplicate boundary identifier, keeping first", "insee", f.Code, "name", f.Name)
			continue
		}

		m := domain.NewMunicipality(f.Code, f.Name)
		c, err := geo.Centroid(f.Geometry)
		if err != nil {
			report.Degenerate++
			s.logger.Warn("boundary has no usable geometry", "insee", f.Code, "name", f.Name, "error", err)
		} else {
			m.Centroid = c
			m.HasCentroid = true
			if key := domain.NormalizeName(f.Name); key != "" {
				if _, taken := s.byName[key]; !taken {
					s.byName[key] = f.Code
				}
			}
		}
		s.records[f.Code] = &m
		report.Created++
	}
	return report
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (domain.Municipality, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.records[id]
	if !ok {
		return domain.Municipality{}, false
	}
	return m.Clone(), true
}

// ResolveByName looks a municipality up by its normalized name. When two
// municipalities share a name the first one loaded wins.
func (s *Store) ResolveByName(name string) (string, bool) {
	key := domain.NormalizeName(name)
	if key == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[key]
	return id, ok
}

// Contains reports whether id has a record.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok
}

// All returns a copy of every record ordered by identifier.
func (s *Store) All() []domain.Municipality {
	s.mu.RLock()
	out := make([]domain.Municipality, 0, len(s.records))
	for _, m := range s.records {
		out = append(out, m.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Municipality) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Centroids returns every record that has a centroid, ordered by identifier.
func (s *Store) Centroids() []Located {
	s.mu.RLock()
	out := make([]Located, 0, len(s.records))
	for id, m := range s.records {
		if m.HasCentroid {
			out = append(out, Located{ID: id, Centroid: m.Centroid})
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Located) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Update applies fn to the record for id under the write lock. It returns
// false if id is unknown. fn must not change the identifier.
func (s *Store) Update(id string, fn func(*domain.Municipality)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.records[id]
	if !ok {
		return false
	}
	fn(m)
	m.ID = id
	return true
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
