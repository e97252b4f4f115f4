package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
)

// memFetcher serves in-memory payloads keyed by URI.
type memFetcher map[string]string

func (m memFetcher) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	body, ok := m[uri]
	if !ok {
		return nil, errors.New("not found: " + uri)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func newTestLoader(f Fetcher, locations Locations) *Loader {
	return NewLoader(f, locations, slog.Default(), observability.NewMetricsForTesting())
}

func TestLoader_LoadTable(t *testing.T) {
	l := newTestLoader(memFetcher{"mem://social": "CODGEO;TP6017\n33063;16\n"}, Locations{Social: "mem://social"})
	table := l.LoadTable(context.Background(), Social)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "16", table.Records[0]["TP6017"])
}

func TestLoader_LoadTable_FailSoft(t *testing.T) {
	l := newTestLoader(memFetcher{}, Locations{Social: "mem://missing"})
	table := l.LoadTable(context.Background(), Social)
	assert.Equal(t, 0, table.Len())

	unconfigured := l.LoadTable(context.Background(), Cavities)
	assert.Equal(t, 0, unconfigured.Len())
}

func TestLoader_LoadBoundaries_Fatal(t *testing.T) {
	l := newTestLoader(memFetcher{}, Locations{Boundaries: "mem://boundaries"})
	_, err := l.LoadBoundaries(context.Background())
	require.Error(t, err)

	l = newTestLoader(memFetcher{}, Locations{})
	_, err = l.LoadBoundaries(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLoader_StreamTable(t *testing.T) {
	l := newTestLoader(memFetcher{"mem://clay": "Geo Shape;alea\nx;Fort\ny;Moyen\n"}, Locations{Clay: "mem://clay"})

	var levels []string
	err := l.StreamTable(context.Background(), Clay, func(r Record) error {
		levels = append(levels, r["alea"])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fort", "Moyen"}, levels)
}

func TestLoader_StreamTable_PropagatesCallbackError(t *testing.T) {
	l := newTestLoader(memFetcher{"mem://clay": "alea\nFort\nMoyen\n"}, Locations{Clay: "mem://clay"})
	err := l.StreamTable(context.Background(), Clay, func(Record) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_StreamTable_FetchFailureIsSoft(t *testing.T) {
	l := newTestLoader(memFetcher{}, Locations{Clay: "mem://clay"})
	called := false
	err := l.StreamTable(context.Background(), Clay, func(Record) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestRouter(t *testing.T) {
	r := NewRouter(observability.NewMetricsForTesting(), clockwork.NewFakeClock())
	r.Register(memFetcher{"mem://a": "hello"}, "mem")

	rc, err := r.Open(context.Background(), "mem://a")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	_, err = r.Open(context.Background(), "ftp://host/file")
	assert.ErrorContains(t, err, "ftp")

	_, err = r.Open(context.Background(), "/nonexistent/boundaries.json")
	assert.Error(t, err)
}

func TestFileFetcher_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")
	_, err := FileFetcher{}.Open(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, 1, strings.Count(err.Error(), path))
}

func TestScheme(t *testing.T) {
	assert.Equal(t, "file", Scheme("data/communes.json"))
	assert.Equal(t, "file", Scheme("file:///tmp/a.csv"))
	assert.Equal(t, "s3", Scheme("S3://bucket/key"))
	assert.Equal(t, "https", Scheme("https://example.org/a.csv"))
}
