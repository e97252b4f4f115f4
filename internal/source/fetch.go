package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
)

// Fetcher opens a source location for reading.
type Fetcher interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// FileFetcher opens local paths and file:// URIs.
type FileFetcher struct{}

func (FileFetcher) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	path := uri
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		path = u.Host + u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file source: %w", err)
	}
	return f, nil
}

// Router dispatches each URI to the fetcher registered for its scheme.
// Locations without a scheme are local files.
type Router struct {
	fetchers map[string]Fetcher
	metrics  *observability.Metrics
	clock    clockwork.Clock
}

// NewRouter creates a Router that serves local files. Register adds the
// remote schemes.
func NewRouter(metrics *observability.Metrics, clock clockwork.Clock) *Router {
	r := &Router{
		fetchers: make(map[string]Fetcher),
		metrics:  metrics,
		clock:    clock,
	}
	r.Register(FileFetcher{}, "file")
	return r
}

// Register binds a fetcher to one or more URI schemes.
func (r *Router) Register(f Fetcher, schemes ...string) {
	for _, s := range schemes {
		r.fetchers[strings.ToLower(s)] = f
	}
}

func (r *Router) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	scheme := Scheme(uri)
	f, ok := r.fetchers[scheme]
	if !ok {
		return nil, fmt.Errorf("no fetcher for scheme %q", scheme)
	}

	start := r.clock.Now()
	rc, err := f.Open(ctx, uri)
	r.metrics.FetchDuration.WithLabelValues(scheme).Observe(r.clock.Since(start).Seconds())
	if err != nil {
		r.metrics.FetchRequests.WithLabelValues(scheme, "error").Inc()
		return nil, err
	}
	r.metrics.FetchRequests.WithLabelValues(scheme, "success").Inc()
	return rc, nil
}

// Scheme returns the lower-cased URI scheme, "file" for plain paths.
func Scheme(uri string) string {
	i := strings.Index(uri, "://")
	if i <= 0 {
		return "file"
	}
	return strings.ToLower(uri[:i])
}
