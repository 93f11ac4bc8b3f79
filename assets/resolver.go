// Package assets resolves logical storage paths such as "images/product1.webp"
// to time-limited download URLs and keeps them in an in-memory TTL cache.
package assets

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a resolved URL is reused before it is fetched again.
const DefaultTTL = time.Hour

const defaultListConcurrency = 8

// ObjectRef is one object returned by a folder listing.
type ObjectRef struct {
	Name string
	Path string
}

// ObjectStore is the object-storage collaborator. DownloadURL must return an
// error matching ErrNotFound when the object does not exist.
type ObjectStore interface {
	DownloadURL(ctx context.Context, path string) (string, error)
	Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) error
	List(ctx context.Context, folder string) ([]ObjectRef, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// CachedURL is a resolved URL and the time it was fetched.
type CachedURL struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
}

// File is one entry of a folder listing with its resolved URL.
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Upload is a file to be stored under a logical folder.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Stats reports cache activity since construction.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Fetches int64 `json:"fetches"`
}

// Options configures a Resolver. Zero values select defaults.
type Options struct {
	TTL             time.Duration
	Clock           Clock
	Logger          *zap.SugaredLogger
	ListConcurrency int
}

// Resolver caches download URLs per logical path. It is safe for concurrent
// use; concurrent cold lookups of the same path share one storage call.
type Resolver struct {
	store   ObjectStore
	ttl     time.Duration
	clock   Clock
	log     *zap.SugaredLogger
	listMax int

	mu      sync.Mutex
	entries map[string]CachedURL
	flight  singleflight.Group

	hits    atomic.Int64
	misses  atomic.Int64
	fetches atomic.Int64
}

// NewResolver builds a Resolver over store.
func NewResolver(store ObjectStore, opts Options) *Resolver {
	r := &Resolver{
		store:   store,
		ttl:     opts.TTL,
		clock:   opts.Clock,
		log:     opts.Logger,
		listMax: opts.ListConcurrency,
		entries: make(map[string]CachedURL),
	}
	if r.ttl <= 0 {
		r.ttl = DefaultTTL
	}
	if r.clock == nil {
		r.clock = ClockFunc(time.Now)
	}
	if r.log == nil {
		r.log = zap.NewNop().Sugar()
	}
	if r.listMax <= 0 {
		r.listMax = defaultListConcurrency
	}
	return r
}

// TTL returns the validity window of cached URLs.
func (r *Resolver) TTL() time.Duration { return r.ttl }

// Resolve returns the download URL for path, from cache when fresh.
func (r *Resolver) Resolve(ctx context.Context, path string) (string, error) {
	path = cleanPath(path)
	if path == "" {
		return "", &StorageError{Op: "resolve", Path: path, Kind: ErrNotFound, Err: errors.New("empty path")}
	}
	if url, ok := r.lookup(path); ok {
		r.hits.Add(1)
		return url, nil
	}
	r.misses.Add(1)

	v, err, shared := r.flight.Do(path, func() (interface{}, error) {
		return r.fetch(ctx, path)
	})
	if err != nil {
		return "", err
	}
	if shared {
		r.log.Debugw("asset lookup coalesced", "path", path)
	}
	return v.(string), nil
}

// ResolveWithFallback resolves primary and, only when it does not exist, fallback.
func (r *Resolver) ResolveWithFallback(ctx context.Context, primary, fallback string) (string, error) {
	url, err := r.Resolve(ctx, primary)
	if err == nil || !IsNotFound(err) {
		return url, err
	}
	r.log.Debugw("asset missing, trying fallback", "path", primary, "fallback", fallback)
	return r.Resolve(ctx, fallback)
}

// ListFolder lists folder and resolves a URL for every object in it. Objects
// whose URL cannot be resolved are logged and left out.
func (r *Resolver) ListFolder(ctx context.Context, folder string) ([]File, error) {
	folder = strings.Trim(cleanPath(folder), "/")
	refs, err := r.store.List(ctx, folder)
	if err != nil {
		return nil, classify("list", folder, err)
	}

	resolved := make([]File, len(refs))
	ok := make([]bool, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.listMax)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			url, err := r.Resolve(gctx, ref.Path)
			if err != nil {
				r.log.Warnw("skipping unresolvable asset", "folder", folder, "path", ref.Path, "error", err)
				return nil
			}
			resolved[i] = File{Name: ref.Name, Path: ref.Path, URL: url}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	files := make([]File, 0, len(refs))
	for i := range resolved {
		if ok[i] {
			files = append(files, resolved[i])
		}
	}
	return files, nil
}

// Upload validates the declared content type, stores the file under
// folder/name and returns its freshly resolved URL.
func (r *Resolver) Upload(ctx context.Context, file Upload, folder string) (string, error) {
	if err := ValidateFileType(folder, file.ContentType); err != nil {
		return "", err
	}
	p, ok := ObjectPath(folder, file.Name)
	if !ok {
		return "", errors.Join(ErrInvalidFileType, errors.New("missing file name"))
	}
	if err := r.store.Upload(ctx, p, file.Body, file.Size, normalizeContentType(file.ContentType)); err != nil {
		return "", classify("upload", p, err)
	}
	r.Invalidate(p)
	// a lookup that started before the store may still report the old state
	r.flight.Forget(p)
	r.log.Infow("asset uploaded", "path", p, "size", file.Size)
	return r.Resolve(ctx, p)
}

// Preload resolves every path and returns the URLs that succeeded, in order.
func (r *Resolver) Preload(ctx context.Context, paths []string) []string {
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		url, err := r.Resolve(ctx, p)
		if err != nil {
			r.log.Warnw("preload failed", "path", p, "error", err)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

// EvictExpired drops every entry at or past its TTL and returns how many were removed.
func (r *Resolver) EvictExpired() int {
	now := r.clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for p, e := range r.entries {
		if !r.fresh(e, now) {
			delete(r.entries, p)
			removed++
		}
	}
	return removed
}

// Invalidate drops the cached entry for path, if any.
func (r *Resolver) Invalidate(path string) {
	path = cleanPath(path)
	r.mu.Lock()
	delete(r.entries, path)
	r.mu.Unlock()
}

// Clear empties the cache.
func (r *Resolver) Clear() {
	r.mu.Lock()
	r.entries = make(map[string]CachedURL)
	r.mu.Unlock()
}

// Len returns the number of cached entries, fresh or stale.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entry returns the cached record for path without affecting it.
func (r *Resolver) Entry(path string) (CachedURL, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[cleanPath(path)]
	return e, ok
}

// Stats returns cache counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		Entries: r.Len(),
		Hits:    r.hits.Load(),
		Misses:  r.misses.Load(),
		Fetches: r.fetches.Load(),
	}
}

// SetupReport is the result of VerifySetup for one folder.
type SetupReport struct {
	Folder string   `json:"folder"`
	Paths  []string `json:"paths"`
	Error  string   `json:"error,omitempty"`
}

// VerifySetup lists each folder and reports the object paths found.
func (r *Resolver) VerifySetup(ctx context.Context, folders ...string) []SetupReport {
	reports := make([]SetupReport, 0, len(folders))
	for _, f := range folders {
		rep := SetupReport{Folder: f, Paths: []string{}}
		refs, err := r.store.List(ctx, f)
		if err != nil {
			rep.Error = classify("list", f, err).Error()
		} else {
			for _, ref := range refs {
				rep.Paths = append(rep.Paths, ref.Path)
			}
		}
		reports = append(reports, rep)
	}
	return reports
}

func (r *Resolver) lookup(path string) (string, bool) {
	now := r.clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[path]
	if !ok {
		return "", false
	}
	if r.fresh(e, now) {
		return e.URL, true
	}
	delete(r.entries, path)
	r.log.Debugw("asset cache entry expired", "path", path)
	return "", false
}

func (r *Resolver) fetch(ctx context.Context, path string) (string, error) {
	r.fetches.Add(1)
	url, err := r.store.DownloadURL(ctx, path)
	if err != nil {
		return "", classify("resolve", path, err)
	}
	r.mu.Lock()
	r.entries[path] = CachedURL{Path: path, URL: url, FetchedAt: r.clock.Now()}
	r.mu.Unlock()
	return url, nil
}

func (r *Resolver) fresh(e CachedURL, now time.Time) bool {
	return now.Sub(e.FetchedAt) < r.ttl
}

func cleanPath(p string) string {
	return strings.TrimPrefix(strings.TrimSpace(p), "/")
}
