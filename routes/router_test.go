package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crownmania/crownmania/assets"
	"github.com/crownmania/crownmania/config"
	"github.com/crownmania/crownmania/forum"
	"github.com/crownmania/crownmania/utils"
	"github.com/crownmania/crownmania/vault"
)

type emptyStore struct{}

func (emptyStore) DownloadURL(context.Context, string) (string, error) { return "", assets.ErrNotFound }
func (emptyStore) Upload(context.Context, string, io.Reader, int64, string) error {
	return nil
}
func (emptyStore) List(context.Context, string) ([]assets.ObjectRef, error) { return nil, nil }

type stubStorage struct{ err error }

func (s stubStorage) CheckConnection(context.Context) error { return s.err }

func newTestRouter(t *testing.T, opts ...func(*Deps)) http.Handler {
	t.Helper()
	utils.SetRedis(nil)
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html>crownmania</html>"), 0o644))

	cfg := config.AppConfig{
		GinMode:            "test",
		JWTSecret:          "test-secret",
		AllowedOrigins:     []string{"*"},
		RateLimitPerMinute: 600,
		GalleryItems:       []string{"product1"},
	}
	config.Set(cfg)
	verifier := vault.NewVerifier(0, 0)
	t.Cleanup(verifier.Stop)

	d := Deps{
		Resolver:  assets.NewResolver(emptyStore{}, assets.Options{}),
		Board:     forum.NewSeededBoard(nil),
		Verifier:  verifier,
		StaticDir: static,
	}
	for _, o := range opts {
		o(&d)
	}
	return SetupRouter(cfg, d)
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSPARoutesServeIndex(t *testing.T) {
	h := newTestRouter(t)
	for _, p := range []string{"/", "/forum", "/contact", "/shop/crown-gold"} {
		w := get(h, p)
		assert.Equal(t, http.StatusOK, w.Code, p)
		assert.Contains(t, w.Body.String(), "crownmania", p)
	}
}

func TestUnknownAPIAndStatic(t *testing.T) {
	h := newTestRouter(t)
	assert.Equal(t, http.StatusNotFound, get(h, "/api/v1/nope").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/static/missing.js").Code)
	assert.Equal(t, http.StatusOK, get(h, "/health").Code)
}

func TestAPIWiring(t *testing.T) {
	h := newTestRouter(t)
	assert.Equal(t, http.StatusOK, get(h, "/api/v1/forum/posts").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/v1/gallery").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/v1/assets/cache/stats").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/api/v1/assets/url?path=images/none.webp").Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/v1/vault/pass").Code)
}

func TestHealthChecksObjectStorage(t *testing.T) {
	up := newTestRouter(t, func(d *Deps) { d.Storage = stubStorage{} })
	assert.Equal(t, http.StatusOK, get(up, "/health").Code)

	down := newTestRouter(t, func(d *Deps) { d.Storage = stubStorage{err: errors.New("connection refused")} })
	w := get(down, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "object storage unreachable")
}
