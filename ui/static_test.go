package ui

import (
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"parceldash/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoot() fstest.MapFS {
	return fstest.MapFS{
		"index.html":          {Data: []byte("<h1>home</h1>")},
		"index_enhanced.html": {Data: []byte("<h1>enhanced</h1>")},
		"404.html":            {Data: []byte("<h1>custom missing</h1>")},
		"data.json":           {Data: []byte(`{"ok":true}`)},
		"notes.md":            {Data: []byte("# notes")},
		"img/logo.JPG":        {Data: []byte{0xff, 0xd8}},
		"js/app.js":           {Data: []byte("console.log(1)")},
	}
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestFileServer_Rewrites(t *testing.T) {
	srv := NewFileServer(testRoot(), internal.NewNopLogger())

	rec := serve(t, srv, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<h1>home</h1>", rec.Body.String())

	rec = serve(t, srv, http.MethodGet, "/enhanced")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>enhanced</h1>", rec.Body.String())
}

func TestFileServer_ContentTypes(t *testing.T) {
	srv := NewFileServer(testRoot(), internal.NewNopLogger())
	cases := map[string]string{
		"/data.json":    "application/json",
		"/notes.md":     "text/plain",
		"/img/logo.JPG": "image/jpeg",
		"/js/app.js":    "text/javascript",
	}
	for target, want := range cases {
		rec := serve(t, srv, http.MethodGet, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, want, rec.Header().Get("Content-Type"), target)
	}
	assert.Equal(t, "image/svg+xml", ContentType("icon.svg"))
	assert.Equal(t, "image/gif", ContentType("a.gif"))
	assert.Equal(t, "text/plain", ContentType("Makefile"))
}

func TestFileServer_NotFound(t *testing.T) {
	srv := NewFileServer(testRoot(), internal.NewNopLogger())

	for _, target := range []string{"/missing.html", "/img", "/../index_missing.html"} {
		rec := serve(t, srv, http.MethodGet, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "<h1>custom missing</h1>", rec.Body.String(), target)
		assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	}

	bare := NewFileServer(fstest.MapFS{}, internal.NewNopLogger())
	rec := serve(t, bare, http.MethodGet, "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404 Not Found")
}

type brokenFS struct{}

func (brokenFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: errors.New("input/output error")}
}

func TestFileServer_OtherErrorsAre500(t *testing.T) {
	srv := NewFileServer(brokenFS{}, internal.NewNopLogger())
	rec := serve(t, srv, http.MethodGet, "/index.html")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFileServer_Methods(t *testing.T) {
	srv := NewFileServer(testRoot(), internal.NewNopLogger())

	rec := serve(t, srv, http.MethodHead, "/data.json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "11", rec.Header().Get("Content-Length"))
	assert.Empty(t, rec.Body.String())

	rec = serve(t, srv, http.MethodPost, "/data.json")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStaticRoot(t *testing.T) {
	root, err := StaticRoot("")
	require.NoError(t, err)
	page, err := fs.ReadFile(root, "index.html")
	require.NoError(t, err)
	assert.Contains(t, string(page), `id="kpi-cards"`)
	for _, name := range []string{"index_enhanced.html", "404.html", "js/dashboard.js", "css/dashboard.css"} {
		_, err := fs.Stat(root, name)
		assert.NoError(t, err, name)
	}

	dir := t.TempDir()
	_, err = StaticRoot(dir)
	assert.NoError(t, err)

	_, err = StaticRoot(dir + "/nope")
	assert.Error(t, err)
}
