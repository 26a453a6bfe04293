package ui

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"parceldash/internal"
)

//go:embed static
var embeddedFiles embed.FS

const notFoundPage = "404.html"

const fallbackNotFound = `<!DOCTYPE html><html><head><title>404 Not Found</title></head><body><h1>404 Not Found</h1></body></html>`

// contentTypes is the fixed extension table; anything else is served as text/plain
var contentTypes = map[string]string{
	".html": "text/html",
	".js":   "text/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

// rewrites map page routes onto files
var rewrites = map[string]string{
	"/":         "index.html",
	"/enhanced": "index_enhanced.html",
}

// Assets returns the bundled dashboard pages
func Assets() fs.FS {
	sub, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		// only fails on an invalid literal path
		panic(err)
	}
	return sub
}

// StaticRoot serves dir from disk, or the bundled assets when dir is empty
func StaticRoot(dir string) (fs.FS, error) {
	if dir == "" {
		return Assets(), nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve static root %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("static root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static root %s is not a directory", abs)
	}
	return os.DirFS(abs), nil
}

// ContentType looks up the MIME type for a file name
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "text/plain"
}

// resolvePath maps a request path onto a file name inside the root
func resolvePath(urlPath string) (string, bool) {
	if name, ok := rewrites[urlPath]; ok {
		return name, true
	}
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" || !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

// FileServer serves the dashboard pages from a root filesystem
type FileServer struct {
	root   fs.FS
	logger *internal.Logger
}

// NewFileServer creates a file server over root
func NewFileServer(root fs.FS, logger *internal.Logger) *FileServer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &FileServer{root: root, logger: logger}
}

func (s *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name, ok := resolvePath(r.URL.Path)
	if !ok {
		s.notFound(w, r)
		return
	}
	data, err := s.read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.notFound(w, r)
			return
		}
		s.logger.Error("[Static] reading %s: %v", name, err)
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType(name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

// read refuses directories so the server never lists them
func (s *FileServer) read(name string) ([]byte, error) {
	info, err := fs.Stat(s.root, name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(s.root, name)
}

func (s *FileServer) notFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("[Static] 404 %s", r.URL.Path)
	page, err := fs.ReadFile(s.root, notFoundPage)
	if err != nil {
		page = []byte(fallbackNotFound)
	}
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		_, _ = w.Write(page)
	}
}
