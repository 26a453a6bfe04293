package ui

import (
	"io/fs"
	"net/http"
	"time"

	"parceldash/internal"
	"parceldash/internal/dashboard"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options are shared by both server variants
type Options struct {
	Session *dashboard.Session
	// Static is the page root; nil serves the bundled assets
	Static fs.FS
	Logger *internal.Logger
	// CORS adds Access-Control-Allow-Origin: * (gin variant)
	CORS bool
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = internal.DefaultLogger
	}
	if o.Static == nil {
		o.Static = Assets()
	}
	return o
}

// App is the chi server variant
type App struct {
	router *chi.Mux
	api    *API
	files  *FileServer
	logger *internal.Logger
}

// NewApp creates the chi variant
func NewApp(opts Options) *App {
	opts = opts.withDefaults()
	app := &App{
		router: chi.NewRouter(),
		api:    NewAPI(opts.Session, opts.Logger),
		files:  NewFileServer(opts.Static, opts.Logger),
		logger: opts.Logger,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(a.requestLogger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes sends /api to the session API and everything else to the file server
func (a *App) setupRoutes() {
	a.api.Register(a.router)
	a.router.Handle("/*", a.files)
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug("[HTTP] %s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

// Handler returns the root handler
func (a *App) Handler() http.Handler {
	return a.router
}
