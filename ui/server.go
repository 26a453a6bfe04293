package ui

import (
	"net/http"

	"parceldash/internal"

	"github.com/gin-gonic/gin"
)

// Server is the gin server variant
type Server struct {
	router *gin.Engine
	api    *API
	files  *FileServer
	logger *internal.Logger
	cors   bool
}

// NewServer creates the gin variant. The gin mode is a process-wide setting
// left to the caller.
func NewServer(opts Options) *Server {
	opts = opts.withDefaults()
	s := &Server{
		router: gin.New(),
		api:    NewAPI(opts.Session, opts.Logger),
		files:  NewFileServer(opts.Static, opts.Logger),
		logger: opts.Logger,
		cors:   opts.CORS,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupRoutes wraps the chi API and file server as gin handlers
func (s *Server) setupRoutes() {
	api := gin.WrapH(s.api.Handler())
	s.router.Any("/api/*path", api)
	s.router.NoRoute(gin.WrapH(s.files))
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}
