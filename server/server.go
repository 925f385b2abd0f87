// Package server exposes the chat assistant over HTTP on a local port:
// a JSON API plus an embedded single-page chat widget.
package server

import (
	_ "embed"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dbchat/model"
	"dbchat/router"
	"dbchat/session"
	"dbchat/store"
)

//go:embed web/index.html
var indexHTML []byte

// Server wires the conversation router, session manager and table store
// into HTTP handlers.
type Server struct {
	router   *router.Router
	sessions *session.Manager
	store    *store.Store
	provider model.Provider
	dataDir  string
}

// New builds the gin engine with all routes registered. dataDir is where
// session exports are written.
func New(r *router.Router, sessions *session.Manager, st *store.Store, p model.Provider, dataDir string) (*Server, *gin.Engine) {
	s := &Server{
		router:   r,
		sessions: sessions,
		store:    st,
		provider: p,
		dataDir:  dataDir,
	}

	engine := gin.Default()
	engine.Use(cors.Default())

	engine.GET("/", s.IndexHandler)
	engine.GET("/health", s.HealthHandler)

	api := engine.Group("/api")
	{
		api.POST("/chat", s.ChatHandler)
		api.GET("/tables", s.TablesHandler)
		api.GET("/sessions", s.ListSessionsHandler)
		api.GET("/sessions/:id", s.GetSessionHandler)
		api.DELETE("/sessions/:id", s.DeleteSessionHandler)
		api.GET("/sessions/:id/search", s.SearchSessionHandler)
		api.POST("/sessions/:id/export", s.ExportSessionHandler)
	}

	return s, engine
}
