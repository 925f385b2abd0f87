package server

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"dbchat/session"
)

// ChatRequest is one user utterance. SessionID is empty for a new
// conversation; the response echoes the ID to continue it.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse carries the assistant's final reply for a turn.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// ChatHandler handles one conversation turn. Turns within a session are
// handled sequentially; the session lock is held across the provider call.
func (s *Server) ChatHandler(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	sess := s.sessions.Get(req.SessionID)
	if sess == nil {
		sess = s.sessions.Create(s.provider.GetModel())
	}

	sess.Lock()
	defer sess.Unlock()

	turns, reply := s.router.HandleTurn(c.Request.Context(), sess.Messages, req.Message)
	sess.Append(turns...)

	c.JSON(http.StatusOK, ChatResponse{
		SessionID: sess.ID,
		Reply:     reply,
	})
}

// TablesHandler returns the full dynamic schema: every table with its
// columns, row count and recent samples.
func (s *Server) TablesHandler(c *gin.Context) {
	infos, err := s.store.ListTables(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": infos})
}

// ListSessionsHandler lists session metadata, newest first.
func (s *Server) ListSessionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.sessions.List()})
}

// GetSessionHandler returns one session with its full message history.
// The session lock is held while marshaling so a concurrent chat turn
// cannot append mid-encode.
func (s *Server) GetSessionHandler(c *gin.Context) {
	sess := s.sessions.Get(c.Param("id"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	sess.Lock()
	defer sess.Unlock()
	c.JSON(http.StatusOK, sess)
}

// SearchSessionHandler finds messages in a session matching ?q=, ignoring
// case. System messages are never part of a session's history here, so every
// match is a user or assistant turn.
func (s *Server) SearchSessionHandler(c *gin.Context) {
	sess := s.sessions.Get(c.Param("id"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	sess.Lock()
	matches := session.SearchMessages(sess.Messages, query)
	sess.Unlock()

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// ExportSessionHandler writes the session transcript to a JSON file under
// the data directory and returns its path.
func (s *Server) ExportSessionHandler(c *gin.Context) {
	sess := s.sessions.Get(c.Param("id"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	exportPath := filepath.Join(s.dataDir, "exports", sess.ID+".json")

	sess.Lock()
	err := sess.ExportToJSON(exportPath)
	sess.Unlock()

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": exportPath})
}

// DeleteSessionHandler discards a session's history.
func (s *Server) DeleteSessionHandler(c *gin.Context) {
	s.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// HealthHandler reports liveness plus the active model.
func (s *Server) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"model":  s.provider.GetModel(),
	})
}

// IndexHandler serves the embedded chat widget.
func (s *Server) IndexHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
