package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lofty-chat/internal/domain"
	"lofty-chat/internal/service"
)

// ChatHandler mantiene dependencias para endpoints de sesiones y mensajes.
type ChatHandler struct {
	logger   *zap.Logger
	sessions *service.SessionStore
	orch     *service.ChatOrchestrator
	feed     *service.NotificationFeed
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(
	logger *zap.Logger,
	sessions *service.SessionStore,
	orch *service.ChatOrchestrator,
	feed *service.NotificationFeed,
) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		sessions: sessions,
		orch:     orch,
		feed:     feed,
	}
}

// ListSessions maneja GET /sessions.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions":        h.sessions.List(),
		"activeSessionId": h.sessions.ActiveID(),
	})
}

// CreateSession maneja POST /sessions.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	session := h.sessions.CreateSession()
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// ClearSessions maneja DELETE /sessions.
func (h *ChatHandler) ClearSessions(c *gin.Context) {
	session := h.sessions.ClearAll()
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// ExportSessions maneja GET /sessions/export.
func (h *ChatHandler) ExportSessions(c *gin.Context) {
	raw, err := h.sessions.Export()
	if err != nil {
		respondError(c, h.logger, err, "could not export sessions")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="chat-history.json"`)
	c.Data(http.StatusOK, "application/json", raw)
}

// SelectSession maneja PUT /sessions/:id/select.
func (h *ChatHandler) SelectSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.sessions.SelectSession(id); err != nil {
		respondError(c, h.logger, err, "could not select session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"activeSessionId": id})
}

// RenameSession maneja PATCH /sessions/:id.
func (h *ChatHandler) RenameSession(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid rename session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	session, err := h.sessions.RenameSession(c.Param("id"), req.Title)
	if err != nil {
		respondError(c, h.logger, err, "could not rename session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// DeleteSession maneja DELETE /sessions/:id.
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.DeleteSession(c.Param("id")); err != nil {
		respondError(c, h.logger, err, "could not delete session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"activeSessionId": h.sessions.ActiveID()})
}

// PostMessage maneja POST /messages.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Content     string              `json:"content"`
		Attachments []domain.Attachment `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.orch.SendMessage(c.Request.Context(), req.Content, req.Attachments)
	if err != nil {
		respondError(c, h.logger, err, "could not send message")
		return
	}
	if res.SessionID == "" {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Status maneja GET /status.
func (h *ChatHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"isGenerating":    h.orch.IsGenerating(),
		"activeSessionId": h.sessions.ActiveID(),
	})
}

// Notifications maneja GET /notifications; los avisos devueltos se descartan.
func (h *ChatHandler) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.feed.Drain()})
}
