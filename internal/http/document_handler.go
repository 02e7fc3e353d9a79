package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lofty-chat/internal/domain"
	"lofty-chat/internal/service"
)

type DocumentHandler struct {
	logger   *zap.Logger
	analyzer *service.DocumentAnalyzer
}

func NewDocumentHandler(logger *zap.Logger, analyzer *service.DocumentAnalyzer) *DocumentHandler {
	return &DocumentHandler{logger: logger, analyzer: analyzer}
}

// Analyze maneja POST /documents/analyze (multipart: document, businessStrategy, missionVision).
func (h *DocumentHandler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "document is too large"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err, "could not read document")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondError(c, h.logger, err, "could not read document")
		return
	}

	req := domain.VerificationRequest{
		Document: domain.Document{
			Name:     fileHeader.Filename,
			MimeType: fileHeader.Header.Get("Content-Type"),
			Content:  content,
		},
		BusinessStrategy: c.PostForm("businessStrategy"),
		MissionVision:    c.PostForm("missionVision"),
	}
	res, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "could not analyze document")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}
