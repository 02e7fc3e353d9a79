package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lofty-chat/internal/llm"
	"lofty-chat/internal/service"
)

// SettingsHandler expone configuración del asistente, modelos y perfil.
type SettingsHandler struct {
	logger   *zap.Logger
	settings *service.SettingsService
	profiles *service.ProfileService
	gateway  llm.Gateway
}

func NewSettingsHandler(
	logger *zap.Logger,
	settings *service.SettingsService,
	profiles *service.ProfileService,
	gateway llm.Gateway,
) *SettingsHandler {
	return &SettingsHandler{
		logger:   logger,
		settings: settings,
		profiles: profiles,
		gateway:  gateway,
	}
}

// ListModels maneja GET /models.
func (h *SettingsHandler) ListModels(c *gin.Context) {
	current := h.settings.Get()
	c.JSON(http.StatusOK, gin.H{
		"models":        h.gateway.ListModels(current.HasCredential()),
		"selectedModel": current.SelectedModel,
	})
}

// TestCredential maneja POST /credentials/test. Sin apiKey en el body se prueba la guardada.
func (h *SettingsHandler) TestCredential(c *gin.Context) {
	var req struct {
		APIKey string `json:"apiKey"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid credential test request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}
	key := req.APIKey
	if key == "" {
		key = h.settings.Get().APIKey
	}
	c.JSON(http.StatusOK, gin.H{"valid": h.gateway.TestCredential(c.Request.Context(), key)})
}

// GetSettings maneja GET /settings. La API key nunca sale completa.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, settingsResponse(h.settings))
}

// UpdateSettings maneja PUT /settings.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req service.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid settings request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if _, err := h.settings.Update(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err, "could not update settings")
		return
	}
	c.JSON(http.StatusOK, settingsResponse(h.settings))
}

// ApplyTemplate maneja POST /settings/template.
func (h *SettingsHandler) ApplyTemplate(c *gin.Context) {
	var req struct {
		TemplateID string `json:"templateId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid apply template request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if _, err := h.settings.ApplyTemplate(c.Request.Context(), req.TemplateID); err != nil {
		respondError(c, h.logger, err, "could not apply template")
		return
	}
	c.JSON(http.StatusOK, settingsResponse(h.settings))
}

// ListTemplates maneja GET /templates.
func (h *SettingsHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": service.PromptTemplates()})
}

// ValidatePrompt maneja POST /prompts/validate.
func (h *SettingsHandler) ValidatePrompt(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid validate prompt request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.JSON(http.StatusOK, service.ValidatePrompt(req.Prompt))
}

// GetProfile maneja GET /profile.
func (h *SettingsHandler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profile": h.profiles.Get()})
}

// UpdateProfile maneja PATCH /profile.
func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	var req service.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	profile, err := h.profiles.Update(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "could not update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func settingsResponse(settings *service.SettingsService) gin.H {
	current := settings.Get()
	hasKey := current.HasCredential()
	current.APIKey = maskKey(current.APIKey)
	return gin.H{"settings": current, "hasApiKey": hasKey}
}

// maskKey deja visibles solo los últimos 4 caracteres.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	runes := []rune(key)
	if len(runes) <= 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}
