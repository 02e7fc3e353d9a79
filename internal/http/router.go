package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	chatH *ChatHandler,
	settingsH *SettingsHandler,
	documentH *DocumentHandler,
) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxUploadBytes

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	sessions := r.Group("/sessions")
	sessions.GET("", chatH.ListSessions)
	sessions.POST("", chatH.CreateSession)
	sessions.DELETE("", chatH.ClearSessions)
	sessions.GET("/export", chatH.ExportSessions)
	sessions.PUT("/:id/select", chatH.SelectSession)
	sessions.PATCH("/:id", chatH.RenameSession)
	sessions.DELETE("/:id", chatH.DeleteSession)

	r.POST("/messages", chatH.PostMessage)
	r.GET("/status", chatH.Status)
	r.GET("/notifications", chatH.Notifications)

	r.GET("/models", settingsH.ListModels)
	r.POST("/credentials/test", settingsH.TestCredential)
	r.GET("/settings", settingsH.GetSettings)
	r.PUT("/settings", settingsH.UpdateSettings)
	r.POST("/settings/template", settingsH.ApplyTemplate)
	r.GET("/templates", settingsH.ListTemplates)
	r.POST("/prompts/validate", settingsH.ValidatePrompt)
	r.GET("/profile", settingsH.GetProfile)
	r.PATCH("/profile", settingsH.UpdateProfile)

	r.POST("/documents/analyze", documentH.Analyze)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
