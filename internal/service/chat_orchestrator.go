package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"lofty-chat/internal/domain"
	"lofty-chat/internal/llm"
)

const defaultGatewayTimeout = 45 * time.Second

// OrchestratorOptions ajusta los tiempos del orquestador. SimulatedLatency en cero no espera.
type OrchestratorOptions struct {
	SimulatedLatency time.Duration
	GatewayTimeout   time.Duration
}

// SendResult describe lo que SendMessage agregó a la sesión.
type SendResult struct {
	SessionID        string         `json:"sessionId"`
	UserMessage      domain.Message `json:"userMessage"`
	AssistantMessage domain.Message `json:"assistantMessage"`
	Simulated        bool           `json:"simulated"`
	GatewayFailed    bool           `json:"gatewayFailed"`
}

// ChatOrchestrator es el único punto de entrada para "el usuario envía un mensaje".
//
// Se asume a lo sumo un SendMessage en vuelo por sesión. Cada append es atómico en el
// SessionStore, pero dos envíos concurrentes a la misma sesión pueden intercalar sus
// pares usuario/asistente.
type ChatOrchestrator struct {
	sessions         *SessionStore
	settings         *SettingsService
	gateway          llm.Gateway
	notifier         Notifier
	logger           *zap.Logger
	simulatedLatency time.Duration
	gatewayTimeout   time.Duration
	sleep            func(ctx context.Context, d time.Duration) error
	generating       atomic.Int32
}

func NewChatOrchestrator(
	sessions *SessionStore,
	settings *SettingsService,
	gateway llm.Gateway,
	notifier Notifier,
	logger *zap.Logger,
	opts OrchestratorOptions,
) *ChatOrchestrator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SimulatedLatency < 0 {
		opts.SimulatedLatency = 0
	}
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = defaultGatewayTimeout
	}
	return &ChatOrchestrator{
		sessions:         sessions,
		settings:         settings,
		gateway:          gateway,
		notifier:         notifier,
		logger:           logger,
		simulatedLatency: opts.SimulatedLatency,
		gatewayTimeout:   opts.GatewayTimeout,
		sleep:            sleepContext,
	}
}

// IsGenerating es true mientras haya al menos una respuesta en preparación.
func (o *ChatOrchestrator) IsGenerating() bool {
	return o.generating.Load() > 0
}

// SendMessage agrega el mensaje del usuario y la respuesta del asistente a la sesión activa.
// Un contenido vacío sin adjuntos no produce efectos. Los errores del gateway no se
// devuelven: se convierten en el texto del asistente y en una notificación.
func (o *ChatOrchestrator) SendMessage(ctx context.Context, content string, attachments []domain.Attachment) (SendResult, error) {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return SendResult{}, nil
	}

	session := o.sessions.EnsureActive()
	originID := session.ID

	userMsg := domain.Message{
		Role:        domain.RoleUser,
		Content:     content,
		Attachments: attachments,
	}
	if userMsg.Attachments == nil {
		userMsg.Attachments = []domain.Attachment{}
	}
	session, err := o.sessions.AppendMessage(originID, userMsg)
	if err != nil {
		return SendResult{}, fmt.Errorf("append user message: %w", err)
	}
	userMsg = session.Messages[len(session.Messages)-1]

	o.generating.Add(1)
	defer o.generating.Add(-1)

	// La respuesta se completa aunque el llamador se vaya.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.gatewayTimeout)
	defer cancel()

	settings := o.settings.Get()
	route := llm.ResolveRoute(settings.SelectedModel, settings.APIKey)
	result := SendResult{SessionID: originID, UserMessage: userMsg}

	var reply string
	if route.IsLocal() {
		if err := o.sleep(callCtx, o.simulatedLatency); err != nil {
			o.logger.Debug("simulated latency interrupted", zap.Error(err))
		}
		reply = simulatedReply(content, attachments)
		result.Simulated = true
	} else {
		reply, err = o.gateway.Generate(callCtx, llm.GenerateRequest{
			Messages:     session.Messages,
			SystemPrompt: settings.Prompt,
			APIKey:       settings.APIKey,
			ModelID:      settings.SelectedModel,
			Temperature:  &settings.Temperature,
			MaxTokens:    settings.MaxTokens,
		})
		if err != nil {
			o.logger.Warn("gateway generate failed",
				zap.Error(err),
				zap.String("session_id", originID),
				zap.String("model", settings.SelectedModel),
			)
			reply = gatewayErrorText(err)
			result.GatewayFailed = true
			o.notifier.Notify(domain.Notification{
				Level:       domain.NotificationError,
				Title:       "Gemini request failed",
				Description: reply,
			})
		}
	}

	session, err = o.sessions.AppendMessage(originID, domain.Message{
		Role:        domain.RoleAssistant,
		Content:     reply,
		Attachments: []domain.Attachment{},
	})
	if err != nil {
		o.logger.Warn("assistant reply dropped", zap.Error(err), zap.String("session_id", originID))
		return result, fmt.Errorf("append assistant message: %w", err)
	}
	result.AssistantMessage = session.Messages[len(session.Messages)-1]
	return result, nil
}

func simulatedReply(content string, attachments []domain.Attachment) string {
	echo := strings.TrimSpace(content)
	if echo == "" {
		names := make([]string, 0, len(attachments))
		for _, a := range attachments {
			names = append(names, a.Name)
		}
		echo = "attachments: " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("This is a simulated response to: %q. To get real answers from Gemini, add your API key in System Configuration.", echo)
}

// gatewayErrorText traduce un error del gateway a un mensaje legible para el chat.
func gatewayErrorText(err error) string {
	var gwErr *domain.GatewayError
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return "Sorry, I can't reach Gemini because no API key is configured. Add your API key in System Configuration and try again."
	case errors.As(err, &gwErr):
		switch {
		case gwErr.StatusCode == http.StatusUnauthorized || gwErr.StatusCode == http.StatusForbidden:
			return fmt.Sprintf("Sorry, Gemini rejected the API key (status %d). Check your API key in System Configuration.", gwErr.StatusCode)
		case gwErr.StatusCode == http.StatusNotFound:
			return "Sorry, the selected model is not available (status 404). Choose a different model in System Configuration."
		case gwErr.StatusCode == http.StatusTooManyRequests:
			return "Sorry, the Gemini rate limit was reached (status 429). Wait a moment and try again."
		case gwErr.StatusCode >= 500:
			return fmt.Sprintf("Sorry, Gemini is temporarily unavailable (status %d). Please try again later.", gwErr.StatusCode)
		default:
			return fmt.Sprintf("Sorry, Gemini could not process the request (status %d).", gwErr.StatusCode)
		}
	case errors.Is(err, domain.ErrMalformedResponse):
		return "Sorry, Gemini returned an empty or unreadable response. Try rephrasing your message."
	case errors.Is(err, context.DeadlineExceeded):
		return "Sorry, Gemini did not respond in time. Please try again."
	default:
		return "Sorry, I couldn't reach Gemini right now. Check your connection and try again."
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
