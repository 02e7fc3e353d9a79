package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"lofty-chat/internal/domain"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultTimeout     = 45 * time.Second
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
	defaultTopP        = 0.95
	defaultTopK        = 40
	maxLoggedBody      = 512
)

// GenerateRequest es una conversación lógica lista para enviar al modelo.
// Temperature nil significa "usar el default".
type GenerateRequest struct {
	Messages     []domain.Message
	SystemPrompt string
	APIKey       string
	ModelID      string
	Temperature  *float64
	MaxTokens    int
}

// Gateway define la interfaz hacia la API de completions. No guarda estado entre llamadas
// y no reintenta: la política de reintentos es del llamador.
type Gateway interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	TestCredential(ctx context.Context, apiKey string) bool
	ListModels(hasCredential bool) []domain.ModelOption
}

// GeminiClient implementa Gateway contra la API generateContent de Gemini.
type GeminiClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewGeminiClient construye un cliente HTTP con timeout acotado.
func NewGeminiClient(baseURL string, timeout time.Duration, logger *zap.Logger) *GeminiClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *GeminiClient) Generate(ctx context.Context, in GenerateRequest) (string, error) {
	apiKey := strings.TrimSpace(in.APIKey)
	if apiKey == "" {
		return "", domain.ErrMissingCredential
	}

	remote := RemoteModelFor(in.ModelID)
	reqBody := buildRequest(in)

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		c.baseURL, remote.APIVersion, remote.APIModel, url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("gemini generate",
		zap.String("model_id", in.ModelID),
		zap.String("api_model", remote.APIModel),
		zap.String("api_version", remote.APIVersion),
		zap.Int("messages", len(in.Messages)),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", redactKey(err, apiKey))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("gemini error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(respBody), maxLoggedBody)),
		)
		return "", &domain.GatewayError{StatusCode: resp.StatusCode, RawBody: string(respBody)}
	}

	return extractText(respBody)
}

// TestCredential hace una llamada liviana al listado de modelos. Nunca devuelve error.
func (c *GeminiClient) TestCredential(ctx context.Context, apiKey string) bool {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return false
	}
	endpoint := fmt.Sprintf("%s/%s/models?key=%s", c.baseURL, apiVersionV1Beta, url.QueryEscape(apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Info("credential test failed", zap.Error(redactKey(err, apiKey)))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Info("credential test rejected", zap.Int("status", resp.StatusCode))
		return false
	}

	var listed struct {
		Models []json.RawMessage `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		return false
	}
	return len(listed.Models) > 0
}

func (c *GeminiClient) ListModels(hasCredential bool) []domain.ModelOption {
	return Catalog(hasCredential)
}

func buildRequest(in GenerateRequest) geminiRequest {
	temperature := defaultTemperature
	if in.Temperature != nil {
		temperature = *in.Temperature
	}
	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	req := geminiRequest{
		Contents: formatMessages(in.Messages),
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
			TopP:            defaultTopP,
			TopK:            defaultTopK,
		},
		SafetySettings: defaultSafetySettings(),
	}
	if prompt := strings.TrimSpace(in.SystemPrompt); prompt != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: prompt}}}
	}
	return req
}

// formatMessages convierte el historial al formato de Gemini (assistant -> model).
// Los adjuntos viajan como una línea de metadatos, nunca con su contenido.
func formatMessages(messages []domain.Message) []geminiContent {
	out := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == domain.RoleAssistant {
			role = "model"
		}
		text := m.Content
		if len(m.Attachments) > 0 {
			names := make([]string, 0, len(m.Attachments))
			for _, a := range m.Attachments {
				names = append(names, fmt.Sprintf("%s (%s, %d bytes)", a.Name, a.MimeType, a.SizeBytes))
			}
			note := "[Attachments: " + strings.Join(names, "; ") + "]"
			if strings.TrimSpace(text) == "" {
				text = note
			} else {
				text = text + "\n\n" + note
			}
		}
		out = append(out, geminiContent{Role: role, Parts: []geminiPart{{Text: text}}})
	}
	return out
}

func extractText(body []byte) (string, error) {
	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", domain.ErrMalformedResponse)
	}
	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty candidate text", domain.ErrMalformedResponse)
	}
	return text, nil
}

func defaultSafetySettings() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	out := make([]safetySetting, 0, len(categories))
	for _, c := range categories {
		out = append(out, safetySetting{Category: c, Threshold: "BLOCK_MEDIUM_AND_ABOVE"})
	}
	return out
}

// redactKey evita que la API key termine en los logs a través de *url.Error.
// Conserva la cadena de errores (p.ej. context.DeadlineExceeded).
func redactKey(err error, apiKey string) error {
	if err == nil || apiKey == "" {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(apiKey), "REDACTED")
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}
