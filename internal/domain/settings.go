package domain

import (
	"slices"
	"strings"
	"time"
)

const (
	DefaultSystemPrompt = "You are go:lofty, an AI assistant specialized in consulting. Provide helpful, accurate, and concise advice."
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 1024
	MaxPromptHistory    = 10
)

// SystemPromptSettings agrupa el prompt de sistema y los parámetros de generación.
type SystemPromptSettings struct {
	Prompt             string    `json:"prompt"`
	Temperature        float64   `json:"temperature"`
	MaxTokens          int       `json:"maxTokens"`
	AutoSave           bool      `json:"autoSave"`
	APIKey             string    `json:"apiKey,omitempty"`
	SelectedModel      string    `json:"selectedModel"`
	SelectedTemplateID string    `json:"selectedTemplateId,omitempty"`
	PromptHistory      []string  `json:"promptHistory"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

// DefaultSettings devuelve la configuración inicial para un usuario nuevo.
func DefaultSettings(model string) SystemPromptSettings {
	return SystemPromptSettings{
		Prompt:        DefaultSystemPrompt,
		Temperature:   DefaultTemperature,
		MaxTokens:     DefaultMaxTokens,
		SelectedModel: model,
		PromptHistory: []string{},
	}
}

// WithPrompt reemplaza el prompt empujando el anterior al frente del historial.
// Historial: sin duplicados (comparación exacta tras TrimSpace), máximo MaxPromptHistory.
func (s SystemPromptSettings) WithPrompt(prompt string, at time.Time) SystemPromptSettings {
	prev := strings.TrimSpace(s.Prompt)
	next := strings.TrimSpace(prompt)
	history := slices.Clone(s.PromptHistory)

	if prev != "" && prev != next {
		out := make([]string, 0, len(history)+1)
		out = append(out, prev)
		for _, h := range history {
			if strings.TrimSpace(h) == prev {
				continue
			}
			out = append(out, h)
		}
		history = out
	}
	if len(history) > MaxPromptHistory {
		history = history[:MaxPromptHistory]
	}
	if history == nil {
		history = []string{}
	}

	s.Prompt = prompt
	s.PromptHistory = history
	s.LastUpdated = at
	return s
}

// HasCredential indica si hay una API key configurada.
func (s SystemPromptSettings) HasCredential() bool {
	return strings.TrimSpace(s.APIKey) != ""
}
