package llm

import (
	"slices"
	"strings"

	"lofty-chat/internal/domain"
)

const DefaultModelID = "gemini-2.0-flash"

const (
	apiVersionV1     = "v1"
	apiVersionV1Beta = "v1beta"
)

// defaultRemote se usa para cualquier id que no esté en la tabla: la UI puede
// ofrecer nombres de modelo que todavía no tienen equivalente en la API.
var defaultRemote = domain.RemoteModel{APIModel: "gemini-2.0-flash", APIVersion: apiVersionV1Beta}

var remoteModels = map[string]domain.RemoteModel{
	"gemini-2.0-flash":          {APIModel: "gemini-2.0-flash", APIVersion: apiVersionV1Beta},
	"gemini-2.0-flash-thinking": {APIModel: "gemini-2.0-flash-thinking-exp", APIVersion: apiVersionV1Beta},
	"gemini-2.5-pro":            {APIModel: "gemini-2.5-pro", APIVersion: apiVersionV1Beta},
	"gemini-deep-research":      {APIModel: "gemini-2.5-pro", APIVersion: apiVersionV1Beta},
	"gemini-personalization":    {APIModel: "gemini-2.0-flash", APIVersion: apiVersionV1Beta},
	"gemini-1.5-pro":            {APIModel: "gemini-1.5-pro", APIVersion: apiVersionV1},
	"gemini-1.5-flash":          {APIModel: "gemini-1.5-flash", APIVersion: apiVersionV1},
}

var catalog = []domain.ModelOption{
	{
		ID:                  "gemini-2.0-flash",
		DisplayName:         "Gemini 2.0 Flash",
		Description:         "Get everyday help",
		Capabilities:        []string{"text", "multimodal", "fast responses"},
		ContextWindowTokens: 1_048_576,
	},
	{
		ID:                  "gemini-2.0-flash-thinking",
		DisplayName:         "Gemini 2.0 Flash Thinking (experimental)",
		Description:         "Uses advanced reasoning",
		Capabilities:        []string{"text", "reasoning"},
		ContextWindowTokens: 32_768,
	},
	{
		ID:                  "gemini-deep-research",
		DisplayName:         "Deep Research",
		Description:         "Get in-depth research reports",
		Capabilities:        []string{"text", "research", "long context"},
		ContextWindowTokens: 1_048_576,
	},
	{
		ID:                  "gemini-personalization",
		DisplayName:         "Personalization (experimental)",
		Description:         "Help based on your Search history",
		Capabilities:        []string{"text", "personalization"},
		ContextWindowTokens: 32_768,
	},
	{
		ID:                  "gemini-2.5-pro",
		DisplayName:         "Gemini 2.5 Pro (experimental)",
		Description:         "Best for complex tasks",
		Capabilities:        []string{"text", "reasoning", "code", "multimodal"},
		ContextWindowTokens: 1_048_576,
	},
	{
		ID:                  "gemini-1.5-pro",
		DisplayName:         "Gemini 1.5 Pro",
		Description:         "Long-context analysis of documents",
		Capabilities:        []string{"text", "multimodal", "long context"},
		ContextWindowTokens: 2_097_152,
	},
}

// RemoteModelFor traduce un id lógico al par modelo/versión de la API. Nunca falla.
func RemoteModelFor(modelID string) domain.RemoteModel {
	if m, ok := remoteModels[strings.TrimSpace(modelID)]; ok {
		return m
	}
	return defaultRemote
}

// ResolveRoute decide una sola vez por llamada si la respuesta es simulada o remota.
// Sin credencial la ruta es siempre local.
func ResolveRoute(modelID, apiKey string) domain.ModelRoute {
	if strings.TrimSpace(apiKey) == "" {
		return domain.ModelRoute{Kind: domain.RouteLocal, ModelID: modelID}
	}
	remote := RemoteModelFor(modelID)
	return domain.ModelRoute{Kind: domain.RouteRemote, ModelID: modelID, Remote: &remote}
}

// Catalog devuelve una copia del catálogo estático; sin credencial todos quedan deshabilitados.
func Catalog(hasCredential bool) []domain.ModelOption {
	out := make([]domain.ModelOption, len(catalog))
	for i, m := range catalog {
		m.Capabilities = slices.Clone(m.Capabilities)
		m.Disabled = !hasCredential
		out[i] = m
	}
	return out
}

// IsKnownModel indica si el id figura en el catálogo o en la tabla de ruteo.
func IsKnownModel(modelID string) bool {
	if _, ok := remoteModels[modelID]; ok {
		return true
	}
	return slices.ContainsFunc(catalog, func(m domain.ModelOption) bool { return m.ID == modelID })
}
