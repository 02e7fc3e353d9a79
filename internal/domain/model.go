package domain

// ModelOption describe una entrada del catálogo de modelos; no se persiste.
type ModelOption struct {
	ID                  string   `json:"id"`
	DisplayName         string   `json:"displayName"`
	Description         string   `json:"description"`
	Capabilities        []string `json:"capabilities"`
	ContextWindowTokens int      `json:"contextWindowTokens"`
	Disabled            bool     `json:"disabled"`
}

// RouteKind distingue respuestas simuladas localmente de llamadas a la API remota.
type RouteKind int

const (
	RouteLocal RouteKind = iota
	RouteRemote
)

// RemoteModel es el par modelo/versión que entiende la API de Gemini.
type RemoteModel struct {
	APIModel   string
	APIVersion string
}

// ModelRoute se resuelve una vez por llamada. Remote solo está presente cuando Kind == RouteRemote.
type ModelRoute struct {
	Kind    RouteKind
	ModelID string
	Remote  *RemoteModel
}

func (r ModelRoute) IsLocal() bool {
	return r.Kind == RouteLocal
}
