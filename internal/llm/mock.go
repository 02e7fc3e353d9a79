package llm

import (
	"context"
	"sync"

	"lofty-chat/internal/domain"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response     string
	Err          error
	CredentialOK bool

	mu    sync.Mutex
	Calls []GenerateRequest
}

func (m *MockClient) Generate(_ context.Context, req GenerateRequest) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()
	return m.Response, m.Err
}

func (m *MockClient) TestCredential(_ context.Context, apiKey string) bool {
	return apiKey != "" && m.CredentialOK
}

func (m *MockClient) ListModels(hasCredential bool) []domain.ModelOption {
	return Catalog(hasCredential)
}

// CallCount devuelve cuántas veces se llamó a Generate.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
