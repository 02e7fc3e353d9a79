package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lofty-chat/internal/domain"
	"lofty-chat/internal/llm"
	"lofty-chat/internal/repository"
	"lofty-chat/internal/service"
)

type testApp struct {
	router   *gin.Engine
	sessions *service.SessionStore
	settings *service.SettingsService
	gateway  *llm.MockClient
}

func setupRouter(t *testing.T) testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	logger := zap.NewNop()
	kv := repository.NewMemoryKVStore()

	sessions := service.NewSessionStore(repository.NewKVSessionRepository(kv), logger)
	if err := sessions.Load(ctx); err != nil {
		t.Fatalf("load sessions: %v", err)
	}
	settings := service.NewSettingsService(repository.NewKVSettingsRepository(kv), nil, logger, llm.DefaultModelID)
	profiles := service.NewProfileService(repository.NewKVProfileRepository(kv), logger)
	gateway := &llm.MockClient{Response: "Alignment score: 82. • Point A aligns well. Recommendation: • Do X.", CredentialOK: true}
	feed := service.NewNotificationFeed()

	orch := service.NewChatOrchestrator(sessions, settings, gateway, feed, logger, service.OrchestratorOptions{})
	analyzer := service.NewDocumentAnalyzer(gateway, settings, nil, feed, logger, service.AnalyzerOptions{})

	router := NewRouter(logger,
		NewChatHandler(logger, sessions, orch, feed),
		NewSettingsHandler(logger, settings, profiles, gateway),
		NewDocumentHandler(logger, analyzer),
	)
	return testApp{router: router, sessions: sessions, settings: settings, gateway: gateway}
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSessionsLifecycle(t *testing.T) {
	app := setupRouter(t)

	rec := performRequest(app.router, http.MethodPost, "/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	var created struct {
		Session domain.Session `json:"session"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = performRequest(app.router, http.MethodPatch, "/sessions/"+created.Session.ID, map[string]string{"title": "Roadmap"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename: expected 200, got %d", rec.Code)
	}
	rec = performRequest(app.router, http.MethodPatch, "/sessions/"+created.Session.ID, map[string]string{"title": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty rename: expected 400, got %d", rec.Code)
	}

	rec = performRequest(app.router, http.MethodPut, "/sessions/missing/select", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("select unknown: expected 404, got %d", rec.Code)
	}

	rec = performRequest(app.router, http.MethodGet, "/sessions", nil)
	var listed struct {
		Sessions        []domain.Session `json:"sessions"`
		ActiveSessionID string           `json:"activeSessionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Sessions) != 2 || listed.ActiveSessionID != created.Session.ID {
		t.Fatalf("unexpected list %+v", listed)
	}

	rec = performRequest(app.router, http.MethodDelete, "/sessions/"+created.Session.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if len(app.sessions.List()) != 1 {
		t.Fatalf("expected one session left")
	}

	rec = performRequest(app.router, http.MethodGet, "/sessions/export", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get("Content-Disposition"), "chat-history.json") {
		t.Fatalf("export: %d %v", rec.Code, rec.Header())
	}
}

func TestPostMessage(t *testing.T) {
	app := setupRouter(t)

	rec := performRequest(app.router, http.MethodPost, "/messages", map[string]string{"content": "  "})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("empty message: expected 204, got %d", rec.Code)
	}

	rec = performRequest(app.router, http.MethodPost, "/messages", map[string]string{"content": "hello"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var res service.SendResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Simulated || res.AssistantMessage.Role != domain.RoleAssistant {
		t.Fatalf("expected simulated assistant reply, got %+v", res)
	}
	if app.gateway.CallCount() != 0 {
		t.Fatalf("gateway must not be called without api key")
	}

	rec = performRequest(app.router, http.MethodGet, "/status", nil)
	if !strings.Contains(rec.Body.String(), `"isGenerating":false`) {
		t.Fatalf("unexpected status body %s", rec.Body.String())
	}
}

func TestSettingsEndpoints(t *testing.T) {
	app := setupRouter(t)

	rec := performRequest(app.router, http.MethodPut, "/settings", map[string]any{"temperature": 3})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid temperature: expected 400, got %d", rec.Code)
	}

	rec = performRequest(app.router, http.MethodPut, "/settings", map[string]any{"apiKey": "AIza-12345678"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "AIza-12345678") {
		t.Fatalf("api key must be masked: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"hasApiKey":true`) {
		t.Fatalf("expected hasApiKey true: %s", rec.Body.String())
	}

	rec = performRequest(app.router, http.MethodPost, "/settings/template", map[string]string{"templateId": "unknown"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown template: expected 404, got %d", rec.Code)
	}

	rec = performRequest(app.router, http.MethodPost, "/credentials/test", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"valid":true`) {
		t.Fatalf("stored key should test valid: %d %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(app.router, http.MethodGet, "/models", nil)
	var models struct {
		Models []domain.ModelOption `json:"models"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &models); err != nil {
		t.Fatalf("decode models: %v", err)
	}
	if len(models.Models) == 0 || models.Models[0].Disabled {
		t.Fatalf("models should be enabled with a key: %+v", models.Models)
	}

	rec = performRequest(app.router, http.MethodPost, "/prompts/validate", map[string]string{"prompt": "short"})
	if !strings.Contains(rec.Body.String(), "too short") {
		t.Fatalf("unexpected validation body %s", rec.Body.String())
	}

	rec = performRequest(app.router, http.MethodPatch, "/profile", map[string]string{"name": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty profile name: expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeDocumentUpload(t *testing.T) {
	app := setupRouter(t)
	key := "AIza-test"
	if _, err := app.settings.Update(context.Background(), service.SettingsUpdate{APIKey: &key}); err != nil {
		t.Fatalf("set key: %v", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("document", "plan.txt")
	_, _ = part.Write([]byte("Expand premium consulting."))
	_ = mw.WriteField("businessStrategy", "Grow premium revenue")
	_ = mw.WriteField("missionVision", "Expert advice for everyone")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/documents/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Result domain.VerificationResult `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Result.AlignmentScore != 82 || body.Result.ReportURL == "" {
		t.Fatalf("unexpected result %+v", body.Result)
	}

	rec = performRequest(app.router, http.MethodPost, "/documents/analyze", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing document: expected 400, got %d", rec.Code)
	}
}
