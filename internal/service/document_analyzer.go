package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"lofty-chat/internal/domain"
	"lofty-chat/internal/llm"
)

const (
	analysisTemperature = 0.2
	analysisMaxTokens   = 2048
	defaultReportURL    = "https://docs.google.com/document/d/1example-doc-id/edit"
)

// AnalyzerOptions ajusta el analizador. ReportURL y GatewayTimeout vacíos toman el default.
type AnalyzerOptions struct {
	ReportURL      string
	MockDelay      time.Duration
	GatewayTimeout time.Duration
}

// DocumentAnalyzer compara un documento contra la estrategia y la misión del usuario.
type DocumentAnalyzer struct {
	gateway        llm.Gateway
	settings       *SettingsService
	extractor      TextExtractor
	notifier       Notifier
	logger         *zap.Logger
	reportURL      string
	mockDelay      time.Duration
	gatewayTimeout time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
	randIntn       func(n int) int
}

func NewDocumentAnalyzer(
	gateway llm.Gateway,
	settings *SettingsService,
	extractor TextExtractor,
	notifier Notifier,
	logger *zap.Logger,
	opts AnalyzerOptions,
) *DocumentAnalyzer {
	if extractor == nil {
		extractor = PlainTextExtractor{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ReportURL == "" {
		opts.ReportURL = defaultReportURL
	}
	if opts.MockDelay < 0 {
		opts.MockDelay = 0
	}
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = defaultGatewayTimeout
	}
	return &DocumentAnalyzer{
		gateway:        gateway,
		settings:       settings,
		extractor:      extractor,
		notifier:       notifier,
		logger:         logger,
		reportURL:      opts.ReportURL,
		mockDelay:      opts.MockDelay,
		gatewayTimeout: opts.GatewayTimeout,
		sleep:          sleepContext,
		randIntn:       rand.IntN,
	}
}

// Analyze devuelve siempre un resultado salvo errores de validación: sin credencial o
// con el gateway caído se responde con un análisis simulado.
func (a *DocumentAnalyzer) Analyze(ctx context.Context, req domain.VerificationRequest) (domain.VerificationResult, error) {
	if err := validateVerificationRequest(req); err != nil {
		return domain.VerificationResult{}, err
	}

	settings := a.settings.Get()
	if !settings.HasCredential() {
		if err := a.sleep(ctx, a.mockDelay); err != nil {
			return domain.VerificationResult{}, fmt.Errorf("analysis canceled: %w", err)
		}
		return a.mockResult(), nil
	}

	text, err := a.extractor.ExtractText(req.Document)
	if err != nil {
		a.logger.Warn("document text extraction failed", zap.Error(err), zap.String("document", req.Document.Name))
		text = fmt.Sprintf("[Document content would be extracted from %s]", req.Document.Name)
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.gatewayTimeout)
	defer cancel()

	temperature := analysisTemperature
	raw, err := a.gateway.Generate(callCtx, llm.GenerateRequest{
		Messages: []domain.Message{{
			Role:    domain.RoleUser,
			Content: buildAlignmentPrompt(req, text),
		}},
		APIKey:      settings.APIKey,
		ModelID:     settings.SelectedModel,
		Temperature: &temperature,
		MaxTokens:   analysisMaxTokens,
	})
	if err != nil {
		a.logger.Warn("alignment analysis failed, using mock result",
			zap.Error(err),
			zap.String("document", req.Document.Name),
			zap.String("model", settings.SelectedModel),
		)
		a.notifier.Notify(domain.Notification{
			Level:       domain.NotificationWarning,
			Title:       "Document analysis unavailable",
			Description: "Gemini could not analyze the document; showing an estimated result instead.",
		})
		return a.mockResult(), nil
	}

	res := ParseVerification(raw, a.randIntn)
	res.ReportURL = a.reportURL
	return res, nil
}

func (a *DocumentAnalyzer) mockResult() domain.VerificationResult {
	return domain.VerificationResult{
		AlignmentScore:  fallbackScore(a.randIntn),
		Summary:         "The document generally aligns with your business strategy and mission, with a few areas that could be strengthened.",
		KeyPoints:       append([]domain.KeyPoint(nil), fallbackKeyPoints...),
		Recommendations: append([]string(nil), fallbackRecommendations...),
		ReportURL:       a.reportURL,
	}
}

func validateVerificationRequest(req domain.VerificationRequest) error {
	if strings.TrimSpace(req.Document.Name) == "" {
		return domain.ValidationError("document", "is required")
	}
	if strings.TrimSpace(req.BusinessStrategy) == "" {
		return domain.ValidationError("businessStrategy", "is required")
	}
	if strings.TrimSpace(req.MissionVision) == "" {
		return domain.ValidationError("missionVision", "is required")
	}
	return nil
}

func buildAlignmentPrompt(req domain.VerificationRequest, documentText string) string {
	var b strings.Builder
	b.WriteString("You are an expert business consultant. Analyze how well the following document aligns ")
	b.WriteString("with the company's business strategy and mission/vision.\n\n")
	b.WriteString("BUSINESS STRATEGY:\n")
	b.WriteString(strings.TrimSpace(req.BusinessStrategy))
	b.WriteString("\n\nMISSION AND VISION:\n")
	b.WriteString(strings.TrimSpace(req.MissionVision))
	b.WriteString("\n\nDOCUMENT (")
	b.WriteString(req.Document.Name)
	b.WriteString("):\n")
	b.WriteString(strings.TrimSpace(documentText))
	b.WriteString(`

Respond using exactly this format:
Alignment Score: <number between 0 and 100>
Summary:
<one or two sentences>
Key Points:
• <point where the document aligns, or state that it does not align>
Recommendations:
• <concrete recommendation>`)
	return b.String()
}
