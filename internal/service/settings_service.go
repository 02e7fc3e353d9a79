package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"lofty-chat/internal/domain"
	"lofty-chat/internal/llm"
	"lofty-chat/internal/repository"
)

// SettingsUpdate es una actualización parcial: los campos nil no se tocan.
type SettingsUpdate struct {
	Prompt             *string  `json:"prompt"`
	Temperature        *float64 `json:"temperature"`
	MaxTokens          *int     `json:"maxTokens"`
	AutoSave           *bool    `json:"autoSave"`
	APIKey             *string  `json:"apiKey"`
	SelectedModel      *string  `json:"selectedModel"`
	SelectedTemplateID *string  `json:"selectedTemplateId"`
}

// SettingsService mantiene SystemPromptSettings en memoria y lo escribe al repositorio.
type SettingsService struct {
	mu           sync.Mutex
	repo         repository.SettingsRepository
	sealer       SecretSealer
	logger       *zap.Logger
	now          func() time.Time
	defaultModel string
	settings     domain.SystemPromptSettings
}

func NewSettingsService(repo repository.SettingsRepository, sealer SecretSealer, logger *zap.Logger, defaultModel string) *SettingsService {
	if sealer == nil {
		sealer = PlainSealer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{
		repo:         repo,
		sealer:       sealer,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		defaultModel: defaultModel,
		settings:     domain.DefaultSettings(defaultModel),
	}
}

func (s *SettingsService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return nil
	}
	stored, ok, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !ok {
		return nil
	}

	apiKey, err := s.sealer.Open(stored.APIKey)
	if err != nil {
		s.logger.Warn("stored api key could not be opened, clearing it", zap.Error(err))
		apiKey = ""
	}
	stored.APIKey = apiKey
	if stored.PromptHistory == nil {
		stored.PromptHistory = []string{}
	}
	if strings.TrimSpace(stored.SelectedModel) == "" {
		stored.SelectedModel = s.defaultModel
	}
	if stored.MaxTokens <= 0 {
		stored.MaxTokens = domain.DefaultMaxTokens
	}
	s.settings = stored
	return nil
}

// Get devuelve una copia; el historial no comparte memoria con el estado interno.
func (s *SettingsService) Get() domain.SystemPromptSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.settings
	out.PromptHistory = slices.Clone(s.settings.PromptHistory)
	return out
}

func (s *SettingsService) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.HasCredential()
}

func (s *SettingsService) Update(ctx context.Context, u SettingsUpdate) (domain.SystemPromptSettings, error) {
	if err := validateSettingsUpdate(u); err != nil {
		return domain.SystemPromptSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := s.settings
	if u.Prompt != nil && *u.Prompt != next.Prompt {
		next = next.WithPrompt(*u.Prompt, now)
	}
	if u.Temperature != nil {
		next.Temperature = *u.Temperature
	}
	if u.MaxTokens != nil {
		next.MaxTokens = *u.MaxTokens
	}
	if u.AutoSave != nil {
		next.AutoSave = *u.AutoSave
	}
	if u.APIKey != nil {
		next.APIKey = strings.TrimSpace(*u.APIKey)
	}
	if u.SelectedModel != nil {
		next.SelectedModel = strings.TrimSpace(*u.SelectedModel)
	}
	if u.SelectedTemplateID != nil {
		next.SelectedTemplateID = strings.TrimSpace(*u.SelectedTemplateID)
	}
	next.LastUpdated = now
	s.settings = next

	s.persistLocked(ctx)
	out := next
	out.PromptHistory = slices.Clone(next.PromptHistory)
	return out, nil
}

// ApplyTemplate copia el texto de una plantilla al prompt y recuerda cuál se eligió.
func (s *SettingsService) ApplyTemplate(ctx context.Context, templateID string) (domain.SystemPromptSettings, error) {
	tpl, err := TemplateByID(templateID)
	if err != nil {
		return domain.SystemPromptSettings{}, err
	}
	return s.Update(ctx, SettingsUpdate{
		Prompt:             &tpl.Template,
		SelectedTemplateID: &tpl.ID,
	})
}

func (s *SettingsService) persistLocked(ctx context.Context) {
	if s.repo == nil {
		return
	}
	stored := s.settings
	sealed, err := s.sealer.Seal(stored.APIKey)
	if err != nil {
		s.logger.Warn("seal api key failed, settings not persisted", zap.Error(err))
		return
	}
	stored.APIKey = sealed

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := s.repo.Save(ctx, stored); err != nil {
		s.logger.Warn("persist settings failed", zap.Error(err))
	}
}

func validateSettingsUpdate(u SettingsUpdate) error {
	if u.Temperature != nil && (*u.Temperature < 0 || *u.Temperature > 1) {
		return domain.ValidationError("temperature", "must be between 0 and 1")
	}
	if u.MaxTokens != nil && *u.MaxTokens <= 0 {
		return domain.ValidationError("maxTokens", "must be positive")
	}
	if u.SelectedModel != nil {
		model := strings.TrimSpace(*u.SelectedModel)
		if model == "" {
			return domain.ValidationError("selectedModel", "is required")
		}
		if !llm.IsKnownModel(model) {
			return domain.ValidationError("selectedModel", "unknown model "+model)
		}
	}
	return nil
}
