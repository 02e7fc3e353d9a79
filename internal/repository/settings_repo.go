package repository

import (
	"context"

	"lofty-chat/internal/domain"
)

type SettingsRepository interface {
	Get(ctx context.Context) (domain.SystemPromptSettings, bool, error)
	Save(ctx context.Context, settings domain.SystemPromptSettings) error
}

type KVSettingsRepository struct {
	store KVStore
}

func NewKVSettingsRepository(store KVStore) *KVSettingsRepository {
	return &KVSettingsRepository{store: store}
}

func (r *KVSettingsRepository) Get(ctx context.Context) (domain.SystemPromptSettings, bool, error) {
	var settings domain.SystemPromptSettings
	ok, err := getJSON(ctx, r.store, KeySystemPrompt, &settings)
	if err != nil || !ok {
		return domain.SystemPromptSettings{}, false, err
	}
	return settings, true, nil
}

func (r *KVSettingsRepository) Save(ctx context.Context, settings domain.SystemPromptSettings) error {
	return setJSON(ctx, r.store, KeySystemPrompt, settings)
}
