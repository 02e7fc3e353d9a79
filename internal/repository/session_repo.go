package repository

import (
	"context"

	"lofty-chat/internal/domain"
)

// SessionRepository persiste la lista completa de sesiones y el puntero a la activa.
type SessionRepository interface {
	Load(ctx context.Context) ([]domain.Session, string, error)
	Save(ctx context.Context, sessions []domain.Session, activeID string) error
}

type KVSessionRepository struct {
	store KVStore
}

func NewKVSessionRepository(store KVStore) *KVSessionRepository {
	return &KVSessionRepository{store: store}
}

func (r *KVSessionRepository) Load(ctx context.Context) ([]domain.Session, string, error) {
	var sessions []domain.Session
	if _, err := getJSON(ctx, r.store, KeySessions, &sessions); err != nil {
		return nil, "", err
	}
	var activeID string
	if _, err := getJSON(ctx, r.store, KeyActiveSessionID, &activeID); err != nil {
		return nil, "", err
	}
	for i := range sessions {
		if sessions[i].Messages == nil {
			sessions[i].Messages = []domain.Message{}
		}
	}
	return sessions, activeID, nil
}

func (r *KVSessionRepository) Save(ctx context.Context, sessions []domain.Session, activeID string) error {
	if sessions == nil {
		sessions = []domain.Session{}
	}
	if err := setJSON(ctx, r.store, KeySessions, sessions); err != nil {
		return err
	}
	return setJSON(ctx, r.store, KeyActiveSessionID, activeID)
}
