package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Claves del almacenamiento local, compatibles con las del cliente web.
const (
	KeySessions        = "chatSessions"
	KeyActiveSessionID = "activeSessionId"
	KeyUserProfile     = "userProfile"
	KeySystemPrompt    = "systemPromptSettings"
)

// KVStore es el contrato del almacenamiento duradero: get/set de blobs de texto.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryKVStore guarda todo en memoria; útil para tests y para STORE_DRIVER=memory.
type MemoryKVStore struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{items: make(map[string]string)}
}

func (s *MemoryKVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryKVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func getJSON(ctx context.Context, store KVStore, key string, out any) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, store KVStore, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
