package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"lofty-chat/internal/domain"
	"lofty-chat/internal/repository"
)

func TestProfileDefaultsAndPartialUpdate(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKVStore()
	svc := NewProfileService(repository.NewKVProfileRepository(kv), zap.NewNop())
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if svc.Get().Name != "User Name" {
		t.Fatalf("unexpected default name %q", svc.Get().Name)
	}

	dark := true
	got, err := svc.Update(ctx, ProfileUpdate{Name: strPtr(" Ana "), DarkMode: &dark})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Ana" || !got.DarkMode || got.Email != "user@example.com" {
		t.Fatalf("partial update went wrong: %+v", got)
	}

	reloaded := NewProfileService(repository.NewKVProfileRepository(kv), zap.NewNop())
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Get().Name != "Ana" {
		t.Fatalf("profile not persisted: %+v", reloaded.Get())
	}
}

func TestProfileRejectsEmptyName(t *testing.T) {
	svc := NewProfileService(nil, zap.NewNop())
	if _, err := svc.Update(context.Background(), ProfileUpdate{Name: strPtr("")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
