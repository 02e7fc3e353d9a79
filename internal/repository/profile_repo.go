package repository

import (
	"context"

	"lofty-chat/internal/domain"
)

type ProfileRepository interface {
	Get(ctx context.Context) (domain.UserProfile, bool, error)
	Save(ctx context.Context, profile domain.UserProfile) error
}

type KVProfileRepository struct {
	store KVStore
}

func NewKVProfileRepository(store KVStore) *KVProfileRepository {
	return &KVProfileRepository{store: store}
}

func (r *KVProfileRepository) Get(ctx context.Context) (domain.UserProfile, bool, error) {
	var profile domain.UserProfile
	ok, err := getJSON(ctx, r.store, KeyUserProfile, &profile)
	if err != nil || !ok {
		return domain.UserProfile{}, false, err
	}
	return profile, true, nil
}

func (r *KVProfileRepository) Save(ctx context.Context, profile domain.UserProfile) error {
	return setJSON(ctx, r.store, KeyUserProfile, profile)
}
