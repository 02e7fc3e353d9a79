package repository

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"lofty-chat/internal/db"
	"lofty-chat/internal/domain"
)

func openTestSQLite(t *testing.T) *SQLiteKVStore {
	t.Helper()
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "lofty.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.Migrate(ctx, sqlDB, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteKVStore(sqlDB)
}

func TestKVStoresGetSet(t *testing.T) {
	stores := map[string]KVStore{
		"memory": NewMemoryKVStore(),
		"sqlite": openTestSQLite(t),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("missing key: ok=%v err=%v", ok, err)
			}
			if err := store.Set(ctx, KeyActiveSessionID, `"a"`); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, KeyActiveSessionID, `"b"`); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, ok, err := store.Get(ctx, KeyActiveSessionID)
			if err != nil || !ok || got != `"b"` {
				t.Fatalf("get: %q ok=%v err=%v", got, ok, err)
			}
		})
	}
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	created := time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC)
	sessions := []domain.Session{
		{
			ID:    "s1",
			Title: "Pricing strategy",
			Messages: []domain.Message{
				{
					ID:      "m1",
					Role:    domain.RoleUser,
					Content: "Review this",
					Attachments: []domain.Attachment{
						{Name: "deck.pdf", MimeType: "application/pdf", SizeBytes: 2048},
					},
					CreatedAt: created,
				},
				{ID: "m2", Role: domain.RoleAssistant, Content: "Done", Attachments: []domain.Attachment{}, CreatedAt: created.Add(time.Second)},
			},
			CreatedAt: created,
			UpdatedAt: created.Add(time.Second),
		},
		{ID: "s2", Title: "New chat 2", Messages: []domain.Message{}, CreatedAt: created, UpdatedAt: created},
	}

	for name, store := range map[string]KVStore{"memory": NewMemoryKVStore(), "sqlite": openTestSQLite(t)} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewKVSessionRepository(store)
			if err := repo.Save(ctx, sessions, "s2"); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, activeID, err := repo.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if activeID != "s2" {
				t.Fatalf("unexpected active id %q", activeID)
			}
			if !reflect.DeepEqual(got, sessions) {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, sessions)
			}
		})
	}
}

func TestSessionRepositoryEmptyStore(t *testing.T) {
	repo := NewKVSessionRepository(NewMemoryKVStore())
	sessions, activeID, err := repo.Load(context.Background())
	if err != nil || len(sessions) != 0 || activeID != "" {
		t.Fatalf("empty load: %v %q %v", sessions, activeID, err)
	}
}

func TestSessionRepositoryCorruptValue(t *testing.T) {
	store := NewMemoryKVStore()
	_ = store.Set(context.Background(), KeySessions, "{not json")
	if _, _, err := NewKVSessionRepository(store).Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSettingsAndProfileRepositories(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryKVStore()

	settingsRepo := NewKVSettingsRepository(store)
	if _, ok, err := settingsRepo.Get(ctx); ok || err != nil {
		t.Fatalf("expected no settings: ok=%v err=%v", ok, err)
	}
	want := domain.DefaultSettings("gemini-2.0-flash")
	want.PromptHistory = []string{"old"}
	if err := settingsRepo.Save(ctx, want); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	got, ok, err := settingsRepo.Get(ctx)
	if err != nil || !ok || got.Prompt != want.Prompt || got.PromptHistory[0] != "old" {
		t.Fatalf("settings round trip: %+v ok=%v err=%v", got, ok, err)
	}

	profileRepo := NewKVProfileRepository(store)
	if err := profileRepo.Save(ctx, domain.UserProfile{Name: "Ana", DarkMode: true}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	profile, ok, err := profileRepo.Get(ctx)
	if err != nil || !ok || profile.Name != "Ana" || !profile.DarkMode {
		t.Fatalf("profile round trip: %+v ok=%v err=%v", profile, ok, err)
	}
}

type fakeRedisClient struct {
	data   map[string]string
	getErr error
}

func (f *fakeRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.getErr != nil {
		cmd.SetErr(f.getErr)
		return cmd
	}
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedisClient) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	f.data[key] = value.(string)
	cmd.SetVal("OK")
	return cmd
}

func TestRedisKVStore(t *testing.T) {
	ctx := context.Background()
	client := &fakeRedisClient{data: map[string]string{}}
	store := newRedisKVStore(client)

	if _, ok, err := store.Get(ctx, KeyUserProfile); ok || err != nil {
		t.Fatalf("redis.Nil should map to not found: ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, KeyUserProfile, `{"name":"Ana"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := client.data["lofty:kv:"+KeyUserProfile]; !ok {
		t.Fatalf("expected prefixed key, got %v", client.data)
	}
	got, ok, err := store.Get(ctx, KeyUserProfile)
	if err != nil || !ok || got != `{"name":"Ana"}` {
		t.Fatalf("get: %q ok=%v err=%v", got, ok, err)
	}

	client.getErr = errors.New("connection reset")
	if _, _, err := store.Get(ctx, KeyUserProfile); err == nil {
		t.Fatalf("expected transport error")
	}
}
