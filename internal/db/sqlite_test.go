package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/javiermolinar/shcadule/internal/store"
)

func TestGet_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), store.BoardPath("u1", "2025-W10"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected %v, got %v", store.ErrNotFound, err)
	}
}

func TestSetAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	path := store.BoardPath("u1", "2025-W10")

	if err := repo.Set(ctx, path, []byte(`{"weekId":"2025-W10","timeSlots":[]}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := repo.Get(ctx, path)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if id := gjson.GetBytes(got, "weekId").String(); id != "2025-W10" {
		t.Errorf("weekId = %q, want 2025-W10", id)
	}
}

func TestSet_Overwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	path := store.UserPath("u1")

	if err := repo.Set(ctx, path, []byte(`{"profile":{"plan":"free"},"legacy":true}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Set(ctx, path, []byte(`{"profile":{"plan":"pro"}}`)); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}

	got, _ := repo.Get(ctx, path)
	if plan := gjson.GetBytes(got, "profile.plan").String(); plan != "pro" {
		t.Errorf("plan = %q, want pro", plan)
	}
	if gjson.GetBytes(got, "legacy").Exists() {
		t.Error("Set should replace the whole document")
	}
}

func TestSet_Invalid(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Set(ctx, store.UserPath("u1"), []byte(`not json`)); !errors.Is(err, store.ErrInvalidDocument) {
		t.Errorf("invalid JSON: expected %v, got %v", store.ErrInvalidDocument, err)
	}
	if err := repo.Set(ctx, store.UserPath(""), []byte(`{}`)); !errors.Is(err, store.ErrInvalidPath) {
		t.Errorf("empty user: expected %v, got %v", store.ErrInvalidPath, err)
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	path := store.UserPath("u1")

	if err := repo.Set(ctx, path, []byte(`{"profile":{"plan":"free","pendingPlan":"ai"}}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	err := repo.Update(ctx, path, map[string]any{
		"profile.plan":               "ai",
		"profile.pendingPlan":        nil,
		"profile.subscriptionStatus": "active",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := repo.Get(ctx, path)
	if plan := gjson.GetBytes(got, "profile.plan").String(); plan != "ai" {
		t.Errorf("plan = %q, want ai", plan)
	}
	if status := gjson.GetBytes(got, "profile.subscriptionStatus").String(); status != "active" {
		t.Errorf("status = %q, want active", status)
	}
	if pending := gjson.GetBytes(got, "profile.pendingPlan"); pending.Type != gjson.Null {
		t.Errorf("pendingPlan = %v, want null", pending)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Update(context.Background(), store.UserPath("ghost"), map[string]any{"profile.plan": "pro"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected %v, got %v", store.ErrNotFound, err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	path := store.Join("users", "u1", "goals", "g1")

	if err := repo.Set(ctx, path, []byte(`{"title":"Run a 10k"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Delete(ctx, path); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, path); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get after Delete = %v, want %v", err, store.ErrNotFound)
	}
	if err := repo.Delete(ctx, path); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete = %v, want %v", err, store.ErrNotFound)
	}
}

func TestList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	docs := []struct {
		path store.Path
		data string
	}{
		{store.UserPath("u2"), `{"profile":{"subscriptionStatus":"active"}}`},
		{store.UserPath("u1"), `{"profile":{"subscriptionStatus":"active"}}`},
		{store.UserPath("u3"), `{"profile":{"subscriptionStatus":"pending"}}`},
		{store.BoardPath("u1", "2025-W10"), `{"weekId":"2025-W10"}`},
		{store.BoardPath("u1", "2025-W11"), `{"weekId":"2025-W11"}`},
	}
	for _, d := range docs {
		if err := repo.Set(ctx, d.path, []byte(d.data)); err != nil {
			t.Fatalf("Set(%s) failed: %v", d.path, err)
		}
	}

	tests := []struct {
		name       string
		collection store.Path
		filters    []store.Filter
		want       []store.Path
	}{
		{
			name:       "users only, not nested boards",
			collection: "users",
			want:       []store.Path{"users/u1", "users/u2", "users/u3"},
		},
		{
			name:       "filtered by status",
			collection: "users",
			filters:    []store.Filter{store.Where("profile.subscriptionStatus", "active")},
			want:       []store.Path{"users/u1", "users/u2"},
		},
		{
			name:       "boards of one user",
			collection: store.Join("users", "u1", "weeklyBoard"),
			want:       []store.Path{store.BoardPath("u1", "2025-W10"), store.BoardPath("u1", "2025-W11")},
		},
		{
			name:       "empty collection",
			collection: store.Join("users", "u9", "weeklyBoard"),
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.collection, tt.filters...)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d documents, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Path != tt.want[i] {
					t.Errorf("doc %d: got %s, want %s", i, got[i].Path, tt.want[i])
				}
			}
		})
	}
}

func TestReopen_PersistsDocuments(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shcadule.db")
	ctx := context.Background()

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := repo.Set(ctx, store.UserPath("u1"), []byte(`{"profile":{"plan":"pro"}}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = repo.Close()

	repo, err = New(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = repo.Close() }()

	got, err := repo.Get(ctx, store.UserPath("u1"))
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if plan := gjson.GetBytes(got, "profile.plan").String(); plan != "pro" {
		t.Errorf("plan = %q, want pro", plan)
	}
}

// newTestRepo creates a temporary SQLite store for testing.
func newTestRepo(t *testing.T) *SQLite {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}
