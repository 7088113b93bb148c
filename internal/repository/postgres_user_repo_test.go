package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/inspiration/internal/model"
)

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresSessionRepoが正しく初期化されることを検証
func TestNewPostgresSessionRepo_Initializes(t *testing.T) {
	repo := NewPostgresSessionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestPostgresUserRepo_CreateAndFind(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostgresUserRepo(db)
	ctx := context.Background()

	created := createTestUser(t, repo, "alice")

	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if byID == nil || byID.Username != "alice" {
		t.Fatalf("FindByID = %+v, want username alice", byID)
	}
	if byID.Coins != 0 || byID.IdeasSubmitted != 0 {
		t.Errorf("counters = (%d, %d), want (0, 0)", byID.Coins, byID.IdeasSubmitted)
	}

	byName, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername error: %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Fatalf("FindByUsername = %+v, want id %s", byName, created.ID)
	}
	if byName.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q, want %q", byName.PasswordHash, "hash")
	}
}

func TestPostgresUserRepo_Find_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostgresUserRepo(db)

	user, err := repo.FindByUsername(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil, got %+v", user)
	}
}

func TestPostgresUserRepo_Create_Duplicate(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostgresUserRepo(db)
	createTestUser(t, repo, "bob")

	tests := []struct {
		name      string
		username  string
		email     string
		wantField string
	}{
		{"username重複", "bob", "other@example.com", "username"},
		{"email重複", "bobby", "bob@example.com", "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(context.Background(), &model.User{
				ID:           uuid.New().String(),
				Username:     tt.username,
				Email:        tt.email,
				PasswordHash: "hash",
				CreatedAt:    time.Now(),
			})
			var dup *model.ErrDuplicate
			if !errors.As(err, &dup) {
				t.Fatalf("expected *model.ErrDuplicate, got %v", err)
			}
			if dup.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", dup.Field, tt.wantField)
			}
		})
	}
}

func TestPostgresSessionRepo_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	users := NewPostgresUserRepo(db)
	repo := NewPostgresSessionRepo(db)
	ctx := context.Background()

	user := createTestUser(t, users, "carol")
	now := time.Now()

	valid := &model.Session{ID: "valid-token", UserID: user.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	expired := &model.Session{ID: "expired-token", UserID: user.ID, ExpiresAt: now.Add(-time.Hour), CreatedAt: now}
	for _, s := range []*model.Session{valid, expired} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	got, err := repo.FindByID(ctx, "valid-token")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got == nil || got.Username != "carol" {
		t.Fatalf("FindByID = %+v, want username carol", got)
	}

	got, err = repo.FindByID(ctx, "expired-token")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got != nil {
		t.Error("期限切れセッションはnilであるべき")
	}

	deleted, err := repo.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if err := repo.DeleteByID(ctx, "valid-token"); err != nil {
		t.Fatalf("DeleteByID error: %v", err)
	}
	got, _ = repo.FindByID(ctx, "valid-token")
	if got != nil {
		t.Error("削除済みセッションはnilであるべき")
	}

	// 存在しないセッションの削除はエラーにならない
	if err := repo.DeleteByID(ctx, "missing"); err != nil {
		t.Errorf("DeleteByID(missing) error: %v", err)
	}
}
