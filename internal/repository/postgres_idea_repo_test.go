package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestNewPostgresIdeaRepo_Initializes(t *testing.T) {
	if NewPostgresIdeaRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestPostgresIdeaRepo_Submit_CoinFormula(t *testing.T) {
	db := openTestDB(t)
	users := NewPostgresUserRepo(db)
	repo := NewPostgresIdeaRepo(db)
	ctx := context.Background()

	user := createTestUser(t, users, "submitter")

	wantCoins := map[int]int{1: 0, 9: 0, 10: 1, 19: 1, 20: 2, 25: 2}
	for n := 1; n <= 25; n++ {
		result, err := repo.Submit(ctx, newTestIdea(user.ID))
		if err != nil {
			t.Fatalf("Submit #%d error: %v", n, err)
		}
		if result.IdeasSubmitted != n {
			t.Fatalf("IdeasSubmitted = %d, want %d", result.IdeasSubmitted, n)
		}
		if want, ok := wantCoins[n]; ok && result.Coins != want {
			t.Errorf("N=%d: coins = %d, want %d", n, result.Coins, want)
		}
	}

	var count int
	if err := db.QueryRow(`SELECT count(*) FROM ideas WHERE user_id = $1`, user.ID).Scan(&count); err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != 25 {
		t.Errorf("idea rows = %d, want 25", count)
	}
}

func TestPostgresIdeaRepo_Submit_MissingUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostgresIdeaRepo(db)

	result, err := repo.Submit(context.Background(), newTestIdea(uuid.New().String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}

	var count int
	db.QueryRow(`SELECT count(*) FROM ideas`).Scan(&count)
	if count != 0 {
		t.Errorf("idea rows = %d, want 0", count)
	}
}

func TestPostgresIdeaRepo_Vote_RewardsOtherOwner(t *testing.T) {
	db := openTestDB(t)
	users := NewPostgresUserRepo(db)
	repo := NewPostgresIdeaRepo(db)
	ctx := context.Background()

	owner := createTestUser(t, users, "owner")
	voter := createTestUser(t, users, "voter")
	idea := newTestIdea(owner.ID)
	if _, err := repo.Submit(ctx, idea); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	result, err := repo.Vote(ctx, idea.ID, voter.ID)
	if err != nil {
		t.Fatalf("Vote error: %v", err)
	}
	if result.Votes != 1 || result.OwnerCoins != 1 || !result.Rewarded {
		t.Errorf("result = %+v, want votes=1 owner_coins=1 rewarded", result)
	}
	if result.OwnerID != owner.ID {
		t.Errorf("OwnerID = %q, want %q", result.OwnerID, owner.ID)
	}
}

func TestPostgresIdeaRepo_Vote_SelfVoteAndRepeat(t *testing.T) {
	db := openTestDB(t)
	users := NewPostgresUserRepo(db)
	repo := NewPostgresIdeaRepo(db)
	ctx := context.Background()

	owner := createTestUser(t, users, "selfvoter")
	idea := newTestIdea(owner.ID)
	if _, err := repo.Submit(ctx, idea); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	for i := 1; i <= 3; i++ {
		result, err := repo.Vote(ctx, idea.ID, owner.ID)
		if err != nil {
			t.Fatalf("Vote error: %v", err)
		}
		if result.Votes != i {
			t.Errorf("votes = %d, want %d", result.Votes, i)
		}
		if result.OwnerCoins != 0 || result.Rewarded {
			t.Errorf("self vote must not reward: %+v", result)
		}
	}
}

func TestPostgresIdeaRepo_Vote_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostgresIdeaRepo(db)

	result, err := repo.Vote(context.Background(), uuid.New().String(), uuid.New().String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil, got %+v", result)
	}
}

// 異なるK人の同時投票で投票数とコインがちょうどK増えることを検証
func TestPostgresIdeaRepo_Vote_ConcurrentNoLostUpdates(t *testing.T) {
	db := openTestDB(t)
	users := NewPostgresUserRepo(db)
	repo := NewPostgresIdeaRepo(db)
	ctx := context.Background()

	owner := createTestUser(t, users, "popular")
	idea := newTestIdea(owner.ID)
	if _, err := repo.Submit(ctx, idea); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	const k = 20
	voters := make([]string, k)
	for i := range voters {
		voters[i] = createTestUser(t, users, fmt.Sprintf("voter%02d", i)).ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, k)
	for _, voterID := range voters {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := repo.Vote(ctx, idea.ID, id); err != nil {
				errs <- err
			}
		}(voterID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Vote error: %v", err)
	}

	got, err := repo.FindByID(ctx, idea.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID = %v, %v", got, err)
	}
	if got.Votes != k {
		t.Errorf("votes = %d, want %d", got.Votes, k)
	}

	ownerRow, _ := users.FindByID(ctx, owner.ID)
	if ownerRow.Coins != k {
		t.Errorf("owner coins = %d, want %d", ownerRow.Coins, k)
	}
}

func TestPostgresIdeaRepo_ListWithOwner(t *testing.T) {
	db := openTestDB(t)
	users := NewPostgresUserRepo(db)
	repo := NewPostgresIdeaRepo(db)
	ctx := context.Background()

	empty, err := repo.ListWithOwner(ctx)
	if err != nil {
		t.Fatalf("ListWithOwner error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", empty)
	}

	user := createTestUser(t, users, "lister")
	idea := newTestIdea(user.ID)
	idea.Category = "art"
	if _, err := repo.Submit(ctx, idea); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	list, err := repo.ListWithOwner(ctx)
	if err != nil {
		t.Fatalf("ListWithOwner error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	if list[0].Username != "lister" || list[0].Category != "art" || list[0].Votes != 0 {
		t.Errorf("entry = %+v", list[0])
	}
}
