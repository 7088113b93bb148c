package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/inspiration/internal/model"
	"github.com/hitoshi/inspiration/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	createFn         func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, session *model.Session) error
	findByIDFn      func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn    func(ctx context.Context, id string) error
	deleteExpiredFn func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)

func newTestService(users *mockUserRepo, sessions *mockSessionRepo) *Service {
	return NewService(users, sessions, ServiceConfig{SessionMaxAge: 3600, BcryptCost: bcrypt.MinCost})
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	return string(h)
}

// --- テスト ---

func TestSignup_CreatesUserWithHashedPasswordAndSession(t *testing.T) {
	var createdUser *model.User
	var createdSession *model.Session

	users := &mockUserRepo{
		createFn: func(_ context.Context, user *model.User) error {
			createdUser = user
			return nil
		},
	}
	sessions := &mockSessionRepo{
		createFn: func(_ context.Context, session *model.Session) error {
			createdSession = session
			return nil
		},
	}
	svc := newTestService(users, sessions)

	before := time.Now()
	user, session, err := svc.Signup(context.Background(), " alice ", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Username != "alice" {
		t.Errorf("Username = %q, want trimmed %q", user.Username, "alice")
	}
	if createdUser == nil || createdUser.ID == "" {
		t.Fatal("user should be persisted with an ID")
	}
	if createdUser.PasswordHash == "s3cret" {
		t.Fatal("plaintext password must not be stored")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(createdUser.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	if session == nil || createdSession == nil || session.ID != createdSession.ID {
		t.Fatal("session should be persisted and returned")
	}
	if len(session.ID) != 64 {
		t.Errorf("session ID length = %d, want 64 hex chars", len(session.ID))
	}
	if session.UserID != createdUser.ID || session.Username != "alice" {
		t.Errorf("session = %+v, want user %s", session, createdUser.ID)
	}
	if session.ExpiresAt.Before(before.Add(3599 * time.Second)) {
		t.Errorf("ExpiresAt = %v, want about 1h from now", session.ExpiresAt)
	}
}

func TestSignup_MissingFields_ReturnsInvalidInput(t *testing.T) {
	called := false
	users := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			called = true
			return nil
		},
	}
	svc := newTestService(users, &mockSessionRepo{})

	_, _, err := svc.Signup(context.Background(), "", "alice@example.com", "pw")
	if !model.IsAPIErrorCode(err, model.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if called {
		t.Error("Create should not be called on invalid input")
	}
}

// bcryptの上限を超えるパスワードは内部エラーではなく入力エラーになる
func TestSignup_PasswordTooLong_ReturnsInvalidInput(t *testing.T) {
	called := false
	users := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			called = true
			return nil
		},
	}
	svc := newTestService(users, &mockSessionRepo{})

	_, _, err := svc.Signup(context.Background(), "alice", "alice@example.com", strings.Repeat("p", 80))
	if !model.IsAPIErrorCode(err, model.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if called {
		t.Error("Create should not be called for an oversized password")
	}

	// 72バイトちょうどは登録できる
	if _, _, err := svc.Signup(context.Background(), "alice", "alice@example.com", strings.Repeat("p", 72)); err != nil {
		t.Errorf("72-byte password: unexpected error %v", err)
	}
}

func TestNewService_OutOfRangeCost_FallsBackToDefault(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, ServiceConfig{BcryptCost: bcrypt.MaxCost + 1})

	if svc.config.BcryptCost != bcrypt.DefaultCost {
		t.Errorf("BcryptCost = %d, want %d", svc.config.BcryptCost, bcrypt.DefaultCost)
	}
	if len(svc.dummyHash) == 0 {
		t.Error("dummy hash should be generated")
	}

	low := NewService(&mockUserRepo{}, &mockSessionRepo{}, ServiceConfig{BcryptCost: -1})
	if low.config.BcryptCost != bcrypt.DefaultCost {
		t.Errorf("BcryptCost = %d, want %d", low.config.BcryptCost, bcrypt.DefaultCost)
	}
}

func TestSignup_Duplicate_ReturnsConflict(t *testing.T) {
	tests := []struct {
		field       string
		wantMessage string
	}{
		{"username", "Username already exists"},
		{"email", "Email already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			users := &mockUserRepo{
				createFn: func(_ context.Context, _ *model.User) error {
					return &model.ErrDuplicate{Field: tt.field}
				},
			}
			svc := newTestService(users, &mockSessionRepo{})

			_, _, err := svc.Signup(context.Background(), "alice", "alice@example.com", "pw")
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeConflict {
				t.Fatalf("expected CONFLICT, got %v", err)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestSignup_RepoError_ReturnsWrappedError(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			return errors.New("db down")
		},
	}
	svc := newTestService(users, &mockSessionRepo{})

	_, _, err := svc.Signup(context.Background(), "alice", "alice@example.com", "pw")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("internal failures should not be APIError, got %v", apiErr)
	}
}

func TestLogin_ValidCredentials_CreatesSession(t *testing.T) {
	stored := &model.User{ID: "user-1", Username: "alice", Email: "alice@example.com", PasswordHash: hashPassword(t, "pw")}
	users := &mockUserRepo{
		findByUsernameFn: func(_ context.Context, username string) (*model.User, error) {
			if username == "alice" {
				return stored, nil
			}
			return nil, nil
		},
	}
	sessionCreated := false
	sessions := &mockSessionRepo{
		createFn: func(_ context.Context, _ *model.Session) error {
			sessionCreated = true
			return nil
		},
	}
	svc := newTestService(users, sessions)

	user, session, err := svc.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
	if !sessionCreated || session.UserID != "user-1" {
		t.Errorf("session = %+v, created = %v", session, sessionCreated)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	stored := &model.User{ID: "user-1", Username: "alice", PasswordHash: hashPassword(t, "pw")}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"パスワード不一致", "alice", "wrong"},
		{"ユーザー不在", "bob", "pw"},
		{"未入力", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mockUserRepo{
				findByUsernameFn: func(_ context.Context, username string) (*model.User, error) {
					if username == "alice" {
						return stored, nil
					}
					return nil, nil
				},
			}
			sessions := &mockSessionRepo{
				createFn: func(_ context.Context, _ *model.Session) error {
					t.Error("session must not be created")
					return nil
				},
			}
			svc := newTestService(users, sessions)

			_, _, err := svc.Login(context.Background(), tt.username, tt.password)
			if !model.IsAPIErrorCode(err, model.ErrCodeInvalidCreds) {
				t.Errorf("expected INVALID_CREDENTIALS, got %v", err)
			}
		})
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	var deletedID string
	sessions := &mockSessionRepo{
		deleteByIDFn: func(_ context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	svc := newTestService(&mockUserRepo{}, sessions)

	if err := svc.Logout(context.Background(), "token-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedID != "token-1" {
		t.Errorf("deleted = %q, want token-1", deletedID)
	}
}

func TestLogout_EmptySessionID_NoOp(t *testing.T) {
	sessions := &mockSessionRepo{
		deleteByIDFn: func(_ context.Context, _ string) error {
			t.Error("DeleteByID should not be called")
			return nil
		},
	}
	svc := newTestService(&mockUserRepo{}, sessions)

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveSession(t *testing.T) {
	sessions := &mockSessionRepo{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			switch id {
			case "valid":
				return &model.Session{ID: "valid", UserID: "user-1", Username: "alice"}, nil
			case "broken":
				return nil, errors.New("db down")
			}
			return nil, nil
		},
	}
	svc := newTestService(&mockUserRepo{}, sessions)
	ctx := context.Background()

	actor, err := svc.ResolveSession(ctx, "valid")
	if err != nil || actor == nil {
		t.Fatalf("ResolveSession(valid) = %v, %v", actor, err)
	}
	if actor.UserID != "user-1" || actor.Username != "alice" {
		t.Errorf("actor = %+v", actor)
	}

	actor, err = svc.ResolveSession(ctx, "unknown")
	if err != nil || actor != nil {
		t.Errorf("ResolveSession(unknown) = %v, %v; want nil, nil", actor, err)
	}

	actor, err = svc.ResolveSession(ctx, "")
	if err != nil || actor != nil {
		t.Errorf("ResolveSession(empty) = %v, %v; want nil, nil", actor, err)
	}

	if _, err := svc.ResolveSession(ctx, "broken"); err == nil {
		t.Error("expected error from repository failure")
	}
}
