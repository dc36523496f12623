package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
	"github.com/thomasjvidal/teste-backend-pleno/pkg/auth"
)

// ---------------------------------------------------------------------------
// mockUserRepository
// ---------------------------------------------------------------------------

type mockUserRepository struct {
	users map[string]*model.User
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.users[user.Username] = user
	return nil
}

func newTestAuthService(t *testing.T) (AuthService, *auth.TokenManager, *auth.MemoryDenylist) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	repo := &mockUserRepository{users: map[string]*model.User{
		"admin": {ID: "u-admin", Username: "admin", PasswordHash: string(hash), Role: model.RoleAdmin},
	}}
	tokens := auth.NewTokenManager("test-secret", "contacts-api", time.Hour)
	denylist := auth.NewMemoryDenylist()
	return NewAuthService(repo, tokens, denylist), tokens, denylist
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, tokens, _ := newTestAuthService(t)

	res, err := svc.Login(context.Background(), "admin", "password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.User.ID != "u-admin" {
		t.Errorf("user id = %q", res.User.ID)
	}
	p, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if p.ID != "u-admin" || !p.IsAdmin() {
		t.Errorf("principal = %+v", p)
	}
	if res.ExpiresAt.Before(time.Now()) {
		t.Errorf("expires_at in the past: %v", res.ExpiresAt)
	}
}

func TestAuthService_Login_Rejected(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	cases := []struct{ name, username, password string }{
		{"wrong password", "admin", "nope"},
		{"unknown user", "ghost", "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.username, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthService_Login_UnknownUserComparesAtDefaultCost(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	impl := svc.(*AuthServiceImpl)

	var compared [][]byte
	impl.compare = func(hash, password []byte) error {
		compared = append(compared, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	if _, err := svc.Login(context.Background(), "ghost", "password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(compared) != 1 {
		t.Fatalf("expected one bcrypt comparison, got %d", len(compared))
	}
	cost, err := bcrypt.Cost(compared[0])
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("unknown-user comparison cost = %d, want %d", cost, bcrypt.DefaultCost)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	svc, tokens, denylist := newTestAuthService(t)
	ctx := context.Background()

	res, _ := svc.Login(ctx, "admin", "password")
	p, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, p); err != nil {
		t.Fatalf("logout: %v", err)
	}
	revoked, err := denylist.IsRevoked(ctx, p.TokenID)
	if err != nil || !revoked {
		t.Fatalf("IsRevoked = %v, %v; want true", revoked, err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	u, err := svc.Me(context.Background(), "u-admin")
	if err != nil || u.Username != "admin" {
		t.Fatalf("Me = %+v, %v", u, err)
	}
	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("password")
	if err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(h), []byte("password")) != nil {
		t.Error("hash does not match")
	}
}
