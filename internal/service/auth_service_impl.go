package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
	"github.com/thomasjvidal/teste-backend-pleno/pkg/auth"
)

// ユーザーが存在しない場合も同じコストで bcrypt 比較を行い応答時間を揃える
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)

// HashPassword はパスワードを bcrypt でハッシュ化する
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// AuthServiceImpl は AuthService の実装
type AuthServiceImpl struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	denylist auth.Denylist
	compare  func(hash, password []byte) error
}

// NewAuthService は AuthServiceImpl を生成する
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, denylist auth.Denylist) AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		denylist: denylist,
		compare:  bcrypt.CompareHashAndPassword,
	}
}

// Login はユーザー名とパスワードを検証し、アクセストークンを発行する
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.compare(dummyHash, []byte(password))
			slog.Info("login rejected", "username", username, "reason", "unknown_user")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.compare([]byte(u.PasswordHash), []byte(password)); err != nil {
		slog.Info("login rejected", "username", username, "reason", "password_mismatch")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	slog.Info("login succeeded", "user_id", u.ID, "role", u.Role)
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// Logout はトークンを有効期限まで無効化する
func (s *AuthServiceImpl) Logout(ctx context.Context, p auth.Principal) error {
	if p.TokenID == "" {
		return nil
	}
	until := time.Unix(p.Expires, 0)
	if err := s.denylist.Revoke(ctx, p.TokenID, until); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	slog.Info("logout", "user_id", p.ID)
	return nil
}

// Me はログイン中のユーザーを返す
func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}
	return u, nil
}
