package service

import (
	"context"
	"errors"
	"time"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/pkg/auth"
)

// ErrInvalidCredentials はユーザー名またはパスワードが一致しない場合に返される
var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginResult はログイン成功時に発行されたトークンとユーザー
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// AuthService は認証に関するビジネスロジックのインターフェース
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, p auth.Principal) error
	Me(ctx context.Context, userID string) (*model.User, error)
}
