package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/internal/service"
	"github.com/thomasjvidal/teste-backend-pleno/pkg/auth"
)

// AuthHandler はログイン・ログアウト・ログインユーザー取得を扱う
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler は AuthHandler を生成する
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        userResponse `json:"user"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

// Login は POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	errs := map[string]string{}
	if strings.TrimSpace(req.Username) == "" {
		errs["username"] = "The username field is required."
	}
	if req.Password == "" {
		errs["password"] = "The password field is required."
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Status: "error", Message: "Validation failed", Errors: errs})
		return
	}

	res, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_credentials"})
			return
		}
		slog.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login_failed"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: res.Token,
		TokenType:   "bearer",
		ExpiresIn:   int64(time.Until(res.ExpiresAt).Round(time.Second) / time.Second),
		User:        toUserResponse(res.User),
	})
}

// Logout は POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	if err := h.authService.Logout(r.Context(), p); err != nil {
		slog.Error("logout failed", "user_id", p.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "logout_failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

// Me は GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	u, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		slog.Warn("me: user lookup failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
