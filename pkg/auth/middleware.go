package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// TokenVerifier resolves a bearer token into a Principal.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth は認証必須ミドルウェア。トークンを検証し、Principal を context にセットする
func RequireAuth(verifier TokenVerifier, denylist Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}

			p, err := verifier.Verify(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
				return
			}

			if denylist != nil && p.TokenID != "" {
				revoked, err := denylist.IsRevoked(r.Context(), p.TokenID)
				if err != nil {
					slog.Error("token denylist lookup failed", "error", err)
					writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "auth_unavailable"})
					return
				}
				if revoked {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token_revoked"})
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole rejects principals whose role differs from role with 403.
// It must run after RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error":         "forbidden",
					"required_role": role,
					"user_role":     "unauthenticated",
				})
				return
			}
			if !p.HasRole(role) {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error":         "forbidden",
					"required_role": role,
					"user_role":     p.Role,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
