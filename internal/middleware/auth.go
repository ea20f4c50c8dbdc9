// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/worklink/internal/auth"
	"github.com/hitoshi/worklink/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// authContextKey はリクエストコンテキストに認証情報を格納するためのキー。
var authContextKey = contextKey("auth_context")

// AuthContext は認証済みリクエストのアイデンティティ。
// ミドルウェアが検証済みClaimから構築し、リクエストコンテキストに
// 明示的な値として格納する。
type AuthContext struct {
	ID    string
	Role  model.Role
	Email string
}

// TokenVerifier はトークン検証に必要なインターフェース。
// auth.TokenManagerの部分集合として定義する。
type TokenVerifier interface {
	Verify(raw string) (*auth.Claim, error)
}

// roleMessages はロール不一致時のロール別メッセージ。
var roleMessages = map[model.Role]string{
	model.RoleWorker:       "This operation requires a worker account",
	model.RoleStartup:      "This operation requires a startup account",
	model.RoleManufacturer: "This operation requires a manufacturer account",
}

// RequireAuth はbearerトークンを検証し、指定ロールのみを通すミドルウェアを返す。
// 処理順序: トークン抽出 → 検証 → ロール確認。
// いずれの失敗も401で応答する（ロール不一致も認証エラーとして扱う）。
// 成功時はAuthContextをリクエストコンテキストに注入する。
func RequireAuth(verifier TokenVerifier, roles ...model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractBearerToken(r)
			if token == "" {
				writeAuthError(w, "No token provided")
				return
			}

			claim, err := verifier.Verify(token)
			if err != nil {
				writeAuthError(w, err.Error())
				return
			}

			if len(roles) > 0 && !roleAllowed(claim.Role, roles) {
				// 要求ロールが1つの場合はロール固有のメッセージを返す
				msg := "You do not have the required role for this operation"
				if len(roles) == 1 {
					msg = roleMessages[roles[0]]
				}
				writeAuthError(w, msg)
				return
			}

			ctx := ContextWithAuth(r.Context(), AuthContext{
				ID:    claim.ID,
				Role:  claim.Role,
				Email: claim.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roleAllowed(role model.Role, allowed []model.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// writeAuthError は401レスポンスを統一エンベロープで書き込む。
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}

// AuthFromContext はリクエストコンテキストから認証情報を取得する。
// RequireAuthを通過したリクエストでのみ有効。
func AuthFromContext(ctx context.Context) (AuthContext, error) {
	ac, ok := ctx.Value(authContextKey).(AuthContext)
	if !ok || ac.ID == "" {
		return AuthContext{}, model.NewAuthenticationError("No token provided")
	}
	return ac, nil
}

// ContextWithAuth はコンテキストに認証情報を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}
