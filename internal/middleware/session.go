// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/dailyjournal/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに解決済みユーザーを格納するためのキー。
var userContextKey = contextKey("current_user")

// IdentityResolver はセッショントークンをユーザーに解決するインターフェース。
// auth.Serviceの部分集合として定義する。
// 未知・期限切れのトークンは(nil, nil)すなわち匿名に解決される。
type IdentityResolver interface {
	CurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッショントークンを読み取り、
// 解決済みユーザーをリクエストコンテキストに注入するミドルウェアを返す。
// トークンがない・解決できない場合も遮断せず、匿名のままハンドラーに渡す
// （fail-open）。遮断の判断はRequireAuthが行う。
func NewSessionMiddleware(resolver IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.CurrentUser(r.Context(), cookie.Value)
			if err != nil {
				// ストア障害はログに残し、リクエスト自体は匿名として継続する
				slog.Error("failed to resolve session",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRequireAuthMiddleware は認証ゲートのミドルウェアを返す。
// 匿名リクエストにはエラーステータスではなくログイン画面へのリダイレクトを
// 返す。これはUXポリシーであり、303リダイレクトのまま維持すること。
func NewRequireAuthMiddleware(loginPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := UserFromContext(r.Context()); err != nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext はリクエストコンテキストから解決済みユーザーを取得する。
// セッションミドルウェアを通過し、かつ認証済みのリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// ロギングミドルウェア等、IDのみが必要な箇所で使用する。
func UserIDFromContext(ctx context.Context) (string, error) {
	user, err := UserFromContext(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// ContextWithUser はコンテキストに解決済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
