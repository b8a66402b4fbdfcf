// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/hitoshi/dailyjournal/internal/model"
	"github.com/hitoshi/dailyjournal/internal/view"
)

const (
	sessionCookieName = "session_id"
	oauthStateCookie  = "oauth_state"

	// gatedLandingPath は認証成功後の着地点。
	gatedLandingPath = "/all_posts"
	loginPath        = "/login"
	registerPath     = "/register"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, username, password string) (*model.Session, error)
	Login(ctx context.Context, username, password string) (*model.Session, error)
	LoginURL(provider model.Provider, state string) (string, error)
	HandleCallback(ctx context.Context, provider model.Provider, code string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は認証関連のHTTPハンドラー。
// ローカル認証のフォーム、OAuthフロー、ログアウトを担当する。
// 失敗はすべてリダイレクトに収束し、原因を外部に漏らさない。
type AuthHandler struct {
	service  AuthServiceInterface
	renderer *view.Renderer
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, renderer *view.Renderer, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		renderer: renderer,
		config:   config,
	}
}

// LoginForm はログインフォームを表示する。
// GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "login.html", nil)
}

// RegisterForm は登録フォームを表示する。
// GET /register
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "register.html", nil)
}

// Register はローカルユーザーを登録し、セッションを発行する。
// 失敗時は理由を問わず/registerへリダイレクトする。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, registerPath, http.StatusSeeOther)
		return
	}

	session, err := h.service.Register(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		slog.Warn("registration failed", slog.String("error", err.Error()))
		http.Redirect(w, r, registerPath, http.StatusSeeOther)
		return
	}

	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, gatedLandingPath, http.StatusSeeOther)
}

// Login はローカル認証情報を検証し、セッションを発行する。
// 未知のユーザー名もパスワード不一致も同じ/loginへのリダイレクトになる。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}

	session, err := h.service.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		slog.Warn("login failed", slog.String("error", err.Error()))
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}

	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, gatedLandingPath, http.StatusSeeOther)
}

// Logout はセッションを破棄し、ホームへリダイレクトする。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if logoutErr := h.service.Logout(r.Context(), cookie.Value); logoutErr != nil {
			slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
			// ログアウト失敗してもCookieはクリアする
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// OAuthStart は指定プロバイダーのOAuthフローを開始するハンドラーを返す。
// CSRF対策のstateをCookieに保存し、プロバイダーへリダイレクトする。
// GET /auth/google, GET /auth/facebook
func (h *AuthHandler) OAuthStart(provider model.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := generateState()
		if err != nil {
			slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}

		loginURL, err := h.service.LoginURL(provider, state)
		if err != nil {
			slog.Error("failed to build provider login URL",
				slog.String("provider", string(provider)),
				slog.String("error", err.Error()),
			)
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/",
			MaxAge:   600, // 10分
			HttpOnly: true,
			Secure:   h.config.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		http.Redirect(w, r, loginURL, http.StatusTemporaryRedirect)
	}
}

// OAuthCallback は指定プロバイダーのコールバックを処理するハンドラーを返す。
// state検証・コード交換・ユーザー解決のいずれが失敗しても/loginへの
// リダイレクトに収束し、セッションは発行されない。
// GET /auth/google/callback, GET /auth/facebook/callback
func (h *AuthHandler) OAuthCallback(provider model.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 1. stateの検証（CSRF対策）
		state := r.URL.Query().Get("state")
		stateCookie, err := r.Cookie(oauthStateCookie)
		if err != nil || state == "" || stateCookie.Value != state {
			slog.Warn("oauth state mismatch",
				slog.String("provider", string(provider)),
			)
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}

		// stateクッキーを削除
		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.config.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		// 2. 認可コードの取得
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}

		// 3. 認証処理
		session, err := h.service.HandleCallback(r.Context(), provider, code)
		if err != nil {
			slog.Error("oauth callback failed",
				slog.String("provider", string(provider)),
				slog.String("error", err.Error()),
			)
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}

		// 4. セッションCookieを設定し、保護された着地点へ
		h.setSessionCookie(w, session.ID)
		http.Redirect(w, r, gatedLandingPath, http.StatusSeeOther)
	}
}

// setSessionCookie はセッションCookieを設定する（HTTP Only）。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieをクリアする。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
