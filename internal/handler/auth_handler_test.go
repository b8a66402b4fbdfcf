package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/dailyjournal/internal/model"
	"github.com/hitoshi/dailyjournal/internal/view"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn       func(ctx context.Context, username, password string) (*model.Session, error)
	loginFn          func(ctx context.Context, username, password string) (*model.Session, error)
	loginURLFn       func(provider model.Provider, state string) (string, error)
	handleCallbackFn func(ctx context.Context, provider model.Provider, code string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) Register(ctx context.Context, username, password string) (*model.Session, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, username, password)
	}
	return testSession(), nil
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return testSession(), nil
}

func (m *mockAuthService) LoginURL(provider model.Provider, state string) (string, error) {
	if m.loginURLFn != nil {
		return m.loginURLFn(provider, state)
	}
	return "https://provider.example.com/auth?state=" + state, nil
}

func (m *mockAuthService) HandleCallback(ctx context.Context, provider model.Provider, code string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, provider, code)
	}
	return testSession(), nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func testSession() *model.Session {
	return &model.Session{
		ID:        "session-id-abc",
		UserID:    "user-id-123",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

func newTestAuthHandler(t *testing.T, svc AuthServiceInterface) *AuthHandler {
	t.Helper()
	renderer, err := view.New()
	if err != nil {
		t.Fatalf("view.New() error = %v", err)
	}
	return NewAuthHandler(svc, renderer, AuthHandlerConfig{
		CookieDomain:  "",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	})
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- テスト ---

func TestAuthHandler_Register_Success_SetsCookieAndRedirects(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, username, password string) (*model.Session, error) {
			if username != "alice" || password != "secret" {
				t.Errorf("Register called with (%q, %q)", username, password)
			}
			return testSession(), nil
		},
	}
	h := newTestAuthHandler(t, svc)

	req := postForm("/register", url.Values{"username": {"alice"}, "password": {"secret"}})
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/all_posts" {
		t.Errorf("Location = %q, want %q", loc, "/all_posts")
	}

	cookie := findCookie(resp, "session_id")
	if cookie == nil {
		t.Fatal("expected session_id cookie")
	}
	if cookie.Value != "session-id-abc" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "session-id-abc")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
}

func TestAuthHandler_Register_Duplicate_RedirectsBackToForm(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, username, password string) (*model.Session, error) {
			return nil, model.ErrDuplicateUsername
		},
	}
	h := newTestAuthHandler(t, svc)

	req := postForm("/register", url.Values{"username": {"alice"}, "password": {"secret"}})
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/register" {
		t.Errorf("Location = %q, want %q", loc, "/register")
	}
	if findCookie(resp, "session_id") != nil {
		t.Error("failed registration should not set a session cookie")
	}
}

func TestAuthHandler_Login_Success_SetsCookieAndRedirects(t *testing.T) {
	h := newTestAuthHandler(t, &mockAuthService{})

	req := postForm("/login", url.Values{"username": {"alice"}, "password": {"secret"}})
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/all_posts" {
		t.Errorf("Location = %q, want %q", loc, "/all_posts")
	}
	if findCookie(resp, "session_id") == nil {
		t.Fatal("expected session_id cookie")
	}
}

// 未知のユーザー名もパスワード不一致も、外から見える応答は完全に同一であること。
func TestAuthHandler_Login_Failure_IndistinguishableRedirect(t *testing.T) {
	reasons := map[string]error{
		"unknown user":   model.ErrBadCredential,
		"wrong password": model.ErrBadCredential,
	}

	for name, failure := range reasons {
		t.Run(name, func(t *testing.T) {
			svc := &mockAuthService{
				loginFn: func(ctx context.Context, username, password string) (*model.Session, error) {
					return nil, failure
				},
			}
			h := newTestAuthHandler(t, svc)

			req := postForm("/login", url.Values{"username": {"ghost"}, "password": {"nope"}})
			w := httptest.NewRecorder()

			h.Login(w, req)

			resp := w.Result()
			if resp.StatusCode != http.StatusSeeOther {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
			}
			if loc := resp.Header.Get("Location"); loc != "/login" {
				t.Errorf("Location = %q, want %q", loc, "/login")
			}
			if findCookie(resp, "session_id") != nil {
				t.Error("failed login should not set a session cookie")
			}
		})
	}
}

func TestAuthHandler_Logout_RevokesSessionAndClearsCookie(t *testing.T) {
	var revoked string
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			revoked = sessionID
			return nil
		},
	}
	h := newTestAuthHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-id-abc"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if revoked != "session-id-abc" {
		t.Errorf("revoked session = %q, want %q", revoked, "session-id-abc")
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}

	cookie := findCookie(resp, "session_id")
	if cookie == nil {
		t.Fatal("expected cleared session_id cookie")
	}
	if cookie.MaxAge >= 0 {
		t.Errorf("cookie MaxAge = %d, want negative (delete)", cookie.MaxAge)
	}
}

// Cookieなしのログアウトはサービスを呼ばず、そのままホームへ戻ること。
func TestAuthHandler_Logout_WithoutCookie_IsNoop(t *testing.T) {
	called := false
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			called = true
			return nil
		},
	}
	h := newTestAuthHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if called {
		t.Error("Logout should not be called without a session cookie")
	}
	if loc := w.Result().Header.Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}
}

func TestAuthHandler_OAuthStart_RedirectsToProviderWithState(t *testing.T) {
	h := newTestAuthHandler(t, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	w := httptest.NewRecorder()

	h.OAuthStart(model.ProviderGoogle)(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTemporaryRedirect)
	}

	location := resp.Header.Get("Location")
	u, err := url.Parse(location)
	if err != nil {
		t.Fatalf("Location = %q is not a URL: %v", location, err)
	}
	state := u.Query().Get("state")
	if state == "" {
		t.Fatal("redirect URL should carry a state parameter")
	}

	cookie := findCookie(resp, "oauth_state")
	if cookie == nil {
		t.Fatal("expected oauth_state cookie")
	}
	if cookie.Value != state {
		t.Errorf("state cookie = %q, redirect state = %q; must match", cookie.Value, state)
	}
}

func TestAuthHandler_OAuthCallback_Success(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, provider model.Provider, code string) (*model.Session, error) {
			if provider != model.ProviderGoogle {
				t.Errorf("provider = %q, want %q", provider, model.ProviderGoogle)
			}
			if code != "test-code" {
				t.Errorf("code = %q, want %q", code, "test-code")
			}
			return testSession(), nil
		},
	}
	h := newTestAuthHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=test-code&state=test-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "test-state"})
	w := httptest.NewRecorder()

	h.OAuthCallback(model.ProviderGoogle)(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/all_posts" {
		t.Errorf("Location = %q, want %q", loc, "/all_posts")
	}
	if findCookie(resp, "session_id") == nil {
		t.Fatal("expected session_id cookie")
	}
}

func TestAuthHandler_OAuthCallback_StateMismatch_NoSession(t *testing.T) {
	called := false
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, provider model.Provider, code string) (*model.Session, error) {
			called = true
			return testSession(), nil
		},
	}
	h := newTestAuthHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=test-code&state=tampered", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "test-state"})
	w := httptest.NewRecorder()

	h.OAuthCallback(model.ProviderGoogle)(w, req)

	resp := w.Result()
	if called {
		t.Error("HandleCallback should not run on state mismatch")
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want %q", loc, "/login")
	}
	if findCookie(resp, "session_id") != nil {
		t.Error("state mismatch should not issue a session")
	}
}

func TestAuthHandler_OAuthCallback_ExchangeFailure_RedirectsToLogin(t *testing.T) {
	svc := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, provider model.Provider, code string) (*model.Session, error) {
			return nil, model.ErrProviderExchange
		},
	}
	h := newTestAuthHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/auth/facebook/callback?code=bad-code&state=test-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "test-state"})
	w := httptest.NewRecorder()

	h.OAuthCallback(model.ProviderFacebook)(w, req)

	resp := w.Result()
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want %q", loc, "/login")
	}
	if findCookie(resp, "session_id") != nil {
		t.Error("failed exchange should not issue a session")
	}
}

func TestAuthHandler_OAuthCallback_MissingCode_RedirectsToLogin(t *testing.T) {
	h := newTestAuthHandler(t, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=test-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "test-state"})
	w := httptest.NewRecorder()

	h.OAuthCallback(model.ProviderGoogle)(w, req)

	if loc := w.Result().Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want %q", loc, "/login")
	}
}
