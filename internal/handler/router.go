package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/dailyjournal/internal/metrics"
	"github.com/hitoshi/dailyjournal/internal/middleware"
	"github.com/hitoshi/dailyjournal/internal/model"
	"github.com/hitoshi/dailyjournal/internal/view"
	"github.com/prometheus/client_golang/prometheus"
)

// HealthChecker はデータベース疎通確認のインターフェース。
// *sql.DB がそのまま満たす。
type HealthChecker interface {
	Ping() error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker HealthChecker
	Resolver      middleware.IdentityResolver
	HTTPMetrics   middleware.HTTPRecorder
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 投稿
	PostService PostServiceInterface

	// テンプレート
	Renderer *view.Renderer
}

// NewRouter は全ページのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → Metrics → Session
//
// Sessionミドルウェアは全ルートに適用され、未認証リクエストも匿名として通す。
// 投稿関連ルートのみ RequireAuth ゲートの内側に置き、未認証は /login へ
// リダイレクトされる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewSessionMiddleware(deps.Resolver))

	authHandler := NewAuthHandler(deps.AuthService, deps.Renderer, deps.AuthConfig)
	postHandler := NewPostHandler(deps.PostService, deps.Renderer)
	pageHandler := NewPageHandler(deps.Renderer)

	// --- 認証不要のルート ---

	r.Get("/", pageHandler.Home)
	r.Get("/about", pageHandler.About)
	r.Get("/testimonial", pageHandler.Testimonial)
	r.Get("/contact", pageHandler.Contact)

	// ローカル認証
	r.Get(loginPath, authHandler.LoginForm)
	r.Post(loginPath, authHandler.Login)
	r.Get(registerPath, authHandler.RegisterForm)
	r.Post(registerPath, authHandler.Register)
	r.Get("/logout", authHandler.Logout)

	// OAuth連携（プロバイダーごとの開始とコールバック）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google", authHandler.OAuthStart(model.ProviderGoogle))
		r.Get("/google/callback", authHandler.OAuthCallback(model.ProviderGoogle))
		r.Get("/facebook", authHandler.OAuthStart(model.ProviderFacebook))
		r.Get("/facebook/callback", authHandler.OAuthCallback(model.ProviderFacebook))
	})

	// 運用エンドポイント
	r.Get("/health", newHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRequireAuthMiddleware(loginPath))

		r.Get(gatedLandingPath, postHandler.ListPosts)
		r.Get(gatedLandingPath+"/{postID}", postHandler.GetPost)
		r.Get("/search", postHandler.SearchPosts)
		r.Get("/compose", postHandler.ComposeForm)
		r.Post("/compose", postHandler.ComposePost)
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.Ping(); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
