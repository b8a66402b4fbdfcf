package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/dailyjournal/internal/model"
	"github.com/hitoshi/dailyjournal/internal/view"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	List(ctx context.Context) ([]*model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	Search(ctx context.Context, query string) ([]*model.Post, error)
	Compose(ctx context.Context, title, content string) (*model.Post, error)
}

// PostHandler は投稿ページのHTTPハンドラー。
// すべてのルートは認証ゲートの内側に配置される。
type PostHandler struct {
	service  PostServiceInterface
	renderer *view.Renderer
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface, renderer *view.Renderer) *PostHandler {
	return &PostHandler{
		service:  service,
		renderer: renderer,
	}
}

// postView は投稿テンプレートの表示用データ。
// Contentは保存時にサニタイズ済みのHTML。
type postView struct {
	ID      string
	Title   string
	Content template.HTML
}

// postListView は一覧テンプレートの表示用データ。
type postListView struct {
	Query string
	Posts []postView
}

// ListPosts は投稿一覧を表示する。
// GET /all_posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("failed to list posts", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "all_posts.html", postListView{Posts: toPostViews(posts)})
}

// GetPost は投稿の詳細を表示する。
// GET /all_posts/{postID}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	post, err := h.service.Get(r.Context(), postID)
	if err != nil {
		slog.Error("failed to get post",
			slog.String("post_id", postID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		http.NotFound(w, r)
		return
	}

	h.renderer.Render(w, "post.html", postView{
		ID:      post.ID,
		Title:   post.Title,
		Content: template.HTML(post.Content),
	})
}

// SearchPosts はタイトル検索の結果を一覧テンプレートで表示する。
// GET /search?dsearch=...
func (h *PostHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("dsearch")

	posts, err := h.service.Search(r.Context(), query)
	if err != nil {
		slog.Error("failed to search posts", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, "all_posts.html", postListView{
		Query: query,
		Posts: toPostViews(posts),
	})
}

// ComposeForm は投稿作成フォームを表示する。
// GET /compose
func (h *PostHandler) ComposeForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "compose.html", nil)
}

// ComposePost は新しい投稿を作成する。
// 成功時は一覧へ、失敗時はフォームへリダイレクトする。
// POST /compose
func (h *PostHandler) ComposePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/compose", http.StatusSeeOther)
		return
	}

	_, err := h.service.Compose(r.Context(), r.PostForm.Get("newTitleText"), r.PostForm.Get("newPostText"))
	if err != nil {
		slog.Warn("failed to compose post", slog.String("error", err.Error()))
		http.Redirect(w, r, "/compose", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, gatedLandingPath, http.StatusSeeOther)
}

// toPostViews は投稿のスライスを表示用データに変換する。
func toPostViews(posts []*model.Post) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView{
			ID:      p.ID,
			Title:   p.Title,
			Content: template.HTML(p.Content),
		})
	}
	return views
}
