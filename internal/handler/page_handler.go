package handler

import (
	"net/http"

	"github.com/hitoshi/dailyjournal/internal/view"
)

// PageHandler は静的ページのHTTPハンドラー。
type PageHandler struct {
	renderer *view.Renderer
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(renderer *view.Renderer) *PageHandler {
	return &PageHandler{renderer: renderer}
}

// Home はトップページを表示する。未認証でも閲覧できる。
// GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "home.html", nil)
}

// About は概要ページを表示する。
// GET /about
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "about.html", nil)
}

// Testimonial は利用者の声ページを表示する。
// GET /testimonial
func (h *PageHandler) Testimonial(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "testimonial.html", nil)
}

// Contact は連絡先ページを表示する。
// GET /contact
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "contact.html", nil)
}
