// Package view はサーバーサイドでのHTMLページレンダリングを提供する。
// テンプレートはバイナリに埋め込まれ、起動時に一度だけパースされる。
package view

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer は埋め込みテンプレートによるページレンダラー。
type Renderer struct {
	templates *template.Template
}

// New は全テンプレートをパースしたRendererを生成する。
// テンプレートの構文エラーは起動時に検出される。
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render は指定テンプレートをレスポンスに書き込む。
// レンダリング失敗は500を返し、詳細はサーバーログにのみ残す。
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
