package post

import (
	"context"
	"strings"
	"testing"

	"github.com/hitoshi/dailyjournal/internal/model"
	"github.com/hitoshi/dailyjournal/internal/security"
)

// mockPostRepo はテスト用の投稿リポジトリ。
type mockPostRepo struct {
	findByIDFn      func(ctx context.Context, id string) (*model.Post, error)
	listFn          func(ctx context.Context) ([]*model.Post, error)
	searchByTitleFn func(ctx context.Context, query string) ([]*model.Post, error)
	createFn        func(ctx context.Context, post *model.Post) error
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPostRepo) List(ctx context.Context) ([]*model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPostRepo) SearchByTitle(ctx context.Context, query string) ([]*model.Post, error) {
	if m.searchByTitleFn != nil {
		return m.searchByTitleFn(ctx, query)
	}
	return nil, nil
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

// Composeが本文をサニタイズして保存することを検証
func TestCompose_SanitizesContent(t *testing.T) {
	var saved *model.Post
	repo := &mockPostRepo{
		createFn: func(_ context.Context, post *model.Post) error {
			saved = post
			return nil
		},
	}
	svc := NewService(repo, security.NewContentSanitizer())

	post, err := svc.Compose(context.Background(), "day one", `<p>hello</p><script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if saved == nil {
		t.Fatal("expected post to be persisted")
	}
	if strings.Contains(saved.Content, "<script") {
		t.Errorf("script must not be persisted, got: %s", saved.Content)
	}
	if post.ID == "" {
		t.Error("expected generated post ID")
	}
	if post.Title != "day one" {
		t.Errorf("unexpected title: %s", post.Title)
	}
}

// タイトルが空の投稿が拒否されることを検証
func TestCompose_RequiresTitle(t *testing.T) {
	svc := NewService(&mockPostRepo{}, security.NewContentSanitizer())

	if _, err := svc.Compose(context.Background(), "   ", "content"); err == nil {
		t.Fatal("expected error for empty title")
	}
}

// 空クエリのSearchが全件一覧に委譲されることを検証
func TestSearch_EmptyQueryListsAll(t *testing.T) {
	var listed, searched bool
	repo := &mockPostRepo{
		listFn: func(_ context.Context) ([]*model.Post, error) {
			listed = true
			return []*model.Post{{ID: "p1"}}, nil
		},
		searchByTitleFn: func(_ context.Context, _ string) ([]*model.Post, error) {
			searched = true
			return nil, nil
		},
	}
	svc := NewService(repo, security.NewContentSanitizer())

	posts, err := svc.Search(context.Background(), "  ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !listed || searched {
		t.Error("empty query must fall back to List, not SearchByTitle")
	}
	if len(posts) != 1 {
		t.Errorf("expected 1 post, got %d", len(posts))
	}
}

// Searchがトリム済みクエリをリポジトリに渡すことを検証
func TestSearch_PassesTrimmedQuery(t *testing.T) {
	var gotQuery string
	repo := &mockPostRepo{
		searchByTitleFn: func(_ context.Context, query string) ([]*model.Post, error) {
			gotQuery = query
			return []*model.Post{{ID: "p1", Title: "Day One"}}, nil
		},
	}
	svc := NewService(repo, security.NewContentSanitizer())

	if _, err := svc.Search(context.Background(), "  day "); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotQuery != "day" {
		t.Errorf("expected trimmed query, got %q", gotQuery)
	}
}
