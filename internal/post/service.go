// Package post はジャーナル投稿のドメインロジックを提供する。
// 投稿へのアクセスはすべて認証ゲート通過後に行われる前提であり、
// このパッケージ自体は認可判断を持たない。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/dailyjournal/internal/model"
	"github.com/hitoshi/dailyjournal/internal/repository"
	"github.com/hitoshi/dailyjournal/internal/security"
)

// Service は投稿の取得・作成・検索のサービス層。
type Service struct {
	postRepo  repository.PostRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(postRepo repository.PostRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		postRepo:  postRepo,
		sanitizer: sanitizer,
	}
}

// List は全投稿を新しい順に返す。
func (s *Service) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Get は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Search はタイトルの部分一致（大文字小文字を区別しない）で投稿を検索する。
// 空のクエリは全件一覧と同じ結果を返す。
func (s *Service) Search(ctx context.Context, query string) ([]*model.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}

	posts, err := s.postRepo.SearchByTitle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return posts, nil
}

// Compose は新しい投稿を作成する。
// 本文は保存前にサニタイズされ、scriptタグ等は永続化されない。
func (s *Service) Compose(ctx context.Context, title, content string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("post title is required")
	}

	post := &model.Post{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   s.sanitizer.Sanitize(content),
		CreatedAt: time.Now(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("post composed",
		slog.String("post_id", post.ID),
		slog.String("title", post.Title),
	)

	return post, nil
}
