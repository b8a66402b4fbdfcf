package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/dailyjournal/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, created_at FROM posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &post.Title, &post.Content, &post.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return post, nil
}

// List は全投稿を作成日時の降順で返す。
func (r *PostgresPostRepo) List(ctx context.Context) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, content, created_at FROM posts ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// SearchByTitle はタイトルの部分一致（大文字小文字を区別しない）で投稿を検索する。
func (r *PostgresPostRepo) SearchByTitle(ctx context.Context, query string) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, content, created_at
		 FROM posts
		 WHERE title ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC`,
		query,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// Create は投稿を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, created_at)
		 VALUES ($1, $2, $3, $4)`,
		post.ID, post.Title, post.Content, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// scanPosts は結果セットの全行をmodel.Postに読み込む。
func scanPosts(rows *sql.Rows) ([]*model.Post, error) {
	var posts []*model.Post
	for rows.Next() {
		post := &model.Post{}
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
