// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/dailyjournal/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// ユーザー名および各IdPのsubject IDの一意性はストア側の制約で強制される。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByProvider はproviderとsubject IDでユーザーを検索する。見つからない場合はnilを返す。
	FindByProvider(ctx context.Context, provider model.Provider, subjectID string) (*model.User, error)

	// CreateLocal はローカル認証情報を持つユーザーを条件付きINSERTで作成する。
	// ユーザー名の一意性はストアの制約で強制し、事前の存在チェックに依存しない。
	// ユーザー名が既に使用されている場合はmodel.ErrDuplicateUsernameを返す。
	CreateLocal(ctx context.Context, user *model.User) error

	// FindOrCreateByProvider は(provider, subjectID)に対応するユーザーを取得し、
	// 存在しない場合は原子的に作成する。冪等であり、同一subject IDに対する
	// 並行呼び出しでも常にただ1つのユーザーを返す。挿入が競合で失敗した場合は
	// 勝者のレコードを再読み込みして返し、エラーにはしない。
	FindOrCreateByProvider(ctx context.Context, provider model.Provider, subjectID string) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れまたは未知の場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	// 冪等: 既に存在しないIDを指定してもエラーにならない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れセッションを一括削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// List は全投稿を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Post, error)

	// SearchByTitle はタイトルの部分一致（大文字小文字を区別しない）で投稿を検索する。
	SearchByTitle(ctx context.Context, query string) ([]*model.Post, error)

	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.Post) error
}
