package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/dailyjournal/internal/model"
)

// newUserID は新規ユーザーの安定識別子を生成する。
func newUserID() string {
	return uuid.New().String()
}

// providerColumns はIdPとusersテーブルのカラムの対応表。
// Providerは閉じた列挙のため、SQLに埋め込むカラム名はこの表の値に限られる。
var providerColumns = map[model.Provider]string{
	model.ProviderGoogle:   "google_id",
	model.ProviderFacebook: "facebook_id",
}

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, username, password_hash, google_id, facebook_id, created_at, updated_at`

// scanUser は1行をmodel.Userに読み込む。NULLカラムは空文字列になる。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var username, passwordHash, googleID, facebookID sql.NullString
	err := row.Scan(&user.ID, &username, &passwordHash, &googleID, &facebookID, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user.Username = username.String
	user.PasswordHash = passwordHash.String
	user.GoogleID = googleID.String
	user.FacebookID = facebookID.String
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

// FindByProvider はproviderとsubject IDでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByProvider(ctx context.Context, provider model.Provider, subjectID string) (*model.User, error) {
	column, ok := providerColumns[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column),
		subjectID,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by provider ID: %w", err)
	}
	return user, nil
}

// CreateLocal はローカル認証情報を持つユーザーを条件付きINSERTで作成する。
// ユーザー名の一意性は部分ユニークインデックスで強制され、競合した場合は
// 行が挿入されずmodel.ErrDuplicateUsernameを返す。事前の存在チェックと
// INSERTの間の競合ウィンドウは存在しない。
func (r *PostgresUserRepo) CreateLocal(ctx context.Context, user *model.User) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (username) WHERE username IS NOT NULL DO NOTHING`,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if inserted == 0 {
		return model.ErrDuplicateUsername
	}
	return nil
}

// FindOrCreateByProvider は(provider, subjectID)に対応するユーザーを取得し、
// 存在しない場合は原子的に作成する。
// 挿入はON CONFLICT DO NOTHINGによる単一の条件付きINSERTで行い、
// 並行するコールバックが同じ新規subject IDを持ち込んでも作成されるレコードは
// 常にただ1つ。敗者は勝者のレコードを再読み込みして返す。
func (r *PostgresUserRepo) FindOrCreateByProvider(ctx context.Context, provider model.Provider, subjectID string) (*model.User, error) {
	column, ok := providerColumns[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	// 既存レコードの高速パス
	user, err := r.FindByProvider(ctx, provider, subjectID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	// subject IDのみを持つ新規ユーザーを条件付きINSERT
	now := time.Now()
	newUser := &model.User{ID: newUserID(), CreatedAt: now, UpdatedAt: now}
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO users (id, %s, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (%s) WHERE %s IS NOT NULL DO NOTHING`, column, column, column),
		newUser.ID, subjectID, newUser.CreatedAt, newUser.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert federated user: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if inserted == 0 {
		// 競合に敗れた場合は勝者のレコードを返す
		winner, err := r.FindByProvider(ctx, provider, subjectID)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, fmt.Errorf("federated user vanished after conflicting insert: %s", provider)
		}
		return winner, nil
	}

	switch provider {
	case model.ProviderGoogle:
		newUser.GoogleID = subjectID
	case model.ProviderFacebook:
		newUser.FacebookID = subjectID
	}
	return newUser, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
