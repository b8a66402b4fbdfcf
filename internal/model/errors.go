package model

import "fmt"

// AuthError は認証サブシステムのエラー分類を表す。
// エンドユーザーに露出する際はすべてリダイレクトに収束し、
// どの分類が発生したかを外部に漏らさない。詳細はサーバーログのみに残す。
type AuthError struct {
	Code     string // エラーコード
	Message  string // サーバーログ向けメッセージ
	Category string // カテゴリ: auth, oauth, system
}

// Error はerrorインターフェースを実装する。
func (e *AuthError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateUsername = "DUPLICATE_USERNAME"
	ErrCodeBadCredential     = "BAD_CREDENTIAL"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeProviderExchange  = "PROVIDER_EXCHANGE_FAILED"
	ErrCodeProviderTimeout   = "PROVIDER_TIMEOUT"
	ErrCodeStoreUnavailable  = "STORE_UNAVAILABLE"
)

// 認証エラーの定義済みインスタンス。
// errors.Isによる同値判定のため、生成せず常にこの値を返すこと。
var (
	// ErrDuplicateUsername は既に使用されているユーザー名での登録。
	ErrDuplicateUsername = &AuthError{
		Code:     ErrCodeDuplicateUsername,
		Message:  "このユーザー名は既に使用されています",
		Category: "auth",
	}

	// ErrBadCredential は認証情報の不一致。
	// ユーザー名列挙を防ぐため、未知のユーザー名とパスワード不一致の
	// どちらもこのエラーに収束させる。
	ErrBadCredential = &AuthError{
		Code:     ErrCodeBadCredential,
		Message:  "ユーザー名またはパスワードが正しくありません",
		Category: "auth",
	}

	// ErrNotFound は対象レコードの不存在。
	// リポジトリの検索はnilで不存在を表すため、これは呼び出し側が
	// 不存在をエラーとして扱う必要がある場面でのみ使用する。
	ErrNotFound = &AuthError{
		Code:     ErrCodeNotFound,
		Message:  "対象が見つかりません",
		Category: "auth",
	}

	// ErrProviderExchange はOAuthプロバイダーとの認可コード交換の失敗。
	ErrProviderExchange = &AuthError{
		Code:     ErrCodeProviderExchange,
		Message:  "OAuthプロバイダーとのコード交換に失敗しました",
		Category: "oauth",
	}

	// ErrProviderTimeout はOAuthプロバイダーへのラウンドトリップのタイムアウト。
	ErrProviderTimeout = &AuthError{
		Code:     ErrCodeProviderTimeout,
		Message:  "OAuthプロバイダーへのリクエストがタイムアウトしました",
		Category: "oauth",
	}

	// ErrStoreUnavailable はバッキングストアへの到達不能。
	// リクエスト処理中に発生してもプロセスは継続する。
	ErrStoreUnavailable = &AuthError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "データストアにアクセスできません",
		Category: "system",
	}
)
