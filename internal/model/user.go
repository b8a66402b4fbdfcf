// Package model はドメインモデルを定義する。
package model

import "time"

// Provider は認証手段の種別を表す閉じた列挙。
// 動的なストラテジー登録は行わず、この3種のみをサポートする。
type Provider string

const (
	// ProviderLocal はユーザー名とパスワードによるローカル認証。
	ProviderLocal Provider = "local"
	// ProviderGoogle はGoogle OAuth 2.0による認証。
	ProviderGoogle Provider = "google"
	// ProviderFacebook はFacebook OAuthによる認証。
	ProviderFacebook Provider = "facebook"
)

// User は認証可能な利用者を表す。
// ローカル認証情報と外部IdPのsubject IDのうち、作成後は常に
// 少なくとも1つの認証手段を保持する。
// Username、PasswordHash、GoogleID、FacebookIDは未設定の場合空文字列。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	GoogleID     string
	FacebookID   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasLocalCredential はローカル認証情報を持つかどうかを返す。
func (u *User) HasLocalCredential() bool {
	return u.Username != "" && u.PasswordHash != ""
}

// Session はユーザーのログインセッションを表す。
// 不透明トークン（ID）からユーザーIDへの短命なバインディング。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
