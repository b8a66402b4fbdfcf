// Package auth はローカル認証、OAuth連携、セッション管理を提供する。
package auth

import (
	"context"

	"github.com/hitoshi/dailyjournal/internal/model"
)

// SubjectInfo はOAuthプロバイダーが確認したsubject IDを表す。
type SubjectInfo struct {
	SubjectID string
	Provider  model.Provider
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// GoogleとFacebookで同じログイン状態機械を共有し、
// プロバイダー固有の交換ステップのみをここで差し替える。
type OAuthProvider interface {
	// LoginURL はOAuth認可URLを生成する。
	LoginURL(state string) string
	// Exchange は認可コードをトークンに交換し、subject IDを取得する。
	Exchange(ctx context.Context, code string) (*SubjectInfo, error)
}
