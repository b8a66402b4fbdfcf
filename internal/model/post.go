package model

import "time"

// Post はジャーナルの投稿を表す。
// 認証ゲートを通過したリクエストのみがアクセスできる。
type Post struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
}
