package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword は平文パスワードからbcryptハッシュを導出する。
// bcryptはソルト付きで意図的に低速な一方向関数であり、
// コストはbcrypt.DefaultCostを使用する。
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword は保存済みハッシュと平文パスワードを照合する。
// 比較はbcrypt内部で一定時間に行われる。
func VerifyPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
