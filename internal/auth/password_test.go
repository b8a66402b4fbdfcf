package auth

import "testing"

// ハッシュ化したパスワードが元の平文で検証できることを検証
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Error("hash must verify against the original password")
	}
}

// 異なるパスワードでの検証が失敗することを検証
func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if VerifyPassword(hash, "pw2") {
		t.Error("verification must fail for a different password")
	}
}

// 同じ平文でもソルトにより毎回異なるハッシュになることを検証
func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h2, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if h1 == h2 {
		t.Error("hashes of the same plaintext must differ by salt")
	}
}

// 不正な形式のハッシュに対する検証が失敗することを検証
func TestVerifyPassword_MalformedHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "pw1") {
		t.Error("verification must fail for a malformed hash")
	}
}
