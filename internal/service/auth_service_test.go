package service

import (
	"strings"
	"testing"
)

func TestJWT_RoundTrip(t *testing.T) {
	InitJWTWithSecret("test-secret")

	token, err := GenerateJWT(42)
	if err != nil {
		t.Fatalf("не удалось выпустить токен: %v", err)
	}

	userID, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("не удалось разобрать токен: %v", err)
	}
	if userID != 42 {
		t.Fatalf("ожидался id 42, получили %d", userID)
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	InitJWTWithSecret("secret-one")
	token, err := GenerateJWT(7)
	if err != nil {
		t.Fatalf("не удалось выпустить токен: %v", err)
	}

	InitJWTWithSecret("secret-two")
	if _, err := ParseJWT(token); err == nil {
		t.Fatalf("токен с чужой подписью должен отклоняться")
	}
}

func TestJWT_Garbage(t *testing.T) {
	InitJWTWithSecret("test-secret")
	if _, err := ParseJWT("не.токен.вовсе"); err == nil {
		t.Fatalf("мусор не должен парситься")
	}
}

func TestGenerateJoinCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code, err := GenerateJoinCode()
		if err != nil {
			t.Fatalf("не удалось сгенерировать код: %v", err)
		}
		if len(code) != JoinCodeLength {
			t.Fatalf("ожидалась длина %d, получили %q", JoinCodeLength, code)
		}
		for _, ch := range code {
			if !strings.ContainsRune(codeCharset, ch) {
				t.Fatalf("символ %q вне алфавита", ch)
			}
		}
		seen[code] = true
	}

	// 50 кодов подряд практически не должны совпадать
	if len(seen) < 45 {
		t.Fatalf("слишком много коллизий: %d уникальных из 50", len(seen))
	}
}
