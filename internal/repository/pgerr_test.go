package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError_ConstraintCodes(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"23505", ErrDuplicate},
		{"23503", ErrForeignKey},
		{"23514", ErrCheckViolation},
		{"42501", ErrNoPermission},
	}

	for _, tc := range cases {
		got := MapError(&pgconn.PgError{Code: tc.code})
		if !errors.Is(got, tc.want) {
			t.Fatalf("код %s: ожидалось %v, получили %v", tc.code, tc.want, got)
		}
	}
}

func TestMapError_Passthrough(t *testing.T) {
	if MapError(nil) != nil {
		t.Fatalf("nil должен проходить как есть")
	}

	plain := fmt.Errorf("обрыв соединения")
	if MapError(plain) != plain {
		t.Fatalf("обычная ошибка должна проходить без изменений")
	}

	// неизвестный код Postgres тоже проходит как есть
	unknown := &pgconn.PgError{Code: "40001"}
	if MapError(unknown) != error(unknown) {
		t.Fatalf("неизвестный код должен проходить как есть")
	}
}
