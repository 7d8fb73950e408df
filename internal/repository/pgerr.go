package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Ошибки ограничений схемы, на которые опираются обработчики
var (
	ErrDuplicate      = errors.New("запись уже существует")
	ErrForeignKey     = errors.New("связанная запись не найдена")
	ErrCheckViolation = errors.New("нарушено ограничение данных")
	ErrNoPermission   = errors.New("недостаточно прав")
)

// коды SQLSTATE, которые отдает схема
const (
	codeForeignKey = "23503"
	codeUnique     = "23505"
	codeCheck      = "23514"
	codePrivilege  = "42501"
)

// MapError переводит ошибку Postgres в доменную. Прочие ошибки проходят как есть
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUnique:
		return ErrDuplicate
	case codeForeignKey:
		return ErrForeignKey
	case codeCheck:
		return ErrCheckViolation
	case codePrivilege:
		return ErrNoPermission
	default:
		return err
	}
}
