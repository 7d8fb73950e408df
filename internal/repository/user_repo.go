package repository

import (
	"context"

	"arcadia_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// создает пользователя; дубликат email/username дает ErrDuplicate
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, u.Email, u.Username, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt)
	return MapError(err)
}

// получает пользователя по id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `
		SELECT id, email, username, password_hash, role, banned, created_at
		FROM users
		WHERE id = $1
	`, id))
}

// получает пользователя по email (для логина)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `
		SELECT id, email, username, password_hash, role, banned, created_at
		FROM users
		WHERE email = $1
	`, email))
}

// получает пользователя по имени (команды админ бота)
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `
		SELECT id, email, username, password_hash, role, banned, created_at
		FROM users
		WHERE username = $1
	`, username))
}

// блокирует или разблокирует пользователя
func (r *UserRepository) SetBanned(ctx context.Context, id int64, banned bool) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET banned = $2 WHERE id = $1`, id, banned)
	return err
}

// общее число пользователей (статистика для админ бота)
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.Banned, &u.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
