package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"tableease/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (name, email, password_hash, role, phone, avatar_url, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Phone, u.AvatarURL,
	).Scan(&u.ID, &u.CreatedAt)
}

// FindByEmail returns the user with the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, phone, avatar_url, created_at
        FROM users
        WHERE email = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByName returns the user with the given display name, used for
// the registration uniqueness check.
func (r *UserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, phone, avatar_url, created_at
        FROM users
        WHERE name = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, name).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, phone, avatar_url, created_at
        FROM users
        WHERE id = $1
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile updates the mutable profile fields. Role and email are
// not touched through this path.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int, name, phone, avatarURL string) (*model.User, error) {
	query := `
        UPDATE users
        SET name = $1, phone = $2, avatar_url = $3
        WHERE id = $4
        RETURNING id, name, email, password_hash, role, phone, avatar_url, created_at
    `
	var u model.User
	err := r.db.QueryRow(ctx, query, name, phone, avatarURL, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every registered user, newest first.
func (r *UserRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, phone, avatar_url, created_at
        FROM users
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.AvatarURL, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
