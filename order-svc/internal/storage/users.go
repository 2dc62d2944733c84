package storage

import (
	"context"
	"database/sql"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"
)

const userColumns = `id, first_name, last_name, username, email, hashed_password, role, email_verified, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Username, &user.Email,
		&user.PasswordHash, &user.Role, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	err := r.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, username, email, hashed_password, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		user.FirstName, user.LastName, user.Username, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapError(err, "user")
}

func (r *PostgresRepository) GetUser(ctx context.Context, id int) (*domain.User, error) {
	user, err := scanUser(r.conn(ctx).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	return user, mapError(err, "user")
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := scanUser(r.conn(ctx).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username))
	return user, mapError(err, "user")
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.conn(ctx).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER($1)", email))
	return user, mapError(err, "user")
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.conn(ctx).QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, mapError(err, "list users")
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, "scan user")
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) UpdateUserRole(ctx context.Context, id int, role domain.SystemRole) error {
	res, err := r.conn(ctx).ExecContext(ctx,
		"UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2", role, id)
	if err != nil {
		return mapError(err, "update user role")
	}
	return requireAffected(res, "user")
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapError(sql.ErrNoRows, what)
	}
	return nil
}
